package conditions

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/ternarybob/arbor"

	"github.com/Gamma29/loot/internal/interfaces"
)

// State is the view of the current install that condition predicates are
// resolved against.
type State interface {
	IsPluginInstalled(name string) bool
	IsPluginActive(name string) bool
	PluginCRC(name string) (uint32, bool)
	PluginVersion(name string) (string, bool)
}

// Evaluator resolves metadata condition expressions against install
// state. Expressions are cached per (condition, language) pair because the
// same condition commonly appears on many records within one document.
type Evaluator struct {
	state  State
	logger arbor.ILogger

	mu    sync.Mutex
	cache map[string]bool
}

var _ interfaces.ConditionEvaluator = (*Evaluator)(nil)

var predicateRe = regexp.MustCompile(`^(file|active|checksum|version|lang)\(\s*(.*?)\s*\)$`)

// New creates an evaluator bound to the given install state.
func New(state State, logger arbor.ILogger) *Evaluator {
	return &Evaluator{
		state:  state,
		logger: logger,
		cache:  make(map[string]bool),
	}
}

// Evaluate resolves a condition expression. Empty conditions are
// vacuously true. Expressions are disjunctions of conjunctions of
// predicates, each predicate optionally negated with "not".
func (e *Evaluator) Evaluate(condition string, lang string) (bool, error) {
	condition = strings.TrimSpace(condition)
	if condition == "" {
		return true, nil
	}

	cacheKey := lang + "\x00" + condition
	e.mu.Lock()
	if result, ok := e.cache[cacheKey]; ok {
		e.mu.Unlock()
		return result, nil
	}
	e.mu.Unlock()

	result, err := e.evalOr(condition, lang)
	if err != nil {
		return false, err
	}

	e.mu.Lock()
	e.cache[cacheKey] = result
	e.mu.Unlock()

	e.logger.Trace().Str("condition", condition).Bool("result", result).Msg("Evaluated condition")
	return result, nil
}

func (e *Evaluator) evalOr(expr string, lang string) (bool, error) {
	result := false
	for _, clause := range strings.Split(expr, " or ") {
		ok, err := e.evalAnd(clause, lang)
		if err != nil {
			return false, err
		}
		result = result || ok
	}
	return result, nil
}

func (e *Evaluator) evalAnd(expr string, lang string) (bool, error) {
	result := true
	for _, atom := range strings.Split(expr, " and ") {
		ok, err := e.evalAtom(atom, lang)
		if err != nil {
			return false, err
		}
		result = result && ok
	}
	return result, nil
}

func (e *Evaluator) evalAtom(atom string, lang string) (bool, error) {
	atom = strings.TrimSpace(atom)

	negated := false
	if strings.HasPrefix(atom, "not ") {
		negated = true
		atom = strings.TrimSpace(strings.TrimPrefix(atom, "not "))
	}

	match := predicateRe.FindStringSubmatch(atom)
	if match == nil {
		return false, fmt.Errorf("unparseable condition predicate %q", atom)
	}

	result, err := e.evalPredicate(match[1], match[2], lang)
	if err != nil {
		return false, err
	}
	if negated {
		result = !result
	}
	return result, nil
}

func (e *Evaluator) evalPredicate(name, rawArgs, lang string) (bool, error) {
	args := splitArgs(rawArgs)

	switch name {
	case "file":
		if len(args) != 1 {
			return false, fmt.Errorf("file() takes one argument, got %d", len(args))
		}
		return e.state.IsPluginInstalled(args[0]), nil

	case "active":
		if len(args) != 1 {
			return false, fmt.Errorf("active() takes one argument, got %d", len(args))
		}
		return e.state.IsPluginActive(args[0]), nil

	case "checksum":
		if len(args) != 2 {
			return false, fmt.Errorf("checksum() takes two arguments, got %d", len(args))
		}
		want, err := strconv.ParseUint(args[1], 16, 32)
		if err != nil {
			return false, fmt.Errorf("invalid checksum %q: %w", args[1], err)
		}
		crc, ok := e.state.PluginCRC(args[0])
		return ok && crc == uint32(want), nil

	case "version":
		if len(args) != 3 {
			return false, fmt.Errorf("version() takes three arguments, got %d", len(args))
		}
		installed, ok := e.state.PluginVersion(args[0])
		if !ok {
			return false, nil
		}
		return compareVersions(installed, args[1], args[2])

	case "lang":
		if len(args) != 1 {
			return false, fmt.Errorf("lang() takes one argument, got %d", len(args))
		}
		return strings.EqualFold(args[0], lang), nil

	default:
		return false, fmt.Errorf("unknown condition function %q", name)
	}
}

// splitArgs splits a predicate argument list on commas, trimming
// whitespace and surrounding quotes from each argument.
func splitArgs(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	args := make([]string, 0, len(parts))
	for _, part := range parts {
		args = append(args, strings.Trim(strings.TrimSpace(part), `"`))
	}
	return args
}

// compareVersions compares two dotted version strings with the given
// comparison operator. Non-numeric components compare lexically.
func compareVersions(installed, wanted, op string) (bool, error) {
	cmp := versionCompare(installed, wanted)
	switch op {
	case "==":
		return cmp == 0, nil
	case "!=":
		return cmp != 0, nil
	case "<":
		return cmp < 0, nil
	case ">":
		return cmp > 0, nil
	case "<=":
		return cmp <= 0, nil
	case ">=":
		return cmp >= 0, nil
	default:
		return false, fmt.Errorf("unknown version comparison operator %q", op)
	}
}

func versionCompare(a, b string) int {
	aParts := strings.Split(a, ".")
	bParts := strings.Split(b, ".")

	for i := 0; i < len(aParts) || i < len(bParts); i++ {
		// Missing components compare as zero, so "1.0" equals "1.0.0".
		aPart, bPart := "0", "0"
		if i < len(aParts) {
			aPart = aParts[i]
		}
		if i < len(bParts) {
			bPart = bParts[i]
		}

		aNum, aErr := strconv.Atoi(aPart)
		bNum, bErr := strconv.Atoi(bPart)
		if aErr == nil && bErr == nil {
			if aNum != bNum {
				if aNum < bNum {
					return -1
				}
				return 1
			}
			continue
		}

		if aPart != bPart {
			if aPart < bPart {
				return -1
			}
			return 1
		}
	}
	return 0
}

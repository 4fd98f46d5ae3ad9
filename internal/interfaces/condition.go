package interfaces

// ConditionEvaluator evaluates a metadata condition expression against the
// current install state. The language code selects locale-sensitive text
// matches. Evaluation may fail for expressions the evaluator cannot parse
// or resolve; callers decide how to degrade.
type ConditionEvaluator interface {
	Evaluate(condition string, lang string) (bool, error)
}

// Clipboard receives text exported by metadata copy operations. The
// production implementation hands the text to the host OS; tests and
// headless deployments use an in-process buffer.
type Clipboard interface {
	Write(text string) error
}

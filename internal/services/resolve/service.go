package resolve

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"

	"github.com/Gamma29/loot/internal/interfaces"
	"github.com/Gamma29/loot/internal/models"
	"github.com/Gamma29/loot/internal/services/conditions"
	"github.com/Gamma29/loot/internal/services/game"
)

// EvaluatorFactory builds a condition evaluator bound to a session's
// install state. Resolution constructs a fresh evaluator per request so
// condition caches never outlive the install state they were computed
// against.
type EvaluatorFactory func(state conditions.State) interfaces.ConditionEvaluator

// Service runs the metadata resolution pipeline: for every installed
// plugin it layers masterlist and userlist metadata onto the live plugin,
// evaluates conditions, checks install validity, formats dirtiness
// records, and emits a resolved snapshot.
//
// Every failure inside the pipeline is converted into an injected error
// message; a request always produces a complete snapshot.
type Service struct {
	newEvaluator EvaluatorFactory
	markdown     goldmark.Markdown
	logger       arbor.ILogger
}

// NewService creates a resolution service.
func NewService(factory EvaluatorFactory, logger arbor.ILogger) *Service {
	return &Service{
		newEvaluator: factory,
		markdown:     goldmark.New(),
		logger:       logger,
	}
}

// GameData resolves the session's installed plugins into a snapshot.
func (s *Service) GameData(session *game.Session, lang string) *models.GameSnapshot {
	eval := s.newEvaluator(session)

	snapshot := &models.GameSnapshot{
		Folder:     session.Folder(),
		Masterlist: session.MasterlistInfo(),
		Plugins:    []models.PluginView{},
	}

	// Diagnostics injected by fail-open handling; appended to the global
	// message list after condition filtering.
	var diagnostics []models.Message

	for _, plugin := range session.Plugins() {
		view := models.PluginView{
			Name:     plugin.Name,
			IsActive: session.IsActive(plugin.Name),
			LoadsBSA: plugin.LoadsArchive,
			CRC:      plugin.CRCString(),
			Version:  plugin.Version,
		}

		// Masterlist layer onto a copy of the live plugin record.
		mlist := models.NewPluginMetadata(plugin.Name)
		mlist.Merge(session.Masterlist().FindPlugin(plugin.Name))
		if !mlist.HasNameOnly() {
			view.Masterlist = s.layerView(mlist, lang)
		}

		if err := s.evalAllConditions(&mlist, eval, lang); err != nil {
			s.logger.Warn().Str("plugin", plugin.Name).Err(err).Msg("Condition evaluation failed, keeping governed metadata")
			diagnostics = append(diagnostics, models.NewMessage(models.MessageError,
				fmt.Sprintf("\"%s\" contains a condition that could not be evaluated. Details: %s", plugin.Name, err)))
		}

		s.checkInstallValidity(&mlist, session)

		// Userlist layer, with the inherited tag set explicitly reset so
		// masterlist tags cannot leak into the userlist view.
		ulist := models.NewPluginMetadata(plugin.Name)
		ulist.Tags = nil
		ulist.Merge(session.Userlist().FindPlugin(plugin.Name))
		if !ulist.HasNameOnly() {
			view.Userlist = s.layerView(ulist, lang)
		}

		if err := s.evalAllConditions(&ulist, eval, lang); err != nil {
			s.logger.Warn().Str("plugin", plugin.Name).Err(err).Msg("Condition evaluation failed, keeping governed metadata")
			diagnostics = append(diagnostics, models.NewMessage(models.MessageError,
				fmt.Sprintf("\"%s\" contains a condition that could not be evaluated. Details: %s", plugin.Name, err)))
		}

		// Masterlist-then-userlist is the documented precedence.
		merged := mlist
		merged.Merge(ulist)

		messages := append([]models.Message(nil), merged.Messages...)

		dirty := append([]models.CleaningData(nil), merged.DirtyInfo...)
		sort.Slice(dirty, func(i, j int) bool {
			if dirty[i].CleaningUtility != dirty[j].CleaningUtility {
				return dirty[i].CleaningUtility < dirty[j].CleaningUtility
			}
			return dirty[i].CRC < dirty[j].CRC
		})
		for _, record := range dirty {
			messages = append(messages, models.NewMessage(models.MessageWarn, record.Describe()))
		}

		view.ModPriority, view.IsGlobalPriority = models.EncodePriority(merged.Priority)
		view.Messages = s.messageViews(messages, lang)
		view.Tags = append([]models.Tag{}, merged.Tags...)
		view.IsDirty = len(dirty) > 0

		snapshot.Plugins = append(snapshot.Plugins, view)
	}

	globals, err := s.filterMessages(session.Masterlist().Messages, eval, lang)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Global message condition evaluation failed, keeping remaining messages")
		diagnostics = append(diagnostics, models.NewMessage(models.MessageError,
			fmt.Sprintf("A global message contains a condition that could not be evaluated. Details: %s", err)))
	}
	globals = append(globals, diagnostics...)
	snapshot.GlobalMessages = s.messageViews(globals, lang)

	s.logger.Debug().
		Str("game", session.Folder()).
		Int("plugins", len(snapshot.Plugins)).
		Int("global_messages", len(snapshot.GlobalMessages)).
		Msg("Resolved game snapshot")

	return snapshot
}

// evalAllConditions filters the record's conditioned messages, tags and
// dirtiness records, dropping entries whose condition is false. The first
// evaluation failure stops filtering and leaves the remaining governed
// content in place: resolution fails open, reporting rather than
// discarding.
func (s *Service) evalAllConditions(meta *models.PluginMetadata, eval interfaces.ConditionEvaluator, lang string) error {
	filtered, err := s.filterMessages(meta.Messages, eval, lang)
	meta.Messages = filtered
	if err != nil {
		return err
	}

	keptTags := meta.Tags[:0:0]
	for i, tag := range meta.Tags {
		if !tag.HasCondition() {
			keptTags = append(keptTags, tag)
			continue
		}
		ok, evalErr := eval.Evaluate(tag.Condition, lang)
		if evalErr != nil {
			meta.Tags = append(keptTags, meta.Tags[i:]...)
			return evalErr
		}
		if ok {
			keptTags = append(keptTags, tag)
		}
	}
	meta.Tags = keptTags

	keptDirty := meta.DirtyInfo[:0:0]
	for i, record := range meta.DirtyInfo {
		if !record.HasCondition() {
			keptDirty = append(keptDirty, record)
			continue
		}
		ok, evalErr := eval.Evaluate(record.Condition, lang)
		if evalErr != nil {
			meta.DirtyInfo = append(keptDirty, meta.DirtyInfo[i:]...)
			return evalErr
		}
		if ok {
			keptDirty = append(keptDirty, record)
		}
	}
	meta.DirtyInfo = keptDirty

	return nil
}

// filterMessages drops messages whose condition evaluates false. On an
// evaluation failure the current and remaining messages are kept and the
// error returned.
func (s *Service) filterMessages(messages []models.Message, eval interfaces.ConditionEvaluator, lang string) ([]models.Message, error) {
	kept := messages[:0:0]
	for i, msg := range messages {
		if !msg.HasCondition() {
			kept = append(kept, msg)
			continue
		}
		ok, err := eval.Evaluate(msg.Condition, lang)
		if err != nil {
			return append(kept, messages[i:]...), err
		}
		if ok {
			kept = append(kept, msg)
		}
	}
	return kept, nil
}

// checkInstallValidity verifies the record's requirements are installed
// and its incompatibilities are not, appending an error message for each
// violation. Violations are reported, never fatal.
func (s *Service) checkInstallValidity(meta *models.PluginMetadata, session *game.Session) {
	for _, required := range meta.Requirements {
		if !session.IsPluginInstalled(required) {
			meta.AppendMessage(models.NewMessage(models.MessageError,
				fmt.Sprintf("This plugin requires \"%s\" to be installed, but it is missing.", required)))
		}
	}
	for _, incompatible := range meta.Incompatibilities {
		if session.IsPluginInstalled(incompatible) {
			meta.AppendMessage(models.NewMessage(models.MessageError,
				fmt.Sprintf("This plugin is incompatible with \"%s\", but it is present.", incompatible)))
		}
	}
}

// layerView captures one layer's raw metadata for the snapshot before any
// condition filtering runs.
func (s *Service) layerView(meta models.PluginMetadata, lang string) *models.LayerView {
	modPriority, isGlobal := models.EncodePriority(meta.Priority)
	return &models.LayerView{
		Enabled:          meta.Enabled,
		ModPriority:      modPriority,
		IsGlobalPriority: isGlobal,
		After:            append([]string(nil), meta.LoadAfter...),
		Req:              append([]string(nil), meta.Requirements...),
		Inc:              append([]string(nil), meta.Incompatibilities...),
		Msg:              s.messageViews(meta.Messages, lang),
		Tag:              append([]models.Tag(nil), meta.Tags...),
		Dirty:            append([]models.CleaningData(nil), meta.DirtyInfo...),
	}
}

// messageViews resolves message text for the session language and renders
// it to HTML for the presentation layer.
func (s *Service) messageViews(messages []models.Message, lang string) []models.MessageView {
	views := make([]models.MessageView, 0, len(messages))
	for _, msg := range messages {
		content := msg.Text(lang)
		views = append(views, models.MessageView{
			Type:    msg.Type,
			Content: content,
			HTML:    s.renderMarkdown(content),
		})
	}
	return views
}

func (s *Service) renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(content), &buf); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to render message content")
		return ""
	}
	return strings.TrimSpace(buf.String())
}

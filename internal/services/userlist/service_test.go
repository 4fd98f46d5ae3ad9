package userlist

import (
	"context"
	"strings"
	"testing"

	"github.com/Gamma29/loot/internal/common"
	"github.com/Gamma29/loot/internal/interfaces"
	"github.com/Gamma29/loot/internal/models"
	"github.com/Gamma29/loot/internal/services/game"
)

// memoryStorage is an in-memory UserlistStorage for service tests.
type memoryStorage struct {
	records map[string]models.PluginMetadata
	seeded  map[string]bool
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{
		records: make(map[string]models.PluginMetadata),
		seeded:  make(map[string]bool),
	}
}

func (m *memoryStorage) key(folder, name string) string {
	return folder + "/" + strings.ToLower(name)
}

func (m *memoryStorage) Save(ctx context.Context, folder string, meta models.PluginMetadata) error {
	m.records[m.key(folder, meta.Name)] = meta
	return nil
}

func (m *memoryStorage) Delete(ctx context.Context, folder string, name string) error {
	key := m.key(folder, name)
	if _, ok := m.records[key]; !ok {
		return interfaces.ErrMetadataNotFound
	}
	delete(m.records, key)
	return nil
}

func (m *memoryStorage) DeleteAll(ctx context.Context, folder string) error {
	for key := range m.records {
		if strings.HasPrefix(key, folder+"/") {
			delete(m.records, key)
		}
	}
	return nil
}

func (m *memoryStorage) Seeded(ctx context.Context, folder string) (bool, error) {
	return m.seeded[folder], nil
}

func (m *memoryStorage) MarkSeeded(ctx context.Context, folder string) error {
	m.seeded[folder] = true
	return nil
}

func (m *memoryStorage) List(ctx context.Context, folder string) ([]models.PluginMetadata, error) {
	var out []models.PluginMetadata
	for key, meta := range m.records {
		if strings.HasPrefix(key, folder+"/") {
			out = append(out, meta)
		}
	}
	return out, nil
}

func newTestSession(masterlist, userlist models.MetadataList) *game.Session {
	session := game.NewSession(
		common.GameConfig{Name: "TES V: Skyrim", Folder: "Skyrim"},
		&game.StaticIdentifierLoader{},
		common.GetLogger(),
	)
	session.SetMasterlist(masterlist, models.MasterlistInfo{})
	session.SetUserlist(userlist)
	return session
}

func TestCopyMetadataNameOnly(t *testing.T) {
	clipboard := NewMemoryClipboard()
	service := NewService(newMemoryStorage(), clipboard, common.GetLogger())
	session := newTestSession(models.MetadataList{}, models.MetadataList{})

	text, err := service.CopyMetadata(session, "Unknown.esp")
	if err != nil {
		t.Fatalf("CopyMetadata failed: %v", err)
	}

	if text != "name: Unknown.esp" {
		t.Errorf("text = %q, want the short name-only form", text)
	}
	if clipboard.Text() != text {
		t.Error("rendered text must reach the clipboard")
	}
}

func TestCopyMetadataMergedDocument(t *testing.T) {
	mlist := models.NewPluginMetadata("Example.esp")
	mlist.Priority = 3
	masterlist := models.MetadataList{}
	masterlist.Upsert(mlist)

	ulist := models.NewPluginMetadata("Example.esp")
	ulist.LoadAfter = []string{"Base.esm"}
	userlist := models.MetadataList{}
	userlist.Upsert(ulist)

	clipboard := &MemoryClipboard{}
	service := NewService(newMemoryStorage(), clipboard, common.GetLogger())
	session := newTestSession(masterlist, userlist)

	text, err := service.CopyMetadata(session, "Example.esp")
	if err != nil {
		t.Fatalf("CopyMetadata failed: %v", err)
	}

	if !strings.Contains(text, "name: Example.esp") {
		t.Errorf("text should carry the plugin name:\n%s", text)
	}
	if !strings.Contains(text, "priority: 3") {
		t.Errorf("text should carry the masterlist priority:\n%s", text)
	}
	if !strings.Contains(text, "Base.esm") {
		t.Errorf("text should carry the userlist load-after entry:\n%s", text)
	}
}

func TestClearPlugin(t *testing.T) {
	meta := models.NewPluginMetadata("Example.esp")
	meta.Priority = 5
	userlist := models.MetadataList{}
	userlist.Upsert(meta)

	storage := newMemoryStorage()
	ctx := context.Background()
	if err := storage.Save(ctx, "Skyrim", meta); err != nil {
		t.Fatal(err)
	}

	service := NewService(storage, &MemoryClipboard{}, common.GetLogger())
	session := newTestSession(models.MetadataList{}, userlist)

	if err := service.ClearPlugin(ctx, session, "EXAMPLE.esp"); err != nil {
		t.Fatalf("ClearPlugin failed: %v", err)
	}

	if len(session.Userlist().Plugins) != 0 {
		t.Error("record should be removed from the in-memory userlist")
	}
	if len(storage.records) != 0 {
		t.Error("record should be removed from storage")
	}

	// Clearing an absent record is a no-op, not an error.
	if err := service.ClearPlugin(ctx, session, "Example.esp"); err != nil {
		t.Errorf("clearing an absent record should succeed, got %v", err)
	}
}

func TestClearAll(t *testing.T) {
	userlist := models.MetadataList{
		Messages: []models.Message{models.NewMessage(models.MessageSay, "note")},
	}
	userlist.Upsert(models.NewPluginMetadata("A.esp"))
	userlist.Upsert(models.NewPluginMetadata("B.esp"))

	storage := newMemoryStorage()
	ctx := context.Background()
	_ = storage.Save(ctx, "Skyrim", models.NewPluginMetadata("A.esp"))
	_ = storage.Save(ctx, "Oblivion", models.NewPluginMetadata("C.esp"))

	service := NewService(storage, &MemoryClipboard{}, common.GetLogger())
	session := newTestSession(models.MetadataList{}, userlist)

	if err := service.ClearAll(ctx, session); err != nil {
		t.Fatalf("ClearAll failed: %v", err)
	}

	if len(session.Userlist().Plugins) != 0 || len(session.Userlist().Messages) != 0 {
		t.Error("userlist should be emptied")
	}
	if _, ok := storage.records["Oblivion/c.esp"]; !ok || len(storage.records) != 1 {
		t.Error("other games' records must be untouched")
	}

	// Idempotent.
	if err := service.ClearAll(ctx, session); err != nil {
		t.Errorf("clearing an empty userlist should succeed, got %v", err)
	}
}

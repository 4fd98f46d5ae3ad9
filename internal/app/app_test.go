package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Gamma29/loot/internal/common"
	"github.com/Gamma29/loot/internal/models"
	"github.com/Gamma29/loot/internal/services/metadata"
	"github.com/Gamma29/loot/internal/storage/badger"
)

const sampleUserlist = `plugins:
  - name: Example.esp
    priority: 5
globals:
  - type: say
    content: User note.
`

func newTestApp(t *testing.T) *App {
	t.Helper()

	logger := common.GetLogger()
	manager, err := badger.NewManager(logger, &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "loot.db"),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return &App{
		Logger:         logger,
		StorageManager: manager,
		MetadataLoader: metadata.NewLoader(logger),
	}
}

func writeUserlist(t *testing.T, content string) common.GameConfig {
	t.Helper()
	path := filepath.Join(t.TempDir(), "userlist.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return common.GameConfig{Name: "TES V: Skyrim", Folder: "Skyrim", UserlistPath: path}
}

func TestLoadUserlistSeedsOnce(t *testing.T) {
	app := newTestApp(t)
	gc := writeUserlist(t, sampleUserlist)
	ctx := context.Background()

	list, err := app.loadUserlist(ctx, gc)
	if err != nil {
		t.Fatalf("loadUserlist failed: %v", err)
	}
	if len(list.Plugins) != 1 || list.Plugins[0].Priority != 5 {
		t.Fatalf("first load should carry the document records, got %+v", list.Plugins)
	}

	store := app.StorageManager.UserlistStorage()
	stored, err := store.List(ctx, gc.Folder)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 1 {
		t.Fatalf("document should seed the store, got %d records", len(stored))
	}

	// Stored edits win over the document on later loads.
	edited := models.NewPluginMetadata("Example.esp")
	edited.Priority = 9
	if err := store.Save(ctx, gc.Folder, edited); err != nil {
		t.Fatal(err)
	}

	list, err = app.loadUserlist(ctx, gc)
	if err != nil {
		t.Fatalf("loadUserlist failed: %v", err)
	}
	if len(list.Plugins) != 1 || list.Plugins[0].Priority != 9 {
		t.Errorf("stored records must be authoritative after seeding, got %+v", list.Plugins)
	}
}

func TestLoadUserlistClearedRecordsStayCleared(t *testing.T) {
	app := newTestApp(t)
	gc := writeUserlist(t, sampleUserlist)
	ctx := context.Background()

	if _, err := app.loadUserlist(ctx, gc); err != nil {
		t.Fatalf("loadUserlist failed: %v", err)
	}

	// Clear the user layer through the store, as userlist.Service.ClearAll does.
	store := app.StorageManager.UserlistStorage()
	if err := store.DeleteAll(ctx, gc.Folder); err != nil {
		t.Fatal(err)
	}

	// Next startup: the document must not re-seed the emptied store.
	list, err := app.loadUserlist(ctx, gc)
	if err != nil {
		t.Fatalf("loadUserlist failed: %v", err)
	}
	if len(list.Plugins) != 0 {
		t.Errorf("cleared records came back after reload: %+v", list.Plugins)
	}

	stored, err := store.List(ctx, gc.Folder)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 0 {
		t.Errorf("store was re-seeded after a clear: %+v", stored)
	}

	// Document globals still come from the file.
	if len(list.Messages) != 1 || list.Messages[0].Content != "User note." {
		t.Errorf("global messages should still load from the document, got %+v", list.Messages)
	}
}

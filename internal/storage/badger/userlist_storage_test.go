package badger

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Gamma29/loot/internal/common"
	"github.com/Gamma29/loot/internal/interfaces"
	"github.com/Gamma29/loot/internal/models"
)

func newTestStorage(t *testing.T) interfaces.UserlistStorage {
	t.Helper()

	config := &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "loot.db")}
	manager, err := NewManager(common.GetLogger(), config)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	return manager.UserlistStorage()
}

func TestSaveAndList(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	meta := models.NewPluginMetadata("Example.esp")
	meta.Priority = 5
	meta.LoadAfter = []string{"Base.esm"}

	if err := storage.Save(ctx, "Skyrim", meta); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := storage.Save(ctx, "Skyrim", models.NewPluginMetadata("Another.esp")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := storage.Save(ctx, "Oblivion", models.NewPluginMetadata("Other.esp")); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	records, err := storage.List(ctx, "Skyrim")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	// Sorted by name.
	if records[0].Name != "Another.esp" || records[1].Name != "Example.esp" {
		t.Errorf("records = %v, %v", records[0].Name, records[1].Name)
	}
	if records[1].Priority != 5 || len(records[1].LoadAfter) != 1 {
		t.Errorf("stored metadata lost fields: %+v", records[1])
	}
}

func TestSaveUpsertsByName(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	first := models.NewPluginMetadata("Example.esp")
	first.Priority = 1
	if err := storage.Save(ctx, "Skyrim", first); err != nil {
		t.Fatal(err)
	}

	second := models.NewPluginMetadata("EXAMPLE.esp")
	second.Priority = 2
	if err := storage.Save(ctx, "Skyrim", second); err != nil {
		t.Fatal(err)
	}

	records, err := storage.List(ctx, "Skyrim")
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("case-differing saves should collapse to one record, got %d", len(records))
	}
	if records[0].Priority != 2 {
		t.Errorf("Priority = %d, want the later save", records[0].Priority)
	}
}

func TestDelete(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	if err := storage.Save(ctx, "Skyrim", models.NewPluginMetadata("Example.esp")); err != nil {
		t.Fatal(err)
	}

	if err := storage.Delete(ctx, "Skyrim", "EXAMPLE.ESP"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	err := storage.Delete(ctx, "Skyrim", "Example.esp")
	if !errors.Is(err, interfaces.ErrMetadataNotFound) {
		t.Errorf("deleting an absent record should return ErrMetadataNotFound, got %v", err)
	}
}

func TestDeleteAll(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	for _, name := range []string{"A.esp", "B.esp"} {
		if err := storage.Save(ctx, "Skyrim", models.NewPluginMetadata(name)); err != nil {
			t.Fatal(err)
		}
	}
	if err := storage.Save(ctx, "Oblivion", models.NewPluginMetadata("C.esp")); err != nil {
		t.Fatal(err)
	}

	if err := storage.DeleteAll(ctx, "Skyrim"); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	skyrim, err := storage.List(ctx, "Skyrim")
	if err != nil {
		t.Fatal(err)
	}
	if len(skyrim) != 0 {
		t.Errorf("Skyrim records = %d, want 0", len(skyrim))
	}

	oblivion, err := storage.List(ctx, "Oblivion")
	if err != nil {
		t.Fatal(err)
	}
	if len(oblivion) != 1 {
		t.Errorf("Oblivion records = %d, other games must be untouched", len(oblivion))
	}

	// Idempotent.
	if err := storage.DeleteAll(ctx, "Skyrim"); err != nil {
		t.Errorf("DeleteAll on an empty folder should succeed, got %v", err)
	}
}

func TestSeedMarker(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	seeded, err := storage.Seeded(ctx, "Skyrim")
	if err != nil {
		t.Fatalf("Seeded failed: %v", err)
	}
	if seeded {
		t.Error("fresh store must report unseeded")
	}

	if err := storage.MarkSeeded(ctx, "Skyrim"); err != nil {
		t.Fatalf("MarkSeeded failed: %v", err)
	}

	seeded, err = storage.Seeded(ctx, "SKYRIM")
	if err != nil {
		t.Fatalf("Seeded failed: %v", err)
	}
	if !seeded {
		t.Error("marker lookup should be case-insensitive")
	}

	// Markers are per folder.
	if seeded, _ := storage.Seeded(ctx, "Oblivion"); seeded {
		t.Error("marker for one folder must not leak into another")
	}

	// MarkSeeded is idempotent.
	if err := storage.MarkSeeded(ctx, "Skyrim"); err != nil {
		t.Errorf("repeated MarkSeeded should succeed, got %v", err)
	}
}

func TestDeleteAllPreservesSeedMarker(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	if err := storage.Save(ctx, "Skyrim", models.NewPluginMetadata("A.esp")); err != nil {
		t.Fatal(err)
	}
	if err := storage.MarkSeeded(ctx, "Skyrim"); err != nil {
		t.Fatal(err)
	}

	if err := storage.DeleteAll(ctx, "Skyrim"); err != nil {
		t.Fatalf("DeleteAll failed: %v", err)
	}

	seeded, err := storage.Seeded(ctx, "Skyrim")
	if err != nil {
		t.Fatalf("Seeded failed: %v", err)
	}
	if !seeded {
		t.Error("clearing metadata must not erase the seed marker")
	}
}

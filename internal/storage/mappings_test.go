package storage

import (
	"context"
	"errors"
	"testing"

	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
)

func createTestCategory(t *testing.T, store *SQLiteStorage, userID int64, name string) *model.Category {
	t.Helper()
	cat, err := store.CreateCategory(context.Background(), userID, name, "", "")
	if err != nil {
		t.Fatalf("Failed to create category: %v", err)
	}
	return cat
}

func TestSQLiteStorage_CreateMapping(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	cat := createTestCategory(t, store, 1, "Dining")

	mapping := &model.CategoryMapping{
		UserID:     1,
		CategoryID: cat.ID,
		Type:       model.MappingCounterparty,
		Pattern:    "JENAN TEA MUTT",
	}
	if err := store.CreateMapping(ctx, mapping); err != nil {
		t.Fatalf("CreateMapping failed: %v", err)
	}
	if mapping.ID == 0 {
		t.Error("Expected mapping ID to be filled in")
	}

	// Creating the identical mapping again reuses it.
	dup := &model.CategoryMapping{
		UserID:     1,
		CategoryID: cat.ID,
		Type:       model.MappingCounterparty,
		Pattern:    "JENAN TEA MUTT",
	}
	if err := store.CreateMapping(ctx, dup); err != nil {
		t.Fatalf("CreateMapping failed: %v", err)
	}
	if dup.ID != mapping.ID {
		t.Errorf("Expected existing mapping %d to be reused, got %d", mapping.ID, dup.ID)
	}
}

func TestSQLiteStorage_CreateMapping_Validation(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	tests := []struct {
		mapping *model.CategoryMapping
		name    string
	}{
		{name: "nil mapping", mapping: nil},
		{name: "missing user", mapping: &model.CategoryMapping{CategoryID: 1, Type: model.MappingCounterparty, Pattern: "x"}},
		{name: "missing category", mapping: &model.CategoryMapping{UserID: 1, Type: model.MappingCounterparty, Pattern: "x"}},
		{name: "missing pattern", mapping: &model.CategoryMapping{UserID: 1, CategoryID: 1, Type: model.MappingCounterparty}},
		{name: "bad type", mapping: &model.CategoryMapping{UserID: 1, CategoryID: 1, Type: "merchant", Pattern: "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.CreateMapping(ctx, tt.mapping); err == nil {
				t.Error("Expected error, got nil")
			}
		})
	}
}

func TestSQLiteStorage_CreateMapping_PatternSteal(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	dining := createTestCategory(t, store, 1, "Dining")
	groceries := createTestCategory(t, store, 1, "Groceries")

	if err := store.CreateMapping(ctx, &model.CategoryMapping{
		UserID:     1,
		CategoryID: dining.ID,
		Type:       model.MappingCounterparty,
		Pattern:    "LULU HYPERMARKET",
	}); err != nil {
		t.Fatalf("CreateMapping failed: %v", err)
	}

	// Mapping the same pattern to another category replaces the owner.
	if err := store.CreateMapping(ctx, &model.CategoryMapping{
		UserID:     1,
		CategoryID: groceries.ID,
		Type:       model.MappingCounterparty,
		Pattern:    "LULU HYPERMARKET",
	}); err != nil {
		t.Fatalf("CreateMapping failed: %v", err)
	}

	mappings, err := store.GetMappings(ctx, 1)
	if err != nil {
		t.Fatalf("GetMappings failed: %v", err)
	}
	if len(mappings) != 1 {
		t.Fatalf("Expected 1 mapping after steal, got %d", len(mappings))
	}
	if mappings[0].CategoryID != groceries.ID {
		t.Errorf("Expected pattern to belong to category %d, got %d", groceries.ID, mappings[0].CategoryID)
	}

	// The same pattern under the other mapping type is independent.
	if err := store.CreateMapping(ctx, &model.CategoryMapping{
		UserID:     1,
		CategoryID: dining.ID,
		Type:       model.MappingDescription,
		Pattern:    "LULU HYPERMARKET",
	}); err != nil {
		t.Fatalf("CreateMapping failed: %v", err)
	}
	mappings, err = store.GetMappingsByType(ctx, 1, model.MappingDescription)
	if err != nil {
		t.Fatalf("GetMappingsByType failed: %v", err)
	}
	if len(mappings) != 1 || mappings[0].CategoryID != dining.ID {
		t.Errorf("Expected independent description mapping, got %+v", mappings)
	}
}

func TestSQLiteStorage_GetMappingByPattern(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	cat := createTestCategory(t, store, 1, "Dining")
	if err := store.CreateMapping(ctx, &model.CategoryMapping{
		UserID:     1,
		CategoryID: cat.ID,
		Type:       model.MappingCounterparty,
		Pattern:    "JENAN TEA MUTT",
	}); err != nil {
		t.Fatalf("CreateMapping failed: %v", err)
	}

	mapping, err := store.GetMappingByPattern(ctx, 1, model.MappingCounterparty, "JENAN TEA MUTT")
	if err != nil {
		t.Fatalf("GetMappingByPattern failed: %v", err)
	}
	if mapping == nil || mapping.CategoryID != cat.ID {
		t.Fatalf("Expected mapping to category %d, got %+v", cat.ID, mapping)
	}

	// A miss is nil with no error.
	mapping, err = store.GetMappingByPattern(ctx, 1, model.MappingCounterparty, "UNKNOWN")
	if err != nil {
		t.Fatalf("GetMappingByPattern failed: %v", err)
	}
	if mapping != nil {
		t.Errorf("Expected nil for unknown pattern, got %+v", mapping)
	}

	// Patterns are per user.
	mapping, err = store.GetMappingByPattern(ctx, 2, model.MappingCounterparty, "JENAN TEA MUTT")
	if err != nil {
		t.Fatalf("GetMappingByPattern failed: %v", err)
	}
	if mapping != nil {
		t.Errorf("Expected nil for other user, got %+v", mapping)
	}
}

func TestSQLiteStorage_DeleteMapping(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	cat := createTestCategory(t, store, 1, "Dining")
	mapping := &model.CategoryMapping{
		UserID:     1,
		CategoryID: cat.ID,
		Type:       model.MappingCounterparty,
		Pattern:    "JENAN TEA MUTT",
	}
	if err := store.CreateMapping(ctx, mapping); err != nil {
		t.Fatalf("CreateMapping failed: %v", err)
	}

	if err := store.DeleteMapping(ctx, 2, mapping.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other user, got %v", err)
	}
	if err := store.DeleteMapping(ctx, 1, mapping.ID); err != nil {
		t.Fatalf("DeleteMapping failed: %v", err)
	}
	if err := store.DeleteMapping(ctx, 1, mapping.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

func TestSQLiteStorage_GetCounterpartyCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	got, err := store.GetCounterpartyCategory(ctx, 1, 42)
	if err != nil {
		t.Fatalf("GetCounterpartyCategory failed: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for unlinked counterparty, got %v", *got)
	}

	cat := createTestCategory(t, store, 1, "Transportation")
	if _, err := store.db.ExecContext(ctx,
		`INSERT INTO counterparty_categories (user_id, counterparty_id, category_id) VALUES (?, ?, ?)`,
		1, 42, cat.ID); err != nil {
		t.Fatalf("Failed to insert counterparty link: %v", err)
	}

	got, err = store.GetCounterpartyCategory(ctx, 1, 42)
	if err != nil {
		t.Fatalf("GetCounterpartyCategory failed: %v", err)
	}
	if got == nil || *got != cat.ID {
		t.Errorf("Expected category %d, got %v", cat.ID, got)
	}
}

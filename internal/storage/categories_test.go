package storage

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/amalhadhrami/ghwazi/internal/common"
	"github.com/amalhadhrami/ghwazi/internal/model"
)

var hexColorRe = regexp.MustCompile(`^#[0-9A-F]{6}$`)

func TestSQLiteStorage_CreateCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	cat, err := store.CreateCategory(ctx, 1, "Groceries", "Food shopping", "#4ECDC4")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if cat.ID == 0 {
		t.Error("Expected category ID to be filled in")
	}
	if cat.Color != "#4ECDC4" {
		t.Errorf("Expected explicit color to be kept, got %q", cat.Color)
	}

	// Creating the same name again returns the existing category.
	again, err := store.CreateCategory(ctx, 1, "Groceries", "different text", "")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if again.ID != cat.ID {
		t.Errorf("Expected existing category %d, got %d", cat.ID, again.ID)
	}
	if again.Description != "Food shopping" {
		t.Errorf("Expected stored description to be kept, got %q", again.Description)
	}

	// A second user gets their own category under the same name.
	other, err := store.CreateCategory(ctx, 2, "Groceries", "", "")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if other.ID == cat.ID {
		t.Error("Expected a distinct category for the other user")
	}

	if _, err := store.CreateCategory(ctx, 1, "", "", ""); err == nil {
		t.Error("Expected error for empty name")
	}
}

func TestSQLiteStorage_CreateCategory_GeneratedColor(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	seen := make(map[string]bool)
	for _, name := range []string{"Dining", "Transportation", "Utilities"} {
		cat, err := store.CreateCategory(ctx, 1, name, "", "")
		if err != nil {
			t.Fatalf("CreateCategory failed: %v", err)
		}
		if !hexColorRe.MatchString(cat.Color) {
			t.Errorf("Expected generated hex color, got %q", cat.Color)
		}
		if seen[cat.Color] {
			t.Errorf("Expected unique colors, got %q twice", cat.Color)
		}
		seen[cat.Color] = true
	}
}

func TestSQLiteStorage_GetCategories(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	if _, err := store.CreateCategory(ctx, 1, "Utilities", "", ""); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if _, err := store.CreateCategory(ctx, 1, "Dining", "", ""); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	categories, err := store.GetCategories(ctx, 1)
	if err != nil {
		t.Fatalf("GetCategories failed: %v", err)
	}
	if len(categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(categories))
	}
	// Ordered by name.
	if categories[0].Name != "Dining" || categories[1].Name != "Utilities" {
		t.Errorf("Unexpected order: %q, %q", categories[0].Name, categories[1].Name)
	}
}

func TestSQLiteStorage_UpdateCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	cat, err := store.CreateCategory(ctx, 1, "Dining", "Eating out", "#FF6B6B")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	// Empty fields leave the stored values alone.
	if err := store.UpdateCategory(ctx, 1, cat.ID, "Restaurants", "", ""); err != nil {
		t.Fatalf("UpdateCategory failed: %v", err)
	}

	got, err := store.GetCategory(ctx, 1, cat.ID)
	if err != nil {
		t.Fatalf("GetCategory failed: %v", err)
	}
	if got.Name != "Restaurants" {
		t.Errorf("Expected name %q, got %q", "Restaurants", got.Name)
	}
	if got.Description != "Eating out" {
		t.Errorf("Expected description to be unchanged, got %q", got.Description)
	}
	if got.Color != "#FF6B6B" {
		t.Errorf("Expected color to be unchanged, got %q", got.Color)
	}

	if err := store.UpdateCategory(ctx, 1, 9999, "x", "", ""); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
	if err := store.UpdateCategory(ctx, 2, cat.ID, "x", "", ""); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for other user, got %v", err)
	}
}

func TestSQLiteStorage_DeleteCategory(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	ctx := context.Background()
	account := createTestAccount(t, store, 1, "xxxx0019")
	txn := createStoredTransaction(t, store, account.ID, "email-1", "", "JENAN TEA MUTT")

	cat, err := store.CreateCategory(ctx, 1, "Dining", "", "")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if err := store.AssignCategory(ctx, []int64{txn.ID}, cat.ID); err != nil {
		t.Fatalf("AssignCategory failed: %v", err)
	}
	if err := store.CreateMapping(ctx, &model.CategoryMapping{
		UserID:     1,
		CategoryID: cat.ID,
		Type:       model.MappingCounterparty,
		Pattern:    "JENAN TEA MUTT",
	}); err != nil {
		t.Fatalf("CreateMapping failed: %v", err)
	}

	if err := store.DeleteCategory(ctx, 1, cat.ID); err != nil {
		t.Fatalf("DeleteCategory failed: %v", err)
	}

	// The transaction becomes uncategorized rather than deleted.
	got, err := store.GetTransaction(ctx, 1, txn.ID)
	if err != nil {
		t.Fatalf("GetTransaction failed: %v", err)
	}
	if got.CategoryID != nil {
		t.Errorf("Expected transaction to lose its category, got %v", *got.CategoryID)
	}

	// The mapping is gone with the category.
	mapping, err := store.GetMappingByPattern(ctx, 1, model.MappingCounterparty, "JENAN TEA MUTT")
	if err != nil {
		t.Fatalf("GetMappingByPattern failed: %v", err)
	}
	if mapping != nil {
		t.Errorf("Expected mapping to cascade away, got %+v", mapping)
	}

	if err := store.DeleteCategory(ctx, 1, cat.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on second delete, got %v", err)
	}
}

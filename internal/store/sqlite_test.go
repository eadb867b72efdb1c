package store

import (
	"context"
	"errors"
	"testing"

	"github.com/dmoralestech/todo-service/internal/model"
)

// newTestSQLiteStore opens a process-local database and registers cleanup.
func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	store, err := NewSQLiteStore(InMemoryDSN)
	if err != nil {
		t.Fatalf("NewSQLiteStore() failed: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

func TestSQLiteStore_CreateAndGet(t *testing.T) {
	// Arrange
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	// Act
	created, err := store.Create(ctx, "  Buy milk  ")

	// Assert
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}
	if created.ID == "" {
		t.Error("Create() should generate an ID")
	}
	if created.Text != "Buy milk" {
		t.Errorf("Text = %q, want %q", created.Text, "Buy milk")
	}
	if created.Completed {
		t.Error("new items should not be completed")
	}
	if created.UpdatedAt != nil {
		t.Error("UpdatedAt should be nil until first mutation")
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if got.ID != created.ID || got.Text != created.Text {
		t.Errorf("Get() = %+v, want %+v", got, created)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestSQLiteStore_Create_EmptyText(t *testing.T) {
	store := newTestSQLiteStore(t)

	if _, err := store.Create(context.Background(), "   "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Create() error = %v, want ErrEmptyText", err)
	}
}

func TestSQLiteStore_List_InsertionOrder(t *testing.T) {
	// Arrange
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		if _, err := store.Create(ctx, text); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}

	// Act
	items, err := store.List(ctx)

	// Assert
	if err != nil {
		t.Fatalf("List() unexpected error: %v", err)
	}
	if len(items) != len(texts) {
		t.Fatalf("List() returned %d items, want %d", len(items), len(texts))
	}
	for i, text := range texts {
		if items[i].Text != text {
			t.Errorf("items[%d].Text = %q, want %q", i, items[i].Text, text)
		}
	}
}

func TestSQLiteStore_ListFiltered(t *testing.T) {
	// Arrange
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	_, _ = store.Create(ctx, "active one")
	b, _ := store.Create(ctx, "to complete")
	_, _ = store.Create(ctx, "active two")
	if _, err := store.Toggle(ctx, b.ID); err != nil {
		t.Fatalf("Toggle() failed: %v", err)
	}

	// Act
	active, err := store.ListFiltered(ctx, model.FilterActive)
	if err != nil {
		t.Fatalf("ListFiltered(active) failed: %v", err)
	}
	completed, err := store.ListFiltered(ctx, model.FilterCompleted)
	if err != nil {
		t.Fatalf("ListFiltered(completed) failed: %v", err)
	}

	// Assert
	if len(active) != 2 || active[0].Text != "active one" || active[1].Text != "active two" {
		t.Errorf("active view = %+v, want [active one, active two]", active)
	}
	if len(completed) != 1 || completed[0].Text != "to complete" {
		t.Errorf("completed view = %+v, want [to complete]", completed)
	}

	if _, err := store.ListFiltered(ctx, model.Filter("bogus")); !errors.Is(err, model.ErrInvalidFilter) {
		t.Errorf("ListFiltered(bogus) error = %v, want ErrInvalidFilter", err)
	}
}

func TestSQLiteStore_Stats(t *testing.T) {
	// Arrange
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	first, _ := store.Create(ctx, "first")
	_, _ = store.Create(ctx, "second")
	if _, err := store.Toggle(ctx, first.ID); err != nil {
		t.Fatalf("Toggle() failed: %v", err)
	}

	// Act
	stats, err := store.Stats(ctx)

	// Assert
	if err != nil {
		t.Fatalf("Stats() unexpected error: %v", err)
	}
	if stats != (model.Stats{Total: 2, Active: 1, Completed: 1}) {
		t.Errorf("Stats() = %+v, want {2 1 1}", stats)
	}
	if stats.Active+stats.Completed != stats.Total {
		t.Errorf("stats invariant violated: %+v", stats)
	}
}

func TestSQLiteStore_Stats_Empty(t *testing.T) {
	store := newTestSQLiteStore(t)

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats() unexpected error: %v", err)
	}
	if stats != (model.Stats{}) {
		t.Errorf("Stats() = %+v, want all zero", stats)
	}
}

func TestSQLiteStore_Update(t *testing.T) {
	// Arrange
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	created, _ := store.Create(ctx, "Original text")

	// Act
	newText := "Updated text"
	updated, err := store.Update(ctx, created.ID, model.UpdateRequest{Text: &newText})

	// Assert
	if err != nil {
		t.Fatalf("Update() unexpected error: %v", err)
	}
	if updated.Text != newText {
		t.Errorf("Text = %q, want %q", updated.Text, newText)
	}
	if updated.ID != created.ID {
		t.Error("ID must never change on update")
	}
	if !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Error("CreatedAt must never change on update")
	}
	if updated.UpdatedAt == nil {
		t.Error("UpdatedAt should be stamped on update")
	}
	if updated.Completed {
		t.Error("absent completed field must leave completion untouched")
	}
}

func TestSQLiteStore_Update_Errors(t *testing.T) {
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	newText := "x"
	emptyText := " "

	tests := []struct {
		name    string
		id      string
		req     model.UpdateRequest
		wantErr error
	}{
		{name: "not found", id: "unknown", req: model.UpdateRequest{Text: &newText}, wantErr: ErrNotFound},
		{name: "empty id", id: "", req: model.UpdateRequest{Text: &newText}, wantErr: ErrInvalidID},
		{name: "empty update", id: "unknown", req: model.UpdateRequest{}, wantErr: ErrEmptyUpdate},
		{name: "whitespace text", id: "unknown", req: model.UpdateRequest{Text: &emptyText}, wantErr: ErrEmptyText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Update(ctx, tt.id, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("Update() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSQLiteStore_Toggle_Involution(t *testing.T) {
	// Arrange
	store := newTestSQLiteStore(t)
	ctx := context.Background()
	created, _ := store.Create(ctx, "Buy milk")

	// Act / Assert
	toggled, err := store.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("Toggle() failed: %v", err)
	}
	if !toggled.Completed {
		t.Error("first Toggle() should mark the item completed")
	}

	toggled, err = store.Toggle(ctx, created.ID)
	if err != nil {
		t.Fatalf("Toggle() failed: %v", err)
	}
	if toggled.Completed {
		t.Error("second Toggle() should restore the original completed value")
	}
}

func TestSQLiteStore_Delete(t *testing.T) {
	// Arrange
	store := newTestSQLiteStore(t)
	ctx := context.Background()

	_, _ = store.Create(ctx, "first")
	middle, _ := store.Create(ctx, "second")
	_, _ = store.Create(ctx, "third")

	// Act
	deletedID, err := store.Delete(ctx, middle.ID)

	// Assert
	if err != nil {
		t.Fatalf("Delete() unexpected error: %v", err)
	}
	if deletedID != middle.ID {
		t.Errorf("Delete() returned %q, want %q", deletedID, middle.ID)
	}

	items, _ := store.List(ctx)
	if len(items) != 2 || items[0].Text != "first" || items[1].Text != "third" {
		t.Errorf("remaining items = %+v, want [first, third]", items)
	}

	if _, err := store.Delete(ctx, middle.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
	if _, err := store.Toggle(ctx, middle.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Toggle() after delete error = %v, want ErrNotFound", err)
	}
}

func TestSQLiteStore_ImplementsInterfaces(t *testing.T) {
	var _ Store = (*SQLiteStore)(nil)
	var _ Closer = (*SQLiteStore)(nil)
}

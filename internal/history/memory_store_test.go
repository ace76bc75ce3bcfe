package history

import (
	"errors"
	"testing"
	"time"

	"github.com/laittg/chainable/pkg/api"
)

func TestMemoryStore_SaveGet(t *testing.T) {
	store := NewMemoryStore()

	rec := &api.RunRecord{
		ID:         "run-1",
		Chain:      "numbers",
		Status:     api.StatusCompleted,
		Tasks:      2,
		Results:    []any{6, 10},
		StartedAt:  time.Now().Add(-time.Second),
		FinishedAt: time.Now(),
	}
	if err := store.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Chain != "numbers" || got.Status != api.StatusCompleted || got.Tasks != 2 {
		t.Fatalf("unexpected record: %+v", got)
	}
	if len(got.Results) != 2 {
		t.Fatalf("expected 2 results, got %v", got.Results)
	}
}

func TestMemoryStore_GetMissing(t *testing.T) {
	store := NewMemoryStore()

	if _, err := store.GetRun("nope"); !errors.Is(err, api.ErrRunNotFound) {
		t.Fatalf("expected ErrRunNotFound, got %v", err)
	}
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()

	rec := &api.RunRecord{ID: "run-1", Chain: "numbers", Status: api.StatusCompleted}
	if err := store.SaveRun(rec); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	got.Chain = "mutated"

	again, err := store.GetRun("run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if again.Chain != "numbers" {
		t.Fatalf("stored record was mutated through a returned copy: %+v", again)
	}
}

func TestMemoryStore_ListFilters(t *testing.T) {
	store := NewMemoryStore()

	records := []*api.RunRecord{
		{ID: "a", Chain: "numbers", Status: api.StatusCompleted},
		{ID: "b", Chain: "numbers", Status: api.StatusFailed, Error: "boom"},
		{ID: "c", Chain: "letters", Status: api.StatusCompleted},
	}
	for _, rec := range records {
		if err := store.SaveRun(rec); err != nil {
			t.Fatalf("SaveRun failed: %v", err)
		}
	}

	all, err := store.ListRuns(api.RunFilter{})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 records, got %d", len(all))
	}
	// Listing preserves insertion order.
	if all[0].ID != "a" || all[1].ID != "b" || all[2].ID != "c" {
		t.Fatalf("unexpected order: %v %v %v", all[0].ID, all[1].ID, all[2].ID)
	}

	numbers, err := store.ListRuns(api.RunFilter{Chain: "numbers"})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(numbers) != 2 {
		t.Fatalf("expected 2 records, got %d", len(numbers))
	}

	failed, err := store.ListRuns(api.RunFilter{Chain: "numbers", Status: api.StatusFailed})
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(failed) != 1 || failed[0].ID != "b" {
		t.Fatalf("unexpected filtered records: %+v", failed)
	}
}

package analyses

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryRepoListNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	base := time.Now().UTC()
	for i, id := range []string{"a1", "a2", "a3"} {
		if err := repo.Create(context.Background(), Analysis{
			ID:        id,
			Status:    StatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	out, err := repo.List(context.Background(), 2, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(out) != 2 || out[0].ID != "a3" || out[1].ID != "a2" {
		t.Fatalf("list = %v", out)
	}

	out, err = repo.List(context.Background(), 2, 2)
	if err != nil {
		t.Fatalf("list offset: %v", err)
	}
	if len(out) != 1 || out[0].ID != "a1" {
		t.Fatalf("offset list = %v", out)
	}

	out, err = repo.List(context.Background(), 10, 10)
	if err != nil || len(out) != 0 {
		t.Fatalf("out-of-range offset should return empty, got %v %v", out, err)
	}
}

func TestMemoryRepoUpdate(t *testing.T) {
	repo := NewMemoryRepo()
	if err := repo.Update(context.Background(), Analysis{ID: "missing"}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	created := Analysis{ID: "a1", Status: StatusProcessing, CreatedAt: time.Now().UTC().Add(-time.Hour)}
	if err := repo.Create(context.Background(), created); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Update(context.Background(), Analysis{ID: "a1", Status: StatusCompleted}); err != nil {
		t.Fatalf("update: %v", err)
	}
	got, err := repo.GetByID(context.Background(), "a1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != StatusCompleted {
		t.Fatalf("status = %q", got.Status)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Fatalf("update must preserve CreatedAt")
	}
}

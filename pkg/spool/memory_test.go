package spool_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-print/pkg/spool"
)

func TestMemoryListNewestFirst(t *testing.T) {
	s := spool.NewMemory()
	defer s.Close()
	ctx := context.Background()

	for i, f := range []string{"a", "b", "c"} {
		j := spool.Job{ID: uuid.New(), Destination: "PRN", Format: f, CreatedAt: time.Unix(int64(i), 0)}
		if err := s.Enqueue(ctx, j); err != nil {
			t.Fatal(err)
		}
	}
	_ = s.Enqueue(ctx, spool.Job{ID: uuid.New(), Destination: "OTHER", Format: "z"})

	jobs, err := s.List(ctx, "PRN", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 2 || jobs[0].Format != "c" || jobs[1].Format != "b" {
		t.Errorf("List() = %+v", jobs)
	}

	all, _ := s.List(ctx, "PRN", 0)
	if len(all) != 3 {
		t.Errorf("List(limit=0) returned %d jobs, want 3", len(all))
	}

	none, _ := s.List(ctx, "missing", 10)
	if len(none) != 0 {
		t.Errorf("List(missing) = %+v", none)
	}
}

func TestMemoryClosed(t *testing.T) {
	s := spool.NewMemory()
	s.Close()
	if err := s.Enqueue(context.Background(), spool.Job{}); !errors.Is(err, spool.ErrClosed) {
		t.Errorf("Enqueue after Close = %v", err)
	}
	if _, err := s.List(context.Background(), "PRN", 1); !errors.Is(err, spool.ErrClosed) {
		t.Errorf("List after Close = %v", err)
	}
}

package postgres_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/joeydtaylor/steeze-print/pkg/spool"
	"github.com/joeydtaylor/steeze-print/pkg/spool/postgres"
)

// Runs only against a real database, e.g.
// SPOOL_TEST_DATABASE_URL=postgres://postgres@localhost/print_test
func TestStoreRoundTrip(t *testing.T) {
	dsn := os.Getenv("SPOOL_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SPOOL_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	st, err := postgres.New(ctx, dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()

	dest := "PRN-" + uuid.NewString()
	base := time.Now().UTC().Truncate(time.Millisecond)
	for i, f := range []string{"first", "second"} {
		j := spool.Job{
			ID:          uuid.New(),
			Destination: dest,
			Format:      f,
			Args:        []spool.Arg{{Kind: "int", Value: "3"}},
			CreatedAt:   base.Add(time.Duration(i) * time.Second),
		}
		if err := st.Enqueue(ctx, j); err != nil {
			t.Fatal(err)
		}
	}

	jobs, err := st.List(ctx, dest, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(jobs) != 1 || jobs[0].Format != "second" || jobs[0].Args[0].Value != "3" {
		t.Errorf("jobs = %+v", jobs)
	}
}

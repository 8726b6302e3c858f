// Package spool holds print jobs queued by printer destinations.
package spool

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrClosed = errors.New("spool: store closed")

// Arg is one rendered argument of a job.
type Arg struct {
	Kind  string `json:"kind"`
	Value string `json:"value"`
}

type Job struct {
	ID          uuid.UUID `json:"id"`
	Destination string    `json:"destination"`
	Format      string    `json:"format"`
	Args        []Arg     `json:"args"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Store is the queue a printer writes into.
type Store interface {
	Enqueue(ctx context.Context, j Job) error
	// List returns the newest jobs first; limit <= 0 means a default of 100.
	List(ctx context.Context, destination string, limit int) ([]Job, error)
	Close()
}

const defaultListLimit = 100

func normLimit(n int) int {
	if n <= 0 {
		return defaultListLimit
	}
	return n
}

// Package storage defines the document store the engine persists its single
// aggregate through. Load and Save move the whole document atomically; the
// engine never writes field-by-field.
package storage

import (
	"context"

	"github.com/stretchkit/progression/internal/domain"
)

// Store is the key/value document store contract. Implementations must make
// Save all-or-nothing: a failed save leaves the previous document intact.
// Load returns domain.ErrUserProgressNotFound for unknown users.
type Store interface {
	Load(ctx context.Context, userID string) (*domain.UserProgress, error)
	Save(ctx context.Context, doc *domain.UserProgress) error
	Delete(ctx context.Context, userID string) error
	Close()
}

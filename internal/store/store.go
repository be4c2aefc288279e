// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"

	"github.com/akiii/botforge/internal/domain"
)

// Repository defines the interface for persisting build history.
type Repository interface {
	// InsertBuild records one generation attempt.
	InsertBuild(ctx context.Context, rec *domain.BuildRecord) error

	// RecentBuilds returns the most recent build records, newest first.
	RecentBuilds(ctx context.Context, limit int) ([]*domain.BuildRecord, error)

	// CountBuildsByUser returns how many builds a user has recorded.
	CountBuildsByUser(ctx context.Context, userID string) (int64, error)

	// Ping verifies database connectivity.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}

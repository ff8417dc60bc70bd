package store

import (
	"context"

	"github.com/recovera/timeline-service/internal/model"
)

// Store exposes the durable keyed collections the services need: upsert put,
// get, getAll and delete by id, scoped per workspace. Implementations live
// under internal/store/<driver>/ (postgres, sqlite, diskv, memory).
//
// Get returns model.ErrNotFound (wrapped) for unknown ids. Put is an upsert.
// Driver failures are wrapped in model.ErrStorage.
type Store interface {
	Timelines() Timelines
	Library() Library
	Customers() Customers
	Segments() Segments
	Events() Events
}

type Timelines interface {
	Put(ctx context.Context, t *model.Timeline) error
	Get(ctx context.Context, workspaceID, timelineID string) (*model.Timeline, error)
	List(ctx context.Context, workspaceID string) ([]*model.Timeline, error)
	Delete(ctx context.Context, workspaceID, timelineID string) error
}

// Library holds the shared pool of reusable actions, scoped per workspace and
// independent of any one timeline.
type Library interface {
	Put(ctx context.Context, workspaceID string, a *model.Action) error
	Get(ctx context.Context, workspaceID, actionID string) (*model.Action, error)
	List(ctx context.Context, workspaceID string) ([]*model.Action, error)
	Delete(ctx context.Context, workspaceID, actionID string) error
}

type Customers interface {
	Put(ctx context.Context, c *model.Customer) error
	Get(ctx context.Context, workspaceID, customerID string) (*model.Customer, error)
	List(ctx context.Context, workspaceID string) ([]*model.Customer, error)
	Delete(ctx context.Context, workspaceID, customerID string) error
}

type Segments interface {
	Put(ctx context.Context, s *model.CustomerSegment) error
	Get(ctx context.Context, workspaceID, segmentID string) (*model.CustomerSegment, error)
	List(ctx context.Context, workspaceID string) ([]*model.CustomerSegment, error)
	Delete(ctx context.Context, workspaceID, segmentID string) error
}

type Events interface {
	Put(ctx context.Context, e *model.CustomerTimelineEvent) error
	// ListByCustomer returns the customer's events sorted by date ascending.
	ListByCustomer(ctx context.Context, workspaceID, customerID string) ([]*model.CustomerTimelineEvent, error)
}

// Pinger is implemented by backends that can verify connectivity for deep
// health checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"

	"github.com/danielhkuo/society-live/models"
)

// EventStore is the subset of db.Store the event and performance handlers use.
type EventStore interface {
	CreateEvent(ctx context.Context, e models.Event) error
	GetEvent(ctx context.Context, id string) (models.Event, error)
	ListEvents(ctx context.Context) ([]models.Event, error)
	CreatePerformance(ctx context.Context, p models.Performance) error
	GetPerformance(ctx context.Context, id string) (models.Performance, error)
	ListPerformances(ctx context.Context, eventID string) ([]models.Performance, error)
}

// Package queue defines message payloads exchanged over the message broker
// and the background consumer that records them.
package queue

import "time"

// Routing keys on the events exchange.
const (
	RoutingSeedCompleted   = "seed.completed"
	RoutingBuildingChanged = "building.changed"
)

// SeedCompletedEvent is published once startup seeding of a table has
// finished. Outcome is one of "inserted", "skipped" or "already_seeded".
type SeedCompletedEvent struct {
	Table       string    `json:"table"`
	Outcome     string    `json:"outcome"`
	Before      int       `json:"before"`
	After       int       `json:"after"`
	Inserted    int       `json:"inserted"`
	Instance    string    `json:"instance"`
	CompletedAt time.Time `json:"completed_at"`
}

// BuildingChangedEvent is published after an administrator creates,
// updates or deletes a building so that AR clients and caches can refresh.
type BuildingChangedEvent struct {
	BuildingID uint64    `json:"building_id"`
	Name       string    `json:"name"`
	Action     string    `json:"action"`
	ChangedBy  uint64    `json:"changed_by"`
	ChangedAt  time.Time `json:"changed_at"`
}

// Building change actions.
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

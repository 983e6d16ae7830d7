// Package audit records an append-only trail of order and profile changes.
package audit

import (
	"context"
	"time"
)

// Actions written by the services
const (
	ActionCreateOrder   = "create_order"
	ActionUpdateProfile = "update_profile"
	ActionCreateUser    = "create_user"
)

// Entry is one audit record
type Entry struct {
	Service   string         `bson:"service"`
	Action    string         `bson:"action"`
	EntityID  string         `bson:"entity_id"`
	UserID    int64          `bson:"user_id"`
	Data      map[string]any `bson:"data"`
	CreatedAt time.Time      `bson:"created_at"`
}

// Logger persists audit entries
type Logger interface {
	Record(ctx context.Context, entry Entry) error
	Close(ctx context.Context) error
}

// Nop discards every entry. Used when no audit store is configured.
type Nop struct{}

func (Nop) Record(context.Context, Entry) error { return nil }

func (Nop) Close(context.Context) error { return nil }

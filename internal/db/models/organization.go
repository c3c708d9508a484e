package models

import "time"

// Organization groups users for visibility scoping. Identity is immutable
// once created; tasks inherit their owner's organization transitively.
type Organization struct {
	ID        int64     `db:"id"`
	Name      string    `db:"name"`
	CreatedAt time.Time `db:"created_at"`
}

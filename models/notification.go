package models

import "time"

// Tier is the notification threshold class: how soon before availability
// an alert fires.
type Tier string

const (
	Tier24h Tier = "24h"
	Tier1h  Tier = "1h"
)

// Embed colors per tier.
const (
	Color24h = 0xFFA500
	Color1h  = 0xFF0000
)

// NotificationRecord is the dedup ledger row. The (Name, Available, Tier)
// triple is unique; a changed available value makes old rows inert.
type NotificationRecord struct {
	Name       string    `json:"name" db:"name"`
	Available  string    `json:"available" db:"available"`
	Tier       Tier      `json:"tier" db:"tier"`
	NotifiedAt time.Time `json:"notified_at" db:"notified_at"`
}

package models

import "time"

// AuditFields are the audit columns shared by every ledger table. The field
// layout matches domain.AuditFields so the mappers convert between them directly.
type AuditFields struct {
	CreatedAt     time.Time `db:"created_at"`
	CreatedBy     string    `db:"created_by"`
	LastUpdatedAt time.Time `db:"last_updated_at"`
	LastUpdatedBy string    `db:"last_updated_by"`
	Version       int64     `db:"version"`
}

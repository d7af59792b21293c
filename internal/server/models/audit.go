package models

import (
	"database/sql"
	"time"
)

// AuditRecord is the append-then-attach envelope written around every
// mutating operation: DataIn is serialized when the record is opened and
// DataOut is attached once the outcome is known. Records are never deleted.
type AuditRecord struct {
	ID        string
	DataIn    string
	DataOut   sql.NullString
	ActorID   sql.NullString
	Operation string
	UserAgent string
	CreatedAt time.Time
}

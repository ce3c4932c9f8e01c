package model

import "time"

// Audited actions. Every state-changing operation writes exactly one
// entry with one of these actions.
const (
	ActionSystemInit     = "System initialized"
	ActionUserLogin      = "User login"
	ActionUserLogout     = "User logout"
	ActionUserRegister   = "User registration"
	ActionShowAdded      = "Show added"
	ActionShowUpdated    = "Show updated"
	ActionShowDeleted    = "Show deleted"
	ActionShowTimeAdded  = "Show time added"
	ActionBookingCreated = "Booking created"
)

// LogEntry is one row of the append-only system log. UserID is nil for
// entries written by the system itself.
type LogEntry struct {
	ID        uint64    // system_logs.id
	Action    string    // system_logs.action
	Details   string    // system_logs.details
	UserID    *uint64   // system_logs.user_id (nullable)
	CreatedAt time.Time // system_logs.created_at
}

// LogEntryDetail is a log entry with the acting username resolved.
// Username is "System" when the entry has no user.
type LogEntryDetail struct {
	LogEntry
	Username string
}

// SystemActor is the display name for entries without a user.
const SystemActor = "System"

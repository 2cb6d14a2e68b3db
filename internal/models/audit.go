package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded by the gateway.
const (
	AuditActionLogin        = "LOGIN"
	AuditActionLogout       = "LOGOUT"
	AuditActionExpired      = "SESSION_EXPIRED"
	AuditActionUserCreate   = "USER_CREATE"
	AuditActionUserUpdate   = "USER_UPDATE"
	AuditActionUserApprove  = "USER_APPROVE"
	AuditActionUserReject   = "USER_REJECT"
	AuditActionClassUpdate  = "CLASS_UPDATE"
	AuditActionStudentPass  = "STUDENT_PASS"
	AuditActionRowDelete    = "ROW_DELETE"
	AuditActionLessonSave   = "LESSON_SAVE"
	AuditActionLessonDelete = "LESSON_DELETE"
	AuditActionTestSave     = "TEST_SAVE"
	AuditActionTestDelete   = "TEST_DELETE"
)

// AuditEntry is one journaled admin action.
type AuditEntry struct {
	ID         string          `db:"id" json:"id"`
	SessionID  string          `db:"session_id" json:"session_id"`
	Role       string          `db:"role" json:"role"`
	Actor      string          `db:"actor" json:"actor"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resource_id,omitempty"`
	Details    json.RawMessage `db:"details" json:"details,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ip_address"`
	UserAgent  string          `db:"user_agent" json:"user_agent"`
	CreatedAt  time.Time       `db:"created_at" json:"created_at"`
}

// AuditFilter narrows journal listings.
type AuditFilter struct {
	SessionID string
	Action    string
	Limit     int
}

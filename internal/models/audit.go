package models

import "time"

// AuditAction constants represent actions to be logged.
const (
	AuditActionRegister        = "REGISTER"
	AuditActionLogin           = "LOGIN"
	AuditActionProfileUpdate   = "PROFILE_UPDATE"
	AuditActionComplaintCreate = "COMPLAINT_CREATE"
	AuditActionComplaintDelete = "COMPLAINT_DELETE"
	AuditActionComplaintStatus = "COMPLAINT_STATUS"
	AuditActionComplaintAssign = "COMPLAINT_ASSIGN"
	AuditActionExport          = "EXPORT"
)

// Audit resources.
const (
	AuditResourceUser      = "user"
	AuditResourceComplaint = "complaint"
	AuditResourceExport    = "export"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}

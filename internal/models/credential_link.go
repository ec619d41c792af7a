package models

import (
	"time"

	"gorm.io/datatypes"
)

// CredentialLink stores the means to authenticate as the owner's second
// identity (a mentor's admin account or vice versa). The secret is sealed
// with AES-256-GCM before it reaches this record; only the owning account
// may read or write its link.
type CredentialLink struct {
	AccountID       string  `json:"account_id" gorm:"primaryKey;size:255"`
	LinkedEmail     string  `json:"linked_email" gorm:"not null;size:255"`
	LinkedSecretEnc []byte  `json:"-" gorm:"not null"`
	LinkedAccountID *string `json:"linked_account_id" gorm:"size:255"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CredentialLink) TableName() string {
	return "credential_links"
}

// AuditEvent is an append-only record of a supervisory action (assignment
// overwrite, delegation commit/release, role toggle, grant issue).
type AuditEvent struct {
	ID      uint           `json:"id" gorm:"primaryKey"`
	Type    string         `json:"type" gorm:"not null;size:100;index"`
	ActorID string         `json:"actor_id" gorm:"not null;size:255;index"`
	Payload datatypes.JSON `json:"payload" gorm:"type:jsonb"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

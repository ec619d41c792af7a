package models

import (
	"time"

	"gorm.io/gorm"
)

type AccountRole string

const (
	RoleAdmin       AccountRole = "admin"
	RoleMentor      AccountRole = "mentor"
	RoleMentee      AccountRole = "mentee"
	RoleAdminMentor AccountRole = "admin+mentor"
)

// IsAdminCapable reports whether the role carries standing admin privileges.
func (r AccountRole) IsAdminCapable() bool {
	return r == RoleAdmin || r == RoleAdminMentor
}

// IsMentorCapable reports whether the role may hold assignment or delegation slots.
func (r AccountRole) IsMentorCapable() bool {
	return r == RoleMentor || r == RoleAdminMentor
}

func (r AccountRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleMentor, RoleMentee, RoleAdminMentor:
		return true
	}
	return false
}

// Account is the canonical directory record for one person. The role is
// immutable after creation except for the mentor <-> admin+mentor toggle.
type Account struct {
	ID       string      `json:"id" gorm:"primaryKey;size:255"`
	FullName string      `json:"full_name" gorm:"not null;size:100"`
	Email    string      `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     AccountRole `json:"role" gorm:"not null;size:20;index"`

	// Profile info
	PhotoRef *string `json:"photo_ref" gorm:"size:500"`
	Phone    *string `json:"phone" gorm:"size:30"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	MenteeProfile  *MenteeProfile  `json:"mentee_profile,omitempty" gorm:"foreignKey:AccountID"`
	CredentialLink *CredentialLink `json:"-" gorm:"foreignKey:AccountID"`
}

func (Account) TableName() string {
	return "accounts"
}

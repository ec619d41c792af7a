package models

import (
	"time"
)

type DelegationSlot string

const (
	SlotGuide   DelegationSlot = "guide"
	SlotCoGuide DelegationSlot = "co-guide"
)

func (s DelegationSlot) Valid() bool {
	return s == SlotGuide || s == SlotCoGuide
}

// ProfileEditGrant is the time-boxed, single-use permission a supervisor
// issues so a mentee can edit otherwise-locked profile fields. A new grant
// replaces all four fields together.
type ProfileEditGrant struct {
	AllowedAt *time.Time `json:"allowed_at"`
	ExpiresAt *time.Time `json:"expires_at"`
	AllowedBy *string    `json:"allowed_by" gorm:"size:255"`
	Consumed  bool       `json:"consumed" gorm:"not null;default:false"`
}

// Active reports whether the grant currently permits an edit. Expiry and
// consumption are independent paths to locked.
func (g ProfileEditGrant) Active(now time.Time) bool {
	if g.Consumed || g.ExpiresAt == nil {
		return false
	}
	return now.Before(*g.ExpiresAt)
}

// MenteeProfile holds the mentee-scoped state: enrollment identity, cohort
// membership, the primary assignment, the two delegation slots and the
// profile-edit grant. Slots are independent of each other and of the
// primary mentor; the same mentor may hold any combination.
type MenteeProfile struct {
	AccountID    string  `json:"account_id" gorm:"primaryKey;size:255"`
	EnrollmentNo string  `json:"enrollment_no" gorm:"not null;size:50;index"`
	Year         string  `json:"year" gorm:"size:20"`
	ClassID      *uint   `json:"class_id" gorm:"index"`
	Semester     *string `json:"semester" gorm:"size:20"`

	PrimaryMentorID *string `json:"primary_mentor_id" gorm:"size:255;index"`
	GuideID         *string `json:"guide_id" gorm:"size:255;index"`
	CoGuideID       *string `json:"co_guide_id" gorm:"size:255;index"`

	EditGrant ProfileEditGrant `json:"edit_grant" gorm:"embedded;embeddedPrefix:edit_"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Account *Account     `json:"account,omitempty" gorm:"foreignKey:AccountID"`
	Class   *MentorClass `json:"class,omitempty" gorm:"foreignKey:ClassID"`
}

func (MenteeProfile) TableName() string {
	return "mentee_profiles"
}

// SlotHolder returns the account currently occupying the given slot.
func (p *MenteeProfile) SlotHolder(slot DelegationSlot) *string {
	if slot == SlotGuide {
		return p.GuideID
	}
	return p.CoGuideID
}

// HolderForRole resolves a recipient role to its current holder, or nil when
// the role is unoccupied.
func (p *MenteeProfile) HolderForRole(role RecipientRole) *string {
	switch role {
	case RecipientMentor:
		return p.PrimaryMentorID
	case RecipientGuide:
		return p.GuideID
	case RecipientCoGuide:
		return p.CoGuideID
	}
	return nil
}

// MentorClass is an optional grouping of mentees under a mentor, used for
// filtering and display only.
type MentorClass struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	MentorID string `json:"mentor_id" gorm:"not null;size:255;index"`
	Name     string `json:"name" gorm:"not null;size:100"`
	Year     string `json:"year" gorm:"size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Computed fields (not stored)
	MenteeCount int `json:"mentee_count" gorm:"-"`
}

func (MentorClass) TableName() string {
	return "mentor_classes"
}

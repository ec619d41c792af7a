package models

import (
	"time"

	"gorm.io/gorm"
)

type ReportStatus string

const (
	ReportPending  ReportStatus = "pending"
	ReportApproved ReportStatus = "approved"
	ReportRejected ReportStatus = "rejected"
)

// Closed reports whether the review decision has been made. Closed reports
// still accept feedback edits but never change status again.
func (s ReportStatus) Closed() bool {
	return s == ReportApproved || s == ReportRejected
}

type RecipientRole string

const (
	RecipientMentor  RecipientRole = "mentor"
	RecipientGuide   RecipientRole = "guide"
	RecipientCoGuide RecipientRole = "co-guide"
)

func (r RecipientRole) Valid() bool {
	switch r {
	case RecipientMentor, RecipientGuide, RecipientCoGuide:
		return true
	}
	return false
}

// Report is a mentee-submitted artifact routed to a fixed recipient set.
// Recipients are computed once from the assignment/delegation state at
// submission and never recomputed afterwards.
type Report struct {
	ID          uint    `json:"id" gorm:"primaryKey"`
	AuthorID    string  `json:"author_id" gorm:"not null;size:255;index"`
	Title       string  `json:"title" gorm:"not null;size:200"`
	Description *string `json:"description" gorm:"type:text"`
	BlobRef     string  `json:"blob_ref" gorm:"not null;size:500"`

	Status   ReportStatus `json:"status" gorm:"not null;default:pending;index"`
	Feedback *string      `json:"feedback" gorm:"type:text"`
	Viewed   bool         `json:"viewed" gorm:"not null;default:false"`

	SubmittedAt time.Time      `json:"submitted_at" gorm:"not null;index"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Author     *Account          `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	Recipients []ReportRecipient `json:"recipients" gorm:"foreignKey:ReportID"`
}

func (Report) TableName() string {
	return "reports"
}

// HasRecipient reports whether the account is in the frozen recipient set.
func (r *Report) HasRecipient(accountID string) bool {
	for _, rec := range r.Recipients {
		if rec.AccountID == accountID {
			return true
		}
	}
	return false
}

// ReportRecipient is one entry of the recipients snapshot: the supervisor
// and the role they held at submission time.
type ReportRecipient struct {
	ReportID  uint          `json:"report_id" gorm:"primaryKey"`
	AccountID string        `json:"account_id" gorm:"primaryKey;size:255;index"`
	Role      RecipientRole `json:"role" gorm:"not null;size:20"`
}

func (ReportRecipient) TableName() string {
	return "report_recipients"
}

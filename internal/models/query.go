package models

import (
	"time"

	"gorm.io/gorm"
)

type QueryStatus string

const (
	QueryPending  QueryStatus = "pending"
	QueryAnswered QueryStatus = "answered"
)

// Query is a question from a mentee to their primary mentor. The mentor is
// frozen at ask time; answering moves pending -> answered exactly once, and
// later answers only replace the text.
type Query struct {
	ID       uint   `json:"id" gorm:"primaryKey"`
	MenteeID string `json:"mentee_id" gorm:"not null;size:255;index"`
	MentorID string `json:"mentor_id" gorm:"not null;size:255;index"`

	Subject  string  `json:"subject" gorm:"not null;size:200"`
	Question string  `json:"question" gorm:"not null;type:text"`
	Answer   *string `json:"answer" gorm:"type:text"`

	Status     QueryStatus `json:"status" gorm:"not null;default:pending;index"`
	AskedAt    time.Time   `json:"asked_at" gorm:"not null;index"`
	AnsweredAt *time.Time  `json:"answered_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Mentee *Account `json:"mentee,omitempty" gorm:"foreignKey:MenteeID"`
	Mentor *Account `json:"mentor,omitempty" gorm:"foreignKey:MentorID"`
}

func (Query) TableName() string {
	return "queries"
}

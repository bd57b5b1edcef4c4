package model

import "time"

// DateTimeLayout is the wire format for task timestamps.
const DateTimeLayout = "2006-01-02 15:04:05"

// Task is a unit of work owned by a user. Status, priority and category are
// opaque client-set strings; no transition rules are modeled.
type Task struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	UserID      uint       `json:"user_id" gorm:"index;not null"`
	Title       string     `json:"title" gorm:"size:100;not null"`
	Summary     *string    `json:"summary" gorm:"type:text"`
	CreatedDate time.Time  `json:"created_date" gorm:"not null"`
	DueDate     *time.Time `json:"due_date"`
	Priority    *string    `json:"priority" gorm:"size:100"`
	Status      string     `json:"status" gorm:"size:100;not null"`
	Category    string     `json:"category" gorm:"size:100;not null"`
}

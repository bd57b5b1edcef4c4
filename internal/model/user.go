package model

import "time"

// User represents an account that owns tasks. Username and email are
// globally unique, enforced by the storage layer.
type User struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	Username        string    `json:"username" gorm:"uniqueIndex;size:30;not null"`
	Email           string    `json:"email" gorm:"uniqueIndex;size:100;not null"`
	PasswordHash    string    `json:"-" gorm:"column:password;size:100;not null"` // Never expose in JSON
	FirstName       *string   `json:"first_name" gorm:"size:30"`
	LastName        *string   `json:"last_name" gorm:"size:30"`
	ActiveTaskCount *int      `json:"active_task_count"`
	OnHoldTaskCount *int      `json:"on_hold_task_count"`
	TotalTaskCount  *int      `json:"total_task_count"`
	Role            *string   `json:"role" gorm:"size:30"`
	CreatedDate     time.Time `json:"created_date" gorm:"not null"`
}

// FilePath: internal/models/models.request_log.go
package models

import "time"

// Request log status values.
const (
	RequestStatusPending  = "pending"
	RequestStatusApproved = "approved"
	RequestStatusRejected = "rejected"
)

// RequestLog is a request submitted to the admin: an owner asking for a
// change (new farm, new account) or a guest report from the public form.
// UserID 0 marks a guest submission.
type RequestLog struct {
	RequestID      int64     `json:"request_id" db:"request_id"`
	UserID         int64     `json:"user_id" db:"user_id"`
	SenderName     string    `json:"sender_name" db:"sender_name"`
	PhoneNumber    string    `json:"phone_number" db:"phone_number"`
	RequestType    string    `json:"request_type" db:"request_type"`
	RequestContent string    `json:"request_content" db:"request_content"`
	Status         string    `json:"status" db:"status"`
	SentTime       time.Time `json:"sent_time" db:"sent_time"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

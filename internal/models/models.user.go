// FilePath: internal/models/models.user.go
package models

import "time"

// Role identifiers. Fixed seed values shared with the frontend.
const (
	RoleAdmin    int64 = 1
	RoleOwner    int64 = 2
	RolePeternak int64 = 3
)

// RoleToken maps a role id to the lowercase token carried in auth
// claims and struccy readxs/writexs tags.
func RoleToken(roleID int64) string {
	switch roleID {
	case RoleAdmin:
		return "admin"
	case RoleOwner:
		return "owner"
	case RolePeternak:
		return "peternak"
	default:
		return "guest"
	}
}

// RoleName maps a role id to its display name.
func RoleName(roleID int64) string {
	switch roleID {
	case RoleAdmin:
		return "Admin"
	case RoleOwner:
		return "Owner"
	case RolePeternak:
		return "Peternak"
	default:
		return "unknown"
	}
}

type User struct {
	ID           int64      `json:"user_id" db:"user_id"`
	RoleID       int64      `json:"role_id" db:"role_id"`
	Username     string     `json:"username" db:"username"`
	Email        string     `json:"email" db:"email"`
	PasswordHash string     `json:"-" db:"password"`
	Name         string     `json:"name" db:"name"`
	PhoneNumber  string     `json:"phone_number" db:"phone_number" readxs:"admin,owner,self" writexs:"admin,self"`
	ProfilePic   string     `json:"profile_pic" db:"profile_pic"`
	Status       string     `json:"status" db:"status"`
	DateJoined   time.Time  `json:"date_joined" db:"date_joined"`
	LastLogin    *time.Time `json:"last_login" db:"last_login"`
}

// TelegramLink connects a user account to a Telegram chat for alert
// notifications. One chat per user and one user per chat; relinking
// replaces both sides.
type TelegramLink struct {
	UserID    int64     `json:"user_id" db:"user_id"`
	ChatID    int64     `json:"telegram_chat_id" db:"telegram_chat_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

package auth

import "time"

// StaffAccount is a panel login, not a roster entry. Roster employees live in
// the employee package and have no credentials.
type StaffAccount struct {
	ID        uint   `gorm:"primaryKey"`
	Username  string `gorm:"type:varchar(100);uniqueIndex;not null"`
	Password  string `gorm:"type:varchar(200);not null"` // bcrypt hash
	Role      string `gorm:"type:varchar(20);not null;default:'invitado'"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

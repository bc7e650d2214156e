package models

import (
	"time"
)

const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

type User struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `gorm:"type:varchar(50);uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"type:varchar(255);not null" json:"-"` // Don't expose password in JSON
	Role         string    `gorm:"type:varchar(20);not null;default:'student'" json:"role"` // student / admin
	Department   *string   `gorm:"type:varchar(50)" json:"department"`
	Section      *string   `gorm:"type:varchar(20)" json:"section"`
	Reports      []Report  `gorm:"foreignKey:UserID" json:"-"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

package model

import "time"

// AdminUser is an account allowed into the administrative surface.
type AdminUser struct {
	ID           uint       `gorm:"primarykey" json:"id"`
	Username     string     `gorm:"type:varchar(150);uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"type:varchar(254)" json:"email"`
	PasswordHash string     `gorm:"not null" json:"-"`
	IsSuperuser  bool       `gorm:"not null;default:false" json:"is_superuser"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

func (AdminUser) TableName() string {
	return "admin_users"
}

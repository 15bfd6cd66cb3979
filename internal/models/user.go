package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID           uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
	FirstName    string         `gorm:"size:100;not null" json:"firstName"`
	LastName     string         `gorm:"size:100;not null" json:"lastName"`
	Email        string         `gorm:"uniqueIndex;not null" json:"email"`
	Nationality  string         `gorm:"size:100" json:"nationality"`
	Phone        string         `gorm:"size:30" json:"phone"`
	PasswordHash string         `gorm:"not null" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

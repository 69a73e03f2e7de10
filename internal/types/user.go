package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	TokenIdentifier string    `gorm:"uniqueIndex;not null;column:token_identifier" json:"token_identifier"`
	Name            string    `gorm:"column:name" json:"name,omitempty"`
	Email           string    `gorm:"column:email" json:"email,omitempty"`
	Image           string    `gorm:"column:image" json:"image,omitempty"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string {
	return "user"
}

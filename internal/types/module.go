package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Module struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Description string         `gorm:"column:description" json:"description"`
	Content     datatypes.JSON `gorm:"column:content;type:jsonb" json:"content,omitempty"`
	RecordingID *uuid.UUID     `gorm:"type:uuid;index" json:"recording_id,omitempty"`
	Recording   *Recording     `gorm:"constraint:OnDelete:SET NULL;foreignKey:RecordingID;references:ID" json:"recording,omitempty"`
	Progress    int            `gorm:"column:progress;not null;default:0" json:"progress"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Module) TableName() string {
	return "module"
}

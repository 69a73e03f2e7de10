package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Recording struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID        uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User          *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title         string         `gorm:"column:title;not null" json:"title"`
	AudioURL      string         `gorm:"column:audio_url;not null" json:"audio_url"`
	Transcription string         `gorm:"column:transcription" json:"transcription,omitempty"`
	Notes         string         `gorm:"column:notes" json:"notes,omitempty"`
	QuizData      datatypes.JSON `gorm:"column:quiz_data;type:jsonb" json:"quiz_data,omitempty"`
	ModuleID      *string        `gorm:"column:module_id" json:"module_id,omitempty"`
	CreatedAt     time.Time      `gorm:"not null" json:"created_at"`
}

func (Recording) TableName() string {
	return "recording"
}

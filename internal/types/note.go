package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Note struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Content     string         `gorm:"column:content" json:"content"`
	Tags        datatypes.JSON `gorm:"column:tags;type:jsonb" json:"tags"`
	ModuleID    *uuid.UUID     `gorm:"type:uuid;index" json:"module_id,omitempty"`
	RecordingID *uuid.UUID     `gorm:"type:uuid;index" json:"recording_id,omitempty"`
	// Named "date" for parity with the client schema; rewritten on every edit.
	Date time.Time `gorm:"column:date;not null" json:"date"`
}

func (Note) TableName() string {
	return "note"
}

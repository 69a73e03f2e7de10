package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	StudyRunKindRecording = "recording"
	StudyRunKindTopic     = "topic"

	StudyRunStatusQueued    = "queued"
	StudyRunStatusRunning   = "running"
	StudyRunStatusSucceeded = "succeeded"
	StudyRunStatusFailed    = "failed"

	StudyRunStageUploading    = "uploading"
	StudyRunStageTranscribing = "transcribing"
	StudyRunStageGenerating   = "generating"
	StudyRunStageSaving       = "saving"
	StudyRunStageDone         = "done"
)

// StudyRun records one recording-to-module or topic-to-module pipeline
// execution, stage by stage.
type StudyRun struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	Kind        string         `gorm:"column:kind;not null" json:"kind"`
	Status      string         `gorm:"column:status;not null" json:"status"`
	Stage       string         `gorm:"column:stage" json:"stage"`
	Progress    int            `gorm:"column:progress;not null;default:0" json:"progress"`
	Error       string         `gorm:"column:error" json:"error,omitempty"`
	RecordingID *uuid.UUID     `gorm:"type:uuid" json:"recording_id,omitempty"`
	ModuleID    *uuid.UUID     `gorm:"type:uuid" json:"module_id,omitempty"`
	NoteID      *uuid.UUID     `gorm:"type:uuid" json:"note_id,omitempty"`
	Metadata    datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (StudyRun) TableName() string {
	return "study_run"
}

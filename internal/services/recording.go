package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/repos"
	"github.com/airpen/airpen-backend/internal/types"
)

type StoreRecordingInput struct {
	Title         string
	AudioURL      string
	Transcription string
	Notes         string
	QuizData      datatypes.JSON
	ModuleID      *string
}

type RecordingService interface {
	Store(ctx context.Context, input StoreRecordingInput) (*types.Recording, error)
	List(ctx context.Context) ([]*types.Recording, error)
	// GetByID requires a caller identity but does not check that the caller
	// owns the row. Any authenticated user who knows an id can read it.
	GetByID(ctx context.Context, recordingID uuid.UUID) (*types.Recording, error)
	LinkModule(ctx context.Context, recordingID uuid.UUID, moduleID string) error
}

type recordingService struct {
	db            *gorm.DB
	log           *logger.Logger
	recordingRepo repos.RecordingRepo
}

func NewRecordingService(db *gorm.DB, log *logger.Logger, recordingRepo repos.RecordingRepo) RecordingService {
	return &recordingService{
		db:            db,
		log:           log.With("service", "RecordingService"),
		recordingRepo: recordingRepo,
	}
}

func (rs *recordingService) Store(ctx context.Context, input StoreRecordingInput) (*types.Recording, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if input.AudioURL == "" {
		return nil, fmt.Errorf("audio url is required")
	}

	recording := &types.Recording{
		ID:            uuid.New(),
		UserID:        userID,
		Title:         input.Title,
		AudioURL:      input.AudioURL,
		Transcription: input.Transcription,
		Notes:         input.Notes,
		QuizData:      input.QuizData,
		ModuleID:      input.ModuleID,
		CreatedAt:     time.Now().UTC(),
	}
	created, err := rs.recordingRepo.Create(ctx, nil, []*types.Recording{recording})
	if err != nil {
		return nil, fmt.Errorf("error creating recording: %w", err)
	}
	return created[0], nil
}

func (rs *recordingService) List(ctx context.Context) ([]*types.Recording, error) {
	userID, ok := optionalUser(ctx)
	if !ok {
		return []*types.Recording{}, nil
	}
	listed, err := rs.recordingRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing recordings: %w", err)
	}
	if listed == nil {
		listed = []*types.Recording{}
	}
	return listed, nil
}

func (rs *recordingService) GetByID(ctx context.Context, recordingID uuid.UUID) (*types.Recording, error) {
	if err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	found, err := rs.recordingRepo.GetByIDs(ctx, nil, []uuid.UUID{recordingID})
	if err != nil {
		return nil, fmt.Errorf("error fetching recording: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("recording %w", ErrNotFound)
	}
	return found[0], nil
}

func (rs *recordingService) LinkModule(ctx context.Context, recordingID uuid.UUID, moduleID string) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}
	return rs.recordingRepo.UpdateFields(ctx, nil, recordingID, map[string]any{
		"module_id": moduleID,
	})
}

package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/types"
)

type RecordingRepo interface {
	Create(ctx context.Context, tx *gorm.DB, recordings []*types.Recording) ([]*types.Recording, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, recordingIDs []uuid.UUID) ([]*types.Recording, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Recording, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, recordingID uuid.UUID, fields map[string]any) error
}

type recordingRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRecordingRepo(db *gorm.DB, baseLog *logger.Logger) RecordingRepo {
	return &recordingRepo{db: db, log: baseLog.With("repo", "RecordingRepo")}
}

func (rr *recordingRepo) Create(ctx context.Context, tx *gorm.DB, recordings []*types.Recording) ([]*types.Recording, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if len(recordings) == 0 {
		return []*types.Recording{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&recordings).Error; err != nil {
		return nil, err
	}
	return recordings, nil
}

func (rr *recordingRepo) GetByIDs(ctx context.Context, tx *gorm.DB, recordingIDs []uuid.UUID) ([]*types.Recording, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Recording
	if len(recordingIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", recordingIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recordingRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Recording, error) {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	var results []*types.Recording
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (rr *recordingRepo) UpdateFields(ctx context.Context, tx *gorm.DB, recordingID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = rr.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.Recording{}).
		Where("id = ?", recordingID).
		Updates(fields).Error
}

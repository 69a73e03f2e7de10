package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/types"
)

type StudyRunRepo interface {
	Create(ctx context.Context, tx *gorm.DB, runs []*types.StudyRun) ([]*types.StudyRun, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, runIDs []uuid.UUID) ([]*types.StudyRun, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.StudyRun, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, runID uuid.UUID, fields map[string]any) error
}

type studyRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewStudyRunRepo(db *gorm.DB, baseLog *logger.Logger) StudyRunRepo {
	return &studyRunRepo{db: db, log: baseLog.With("repo", "StudyRunRepo")}
}

func (sr *studyRunRepo) Create(ctx context.Context, tx *gorm.DB, runs []*types.StudyRun) ([]*types.StudyRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(runs) == 0 {
		return []*types.StudyRun{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (sr *studyRunRepo) GetByIDs(ctx context.Context, tx *gorm.DB, runIDs []uuid.UUID) ([]*types.StudyRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.StudyRun
	if len(runIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", runIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *studyRunRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.StudyRun, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	var results []*types.StudyRun
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *studyRunRepo) UpdateFields(ctx context.Context, tx *gorm.DB, runID uuid.UUID, fields map[string]any) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}
	if len(fields) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Model(&types.StudyRun{}).
		Where("id = ?", runID).
		Updates(fields).Error
}

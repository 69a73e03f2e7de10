package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/repos"
	"github.com/airpen/airpen-backend/internal/types"
)

type CreateModuleInput struct {
	Title       string
	Description string
	Content     *types.ModuleContent
	RecordingID *uuid.UUID
	Progress    int
}

type ModuleService interface {
	Create(ctx context.Context, input CreateModuleInput) (*types.Module, error)
	List(ctx context.Context) ([]*types.Module, error)
	// GetByID requires a caller identity but does not check ownership, same
	// as recordings.
	GetByID(ctx context.Context, moduleID uuid.UUID) (*types.Module, error)
	// UpdateProgress patches progress only; content and metadata are never
	// touched by this path.
	UpdateProgress(ctx context.Context, moduleID uuid.UUID, progress int) (*types.Module, error)
}

type moduleService struct {
	db         *gorm.DB
	log        *logger.Logger
	moduleRepo repos.ModuleRepo
}

func NewModuleService(db *gorm.DB, log *logger.Logger, moduleRepo repos.ModuleRepo) ModuleService {
	return &moduleService{
		db:         db,
		log:        log.With("service", "ModuleService"),
		moduleRepo: moduleRepo,
	}
}

func (ms *moduleService) Create(ctx context.Context, input CreateModuleInput) (*types.Module, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	var contentJSON []byte
	if input.Content != nil {
		raw, err := json.Marshal(input.Content)
		if err != nil {
			return nil, fmt.Errorf("error encoding module content: %w", err)
		}
		contentJSON = raw
	}

	now := time.Now().UTC()
	module := &types.Module{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		Content:     contentJSON,
		RecordingID: input.RecordingID,
		Progress:    input.Progress,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	created, err := ms.moduleRepo.Create(ctx, nil, []*types.Module{module})
	if err != nil {
		return nil, fmt.Errorf("error creating module: %w", err)
	}
	return created[0], nil
}

func (ms *moduleService) List(ctx context.Context) ([]*types.Module, error) {
	userID, ok := optionalUser(ctx)
	if !ok {
		return []*types.Module{}, nil
	}
	listed, err := ms.moduleRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing modules: %w", err)
	}
	if listed == nil {
		listed = []*types.Module{}
	}
	return listed, nil
}

func (ms *moduleService) GetByID(ctx context.Context, moduleID uuid.UUID) (*types.Module, error) {
	if err := requireIdentity(ctx); err != nil {
		return nil, err
	}
	found, err := ms.moduleRepo.GetByIDs(ctx, nil, []uuid.UUID{moduleID})
	if err != nil {
		return nil, fmt.Errorf("error fetching module: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("module %w", ErrNotFound)
	}
	return found[0], nil
}

func (ms *moduleService) UpdateProgress(ctx context.Context, moduleID uuid.UUID, progress int) (*types.Module, error) {
	if err := requireIdentity(ctx); err != nil {
		return nil, err
	}

	module, err := ms.GetByID(ctx, moduleID)
	if err != nil {
		return nil, err
	}
	if err := ms.moduleRepo.UpdateFields(ctx, nil, module.ID, map[string]any{
		"progress":   progress,
		"updated_at": time.Now().UTC(),
	}); err != nil {
		return nil, fmt.Errorf("error updating module progress: %w", err)
	}
	return ms.GetByID(ctx, moduleID)
}

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

type CreateNoteInput struct {
	Title       string
	Content     string
	Tags        []string
	ModuleID    *uuid.UUID
	RecordingID *uuid.UUID
}

// UpdateNoteInput patches only the fields that are non-nil.
type UpdateNoteInput struct {
	Title   *string
	Content *string
	Tags    []string
}

type NoteService interface {
	Create(ctx context.Context, input CreateNoteInput) (*types.Note, error)
	List(ctx context.Context) ([]*types.Note, error)
	Update(ctx context.Context, noteID uuid.UUID, input UpdateNoteInput) (*types.Note, error)
	Delete(ctx context.Context, noteID uuid.UUID) error
}

type noteService struct {
	db       *gorm.DB
	log      *logger.Logger
	noteRepo repos.NoteRepo
}

func NewNoteService(db *gorm.DB, log *logger.Logger, noteRepo repos.NoteRepo) NoteService {
	return &noteService{
		db:       db,
		log:      log.With("service", "NoteService"),
		noteRepo: noteRepo,
	}
}

func encodeTags(tags []string) ([]byte, error) {
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(tags)
}

func (ns *noteService) Create(ctx context.Context, input CreateNoteInput) (*types.Note, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if input.Title == "" {
		return nil, fmt.Errorf("title is required")
	}

	tagsJSON, err := encodeTags(input.Tags)
	if err != nil {
		return nil, fmt.Errorf("error encoding tags: %w", err)
	}

	note := &types.Note{
		ID:          uuid.New(),
		UserID:      userID,
		Title:       input.Title,
		Content:     input.Content,
		Tags:        tagsJSON,
		ModuleID:    input.ModuleID,
		RecordingID: input.RecordingID,
		Date:        time.Now().UTC(),
	}
	created, err := ns.noteRepo.Create(ctx, nil, []*types.Note{note})
	if err != nil {
		return nil, fmt.Errorf("error creating note: %w", err)
	}
	return created[0], nil
}

func (ns *noteService) List(ctx context.Context) ([]*types.Note, error) {
	userID, ok := optionalUser(ctx)
	if !ok {
		return []*types.Note{}, nil
	}
	listed, err := ns.noteRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing notes: %w", err)
	}
	if listed == nil {
		listed = []*types.Note{}
	}
	return listed, nil
}

func (ns *noteService) Update(ctx context.Context, noteID uuid.UUID, input UpdateNoteInput) (*types.Note, error) {
	if _, err := requireUser(ctx); err != nil {
		return nil, err
	}

	found, err := ns.noteRepo.GetByIDs(ctx, nil, []uuid.UUID{noteID})
	if err != nil {
		return nil, fmt.Errorf("error fetching note: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("note %w", ErrNotFound)
	}

	fields := map[string]any{"date": time.Now().UTC()}
	if input.Title != nil {
		fields["title"] = *input.Title
	}
	if input.Content != nil {
		fields["content"] = *input.Content
	}
	if input.Tags != nil {
		tagsJSON, err := encodeTags(input.Tags)
		if err != nil {
			return nil, fmt.Errorf("error encoding tags: %w", err)
		}
		fields["tags"] = tagsJSON
	}
	if err := ns.noteRepo.UpdateFields(ctx, nil, noteID, fields); err != nil {
		return nil, fmt.Errorf("error updating note: %w", err)
	}

	reloaded, err := ns.noteRepo.GetByIDs(ctx, nil, []uuid.UUID{noteID})
	if err != nil || len(reloaded) == 0 {
		return nil, fmt.Errorf("error reloading note: %w", err)
	}
	return reloaded[0], nil
}

func (ns *noteService) Delete(ctx context.Context, noteID uuid.UUID) error {
	if _, err := requireUser(ctx); err != nil {
		return err
	}

	found, err := ns.noteRepo.GetByIDs(ctx, nil, []uuid.UUID{noteID})
	if err != nil {
		return fmt.Errorf("error fetching note: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return fmt.Errorf("note %w", ErrNotFound)
	}
	return ns.noteRepo.FullDelete(ctx, nil, []uuid.UUID{noteID})
}

package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/airpen/airpen-backend/internal/types"
)

func SeedUser(t *testing.T, gdb *gorm.DB, tokenIdentifier string) *types.User {
	t.Helper()

	now := time.Now().UTC()
	user := &types.User{
		ID:              uuid.New(),
		TokenIdentifier: tokenIdentifier,
		Name:            "Test User",
		Email:           "test@example.com",
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := gdb.Create(user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func SeedRecording(t *testing.T, gdb *gorm.DB, userID uuid.UUID, title string) *types.Recording {
	t.Helper()

	recording := &types.Recording{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		AudioURL:  "https://storage.example.com/recordings/" + title + ".wav",
		CreatedAt: time.Now().UTC(),
	}
	if err := gdb.Create(recording).Error; err != nil {
		t.Fatalf("seed recording: %v", err)
	}
	return recording
}

func SeedModule(t *testing.T, gdb *gorm.DB, userID uuid.UUID, title string) *types.Module {
	t.Helper()

	now := time.Now().UTC()
	module := &types.Module{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Content:   []byte(`{"overview":"","lessons":[],"quizzes":[],"resources":[]}`),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := gdb.Create(module).Error; err != nil {
		t.Fatalf("seed module: %v", err)
	}
	return module
}

func SeedNote(t *testing.T, gdb *gorm.DB, userID uuid.UUID, title string) *types.Note {
	t.Helper()

	note := &types.Note{
		ID:     uuid.New(),
		UserID: userID,
		Title:  title,
		Tags:   []byte(`[]`),
		Date:   time.Now().UTC(),
	}
	if err := gdb.Create(note).Error; err != nil {
		t.Fatalf("seed note: %v", err)
	}
	return note
}

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/repos"
	"github.com/airpen/airpen-backend/internal/requestdata"
	"github.com/airpen/airpen-backend/internal/types"
)

type StoreUserInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Image string `json:"image"`
}

type UserService interface {
	// Store upserts the caller's user row keyed by token identifier. Called
	// on every sign-in; exactly one row per identity.
	Store(ctx context.Context, input StoreUserInput) (*types.User, error)
	GetMe(ctx context.Context) (*types.User, error)
}

type userService struct {
	db       *gorm.DB
	log      *logger.Logger
	userRepo repos.UserRepo
}

func NewUserService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo) UserService {
	return &userService{
		db:       db,
		log:      log.With("service", "UserService"),
		userRepo: userRepo,
	}
}

func (us *userService) Store(ctx context.Context, input StoreUserInput) (*types.User, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenIdentifier == "" {
		return nil, ErrNotAuthenticated
	}

	var stored *types.User
	if err := us.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, err := us.userRepo.GetByTokenIdentifiers(ctx, tx, []string{rd.TokenIdentifier})
		if err != nil {
			return fmt.Errorf("error fetching user by token identifier: %w", err)
		}

		now := time.Now().UTC()
		if len(existing) > 0 && existing[0] != nil {
			user := existing[0]
			fields := map[string]any{"updated_at": now}
			if input.Name != "" && input.Name != user.Name {
				fields["name"] = input.Name
			}
			if input.Email != "" && input.Email != user.Email {
				fields["email"] = input.Email
			}
			if input.Image != "" && input.Image != user.Image {
				fields["image"] = input.Image
			}
			if err := us.userRepo.UpdateFields(ctx, tx, user.ID, fields); err != nil {
				return fmt.Errorf("error updating user: %w", err)
			}
			reloaded, err := us.userRepo.GetByIDs(ctx, tx, []uuid.UUID{user.ID})
			if err != nil || len(reloaded) == 0 {
				return fmt.Errorf("error reloading user: %w", err)
			}
			stored = reloaded[0]
			return nil
		}

		user := &types.User{
			ID:              uuid.New(),
			TokenIdentifier: rd.TokenIdentifier,
			Name:            input.Name,
			Email:           input.Email,
			Image:           input.Image,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		created, err := us.userRepo.Create(ctx, tx, []*types.User{user})
		if err != nil {
			return fmt.Errorf("error creating user: %w", err)
		}
		stored = created[0]
		return nil
	}); err != nil {
		us.log.Warn("Store user transaction failed", "error", err)
		return nil, err
	}
	return stored, nil
}

func (us *userService) GetMe(ctx context.Context) (*types.User, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	found, err := us.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
	if err != nil {
		return nil, fmt.Errorf("error fetching user: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, ErrUserNotFound
	}
	return found[0], nil
}

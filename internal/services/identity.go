package services

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/airpen/airpen-backend/internal/requestdata"
)

var (
	// ErrNotAuthenticated means no caller identity reached the service.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrUserNotFound means the identity token is valid but no user row has
	// been stored for it yet.
	ErrUserNotFound = errors.New("user not found")
	// ErrNotFound is the generic missing-row error for get-by-id paths.
	ErrNotFound = errors.New("not found")
)

// requireUser is the guard every mutating operation goes through: the caller
// must carry both a token identity and a stored user row.
func requireUser(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenIdentifier == "" {
		return uuid.Nil, ErrNotAuthenticated
	}
	if rd.UserID == uuid.Nil {
		return uuid.Nil, ErrUserNotFound
	}
	return rd.UserID, nil
}

// optionalUser is the read-path guard: list queries return empty results for
// callers that cannot be resolved instead of erroring.
func optionalUser(ctx context.Context) (uuid.UUID, bool) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenIdentifier == "" || rd.UserID == uuid.Nil {
		return uuid.Nil, false
	}
	return rd.UserID, true
}

// requireIdentity only checks that a token identity is present. Get-by-id
// reads use it; they do not resolve or check the user row.
func requireIdentity(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.TokenIdentifier == "" {
		return ErrNotAuthenticated
	}
	return nil
}

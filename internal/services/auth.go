package services

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/airpen/airpen-backend/internal/logger"
	"github.com/airpen/airpen-backend/internal/repos"
	"github.com/airpen/airpen-backend/internal/requestdata"
)

// AuthService turns a bearer token into request-scoped caller identity. The
// identity provider signs tokens whose subject is the stable token
// identifier; a user row may or may not exist for it yet.
type AuthService interface {
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type authService struct {
	db           *gorm.DB
	log          *logger.Logger
	userRepo     repos.UserRepo
	jwtSecretKey string
}

func NewAuthService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, jwtSecretKey string) AuthService {
	return &authService{
		db:           db,
		log:          log.With("service", "AuthService"),
		userRepo:     userRepo,
		jwtSecretKey: jwtSecretKey,
	}
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	if tokenString == "" {
		return ctx, nil
	}
	parsedToken, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(as.jwtSecretKey), nil
	})
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsedToken.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsedToken.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}
	if claims.Subject == "" {
		return ctx, fmt.Errorf("token has no subject")
	}

	rd := &requestdata.RequestData{TokenIdentifier: claims.Subject}

	users, err := as.userRepo.GetByTokenIdentifiers(ctx, nil, []string{claims.Subject})
	if err != nil {
		return ctx, fmt.Errorf("error resolving user for token: %w", err)
	}
	if len(users) > 0 && users[0] != nil {
		rd.UserID = users[0].ID
	} else {
		rd.UserID = uuid.Nil
	}

	return requestdata.WithRequestData(ctx, rd), nil
}

// Package services contains the authority's business logic: operator
// authentication and the idempotent merge of uploaded pair batches.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"assettrack/internal/common"
	"assettrack/internal/server/auth"
	"assettrack/internal/server/config"
	"assettrack/internal/server/models"
	"assettrack/internal/server/repositories/repomanager"
)

// Session is a minted login session as returned to the client.
type Session struct {
	Token     string
	Username  string
	ExpiresIn int64
}

// UserService handles operator registration and login.
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

// Register creates a new operator account with a bcrypt password hash.
func (s *UserService) Register(ctx context.Context, username, password string) (*models.User, error) {
	if username == "" || password == "" {
		return nil, common.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %v", err)
	}

	user := &models.User{Username: username, PasswordHash: string(hash)}
	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("error creating user: %v", err)
	}
	return u, nil
}

// Login verifies credentials and mints a session token. Unknown users and
// wrong passwords are both reported as ErrAuthRequired so login does not
// leak account existence.
func (s *UserService) Login(ctx context.Context, username, password string) (*Session, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAuthRequired
		}
		return nil, common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, common.ErrAuthRequired
	}

	token, err := auth.GenerateToken(user.ID, user.Username, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return nil, common.ErrInternal
	}

	return &Session{
		Token:     token,
		Username:  user.Username,
		ExpiresIn: int64(s.tokenValidityDuration.Seconds()),
	}, nil
}

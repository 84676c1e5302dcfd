package services

import (
	"context"
	"errors"
	"time"

	"assettrack/internal/client/api"
	"assettrack/internal/client/models"
	"assettrack/internal/client/repositories/authtokens"
	"assettrack/internal/client/repositories/batches"
	"assettrack/internal/client/repositories/pairs"
	"assettrack/internal/common"
	"assettrack/internal/logging"
)

// AuthService owns the single local session: login, logout, restoring a
// persisted token at startup, and clearing user-scoped state when the
// authority rejects the session.
//
// The asset-tag cache deliberately survives every clearing path: it holds
// no user data and rebuilding it from a zero watermark is the expensive
// part of a fresh sync.
type AuthService struct {
	api     api.Client
	tokens  authtokens.Repository
	pairs   pairs.Repository
	batches batches.Repository
	log     logging.Logger
}

// NewAuthService constructs an AuthService and registers itself as the
// client's unauthorized handler, so any 401 immediately invalidates the
// local session.
func NewAuthService(client api.Client, tokenRepo authtokens.Repository, pairRepo pairs.Repository, batchRepo batches.Repository, log logging.Logger) *AuthService {
	s := &AuthService{api: client, tokens: tokenRepo, pairs: pairRepo, batches: batchRepo, log: log}
	client.SetUnauthorizedHandler(s.handleUnauthorized)
	return s
}

// Login authenticates against the authority and persists the minted token
// into the singleton slot.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.AuthToken, error) {
	if username == "" || password == "" {
		return nil, common.ErrValidation
	}

	token, err := s.api.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}

	if err := s.tokens.Save(ctx, token); err != nil {
		return nil, storageErr(err)
	}
	return token, nil
}

// Logout drops the local session. Queued pairs and batches are kept; they
// belong to the device, not the session, and upload under the next login.
func (s *AuthService) Logout(ctx context.Context) error {
	s.api.SetToken("")
	if err := s.tokens.Delete(ctx); err != nil {
		return storageErr(err)
	}
	return nil
}

// Current returns the stored token when it is still valid. An expired token
// is deleted on sight and reported as ErrAuthRequired.
func (s *AuthService) Current(ctx context.Context) (*models.AuthToken, error) {
	token, err := s.tokens.Get(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrAuthRequired
		}
		return nil, storageErr(err)
	}

	if !token.Valid(time.Now()) {
		if err := s.tokens.Delete(ctx); err != nil {
			return nil, storageErr(err)
		}
		return nil, common.ErrAuthRequired
	}
	return token, nil
}

// Restore loads a persisted valid token into the API client at startup.
// Returns ErrAuthRequired when there is no usable session.
func (s *AuthService) Restore(ctx context.Context) (*models.AuthToken, error) {
	token, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	s.api.SetToken(token.Token)
	return token, nil
}

// handleUnauthorized clears user-scoped local state after the authority
// rejected the session: the token slot, local pairs, and queued batches.
// The asset-tag cache is preserved.
func (s *AuthService) handleUnauthorized(ctx context.Context) {
	if err := s.tokens.Delete(ctx); err != nil {
		s.log.Error(ctx, "failed to clear auth token", "error", err)
	}
	if err := s.pairs.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear pairs", "error", err)
	}
	if err := s.batches.Clear(ctx); err != nil {
		s.log.Error(ctx, "failed to clear upload queue", "error", err)
	}
	s.log.Warn(ctx, "session invalidated by authority, re-authentication required")
}

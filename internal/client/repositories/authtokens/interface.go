package authtokens

import (
	"context"

	"assettrack/internal/client/models"
)

// Repository manages the single local auth-token slot. At most one token
// row exists at any time.
type Repository interface {
	// Get returns the stored token or common.ErrNotFound.
	Get(ctx context.Context) (*models.AuthToken, error)

	// Save overwrites the token slot.
	Save(ctx context.Context, token *models.AuthToken) error

	// Delete clears the token slot. Deleting an empty slot is a no-op.
	Delete(ctx context.Context) error
}

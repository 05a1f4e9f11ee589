package client

import (
	"context"

	"github.com/dmitrijs2005/userdesk/internal/client/models"
)

// AuthCapability exchanges credentials for a session token.
type AuthCapability interface {
	Login(ctx context.Context, email string, password []byte) (string, error)
}

// UserCapability is the paged user listing plus the write operations.
type UserCapability interface {
	ListUsers(ctx context.Context, page int) (*models.UserPage, error)
	UpdateUser(ctx context.Context, id models.ID, u models.UserUpdate) error
	DeleteUser(ctx context.Context, id models.ID) error
}

// UserFetcher is implemented by services that can return a single record.
// Callers must treat its absence, or ErrNotSupported, as "no data".
type UserFetcher interface {
	GetUser(ctx context.Context, id models.ID) (*models.User, error)
}

type Client interface {
	AuthCapability
	UserCapability
	Logout(ctx context.Context) error
}

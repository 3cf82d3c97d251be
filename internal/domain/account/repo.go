package account

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	// Register persists the organization and its first admin user
	// atomically: neither row exists unless both do.
	Register(ctx context.Context, org *Organization, admin *User) error
	GetOrganization(ctx context.Context, id uuid.UUID) (*Organization, error)
	UpdateOrganization(ctx context.Context, org *Organization) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*User, error)
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
}

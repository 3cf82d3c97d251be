package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository queries are tenant-scoped: a row whose organization does not
// match behaves exactly like a missing row.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

package referral

import (
	"context"

	"github.com/google/uuid"
)

// Repository queries are tenant-scoped; an org mismatch reads as absence.
type Repository interface {
	Create(ctx context.Context, ref *Referral) error
	GetByID(ctx context.Context, orgID, id uuid.UUID) (*Referral, error)
	List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Referral, error)
	ListByPatient(ctx context.Context, orgID, patientID uuid.UUID, limit, offset int) ([]*Referral, error)
	Update(ctx context.Context, ref *Referral) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Repository is tenant-scoped like the other entity stores. Edge operations
// touch only rows whose both ends belong to the organization.
type Repository interface {
	CreateLocation(ctx context.Context, l *Location) error
	GetLocation(ctx context.Context, orgID, id uuid.UUID) (*Location, error)
	ListLocations(ctx context.Context, orgID uuid.UUID) ([]*Location, error)
	UpdateLocation(ctx context.Context, l *Location) error
	DeleteLocation(ctx context.Context, orgID, id uuid.UUID) error

	CreateProvider(ctx context.Context, p *Provider) error
	GetProvider(ctx context.Context, orgID, id uuid.UUID) (*Provider, error)
	ListProviders(ctx context.Context, orgID uuid.UUID) ([]*Provider, error)
	UpdateProvider(ctx context.Context, p *Provider) error
	DeleteProvider(ctx context.Context, orgID, id uuid.UUID) error

	CreateService(ctx context.Context, s *MedicalService) error
	GetService(ctx context.Context, orgID, id uuid.UUID) (*MedicalService, error)
	ListServices(ctx context.Context, orgID uuid.UUID) ([]*MedicalService, error)
	UpdateService(ctx context.Context, s *MedicalService) error
	DeleteService(ctx context.Context, orgID, id uuid.UUID) error

	LinkLocationService(ctx context.Context, locationID, serviceID uuid.UUID) error
	UnlinkLocationService(ctx context.Context, locationID, serviceID uuid.UUID) error
	ListLocationServices(ctx context.Context, orgID, locationID uuid.UUID) ([]*MedicalService, error)

	LinkProviderLocation(ctx context.Context, providerID, locationID uuid.UUID) error
	UnlinkProviderLocation(ctx context.Context, providerID, locationID uuid.UUID) error
	ListProviderLocations(ctx context.Context, orgID, providerID uuid.UUID) ([]*Location, error)

	LinkProviderService(ctx context.Context, providerID, serviceID uuid.UUID) error
	UnlinkProviderService(ctx context.Context, providerID, serviceID uuid.UUID) error
	ListProviderServices(ctx context.Context, orgID, providerID uuid.UUID) ([]*MedicalService, error)
}

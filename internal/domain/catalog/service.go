package catalog

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// -- Locations --

type LocationInput struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Active  *bool  `json:"active"`
}

func (s *Service) CreateLocation(ctx context.Context, orgID uuid.UUID, in LocationInput) (*Location, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.ValidationFields("name")
	}
	l := &Location{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(in.Name),
		Address:        in.Address,
		Phone:          in.Phone,
		Active:         in.Active == nil || *in.Active,
	}
	if err := s.repo.CreateLocation(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) GetLocation(ctx context.Context, orgID, id uuid.UUID) (*Location, error) {
	return s.repo.GetLocation(ctx, orgID, id)
}

func (s *Service) ListLocations(ctx context.Context, orgID uuid.UUID) ([]*Location, error) {
	return s.repo.ListLocations(ctx, orgID)
}

func (s *Service) UpdateLocation(ctx context.Context, orgID, id uuid.UUID, in LocationInput) (*Location, error) {
	l, err := s.repo.GetLocation(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		l.Name = strings.TrimSpace(in.Name)
	}
	if in.Address != "" {
		l.Address = in.Address
	}
	if in.Phone != "" {
		l.Phone = in.Phone
	}
	if in.Active != nil {
		l.Active = *in.Active
	}
	if err := s.repo.UpdateLocation(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

func (s *Service) DeleteLocation(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.DeleteLocation(ctx, orgID, id)
}

// -- Providers --

type ProviderInput struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Active    *bool  `json:"active"`
}

func (s *Service) CreateProvider(ctx context.Context, orgID uuid.UUID, in ProviderInput) (*Provider, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.ValidationFields("name")
	}
	p := &Provider{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(in.Name),
		Specialty:      in.Specialty,
		Email:          in.Email,
		Phone:          in.Phone,
		Active:         in.Active == nil || *in.Active,
	}
	if err := s.repo.CreateProvider(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetProvider(ctx context.Context, orgID, id uuid.UUID) (*Provider, error) {
	return s.repo.GetProvider(ctx, orgID, id)
}

func (s *Service) ListProviders(ctx context.Context, orgID uuid.UUID) ([]*Provider, error) {
	return s.repo.ListProviders(ctx, orgID)
}

func (s *Service) UpdateProvider(ctx context.Context, orgID, id uuid.UUID, in ProviderInput) (*Provider, error) {
	p, err := s.repo.GetProvider(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		p.Name = strings.TrimSpace(in.Name)
	}
	if in.Specialty != "" {
		p.Specialty = in.Specialty
	}
	if in.Email != "" {
		p.Email = in.Email
	}
	if in.Phone != "" {
		p.Phone = in.Phone
	}
	if in.Active != nil {
		p.Active = *in.Active
	}
	if err := s.repo.UpdateProvider(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) DeleteProvider(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.DeleteProvider(ctx, orgID, id)
}

// -- Medical services --

type MedicalServiceInput struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

func (s *Service) CreateService(ctx context.Context, orgID uuid.UUID, in MedicalServiceInput) (*MedicalService, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperr.ValidationFields("name")
	}
	ms := &MedicalService{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(in.Name),
		Description:    in.Description,
		Active:         in.Active == nil || *in.Active,
	}
	if err := s.repo.CreateService(ctx, ms); err != nil {
		return nil, err
	}
	return ms, nil
}

func (s *Service) GetService(ctx context.Context, orgID, id uuid.UUID) (*MedicalService, error) {
	return s.repo.GetService(ctx, orgID, id)
}

func (s *Service) ListServices(ctx context.Context, orgID uuid.UUID) ([]*MedicalService, error) {
	return s.repo.ListServices(ctx, orgID)
}

func (s *Service) UpdateService(ctx context.Context, orgID, id uuid.UUID, in MedicalServiceInput) (*MedicalService, error) {
	ms, err := s.repo.GetService(ctx, orgID, id)
	if err != nil {
		return nil, err
	}
	if in.Name != "" {
		ms.Name = strings.TrimSpace(in.Name)
	}
	if in.Description != "" {
		ms.Description = in.Description
	}
	if in.Active != nil {
		ms.Active = *in.Active
	}
	if err := s.repo.UpdateService(ctx, ms); err != nil {
		return nil, err
	}
	return ms, nil
}

func (s *Service) DeleteService(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.DeleteService(ctx, orgID, id)
}

// -- Edges --
// Both ends are resolved inside the organization before linking, so a
// foreign tenant's id cannot be attached even when it exists.

func (s *Service) AddServiceToLocation(ctx context.Context, orgID, locationID, serviceID uuid.UUID) error {
	if _, err := s.repo.GetLocation(ctx, orgID, locationID); err != nil {
		return err
	}
	if _, err := s.repo.GetService(ctx, orgID, serviceID); err != nil {
		return err
	}
	return s.repo.LinkLocationService(ctx, locationID, serviceID)
}

func (s *Service) RemoveServiceFromLocation(ctx context.Context, orgID, locationID, serviceID uuid.UUID) error {
	if _, err := s.repo.GetLocation(ctx, orgID, locationID); err != nil {
		return err
	}
	return s.repo.UnlinkLocationService(ctx, locationID, serviceID)
}

func (s *Service) LocationServices(ctx context.Context, orgID, locationID uuid.UUID) ([]*MedicalService, error) {
	if _, err := s.repo.GetLocation(ctx, orgID, locationID); err != nil {
		return nil, err
	}
	return s.repo.ListLocationServices(ctx, orgID, locationID)
}

func (s *Service) AddLocationToProvider(ctx context.Context, orgID, providerID, locationID uuid.UUID) error {
	if _, err := s.repo.GetProvider(ctx, orgID, providerID); err != nil {
		return err
	}
	if _, err := s.repo.GetLocation(ctx, orgID, locationID); err != nil {
		return err
	}
	return s.repo.LinkProviderLocation(ctx, providerID, locationID)
}

func (s *Service) RemoveLocationFromProvider(ctx context.Context, orgID, providerID, locationID uuid.UUID) error {
	if _, err := s.repo.GetProvider(ctx, orgID, providerID); err != nil {
		return err
	}
	return s.repo.UnlinkProviderLocation(ctx, providerID, locationID)
}

func (s *Service) ProviderLocations(ctx context.Context, orgID, providerID uuid.UUID) ([]*Location, error) {
	if _, err := s.repo.GetProvider(ctx, orgID, providerID); err != nil {
		return nil, err
	}
	return s.repo.ListProviderLocations(ctx, orgID, providerID)
}

func (s *Service) AddServiceToProvider(ctx context.Context, orgID, providerID, serviceID uuid.UUID) error {
	if _, err := s.repo.GetProvider(ctx, orgID, providerID); err != nil {
		return err
	}
	if _, err := s.repo.GetService(ctx, orgID, serviceID); err != nil {
		return err
	}
	return s.repo.LinkProviderService(ctx, providerID, serviceID)
}

func (s *Service) RemoveServiceFromProvider(ctx context.Context, orgID, providerID, serviceID uuid.UUID) error {
	if _, err := s.repo.GetProvider(ctx, orgID, providerID); err != nil {
		return err
	}
	return s.repo.UnlinkProviderService(ctx, providerID, serviceID)
}

func (s *Service) ProviderServices(ctx context.Context, orgID, providerID uuid.UUID) ([]*MedicalService, error) {
	if _, err := s.repo.GetProvider(ctx, orgID, providerID); err != nil {
		return nil, err
	}
	return s.repo.ListProviderServices(ctx, orgID, providerID)
}

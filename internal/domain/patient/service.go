package patient

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
)

const dateLayout = "2006-01-02"

var validGenders = map[string]bool{
	"male": true, "female": true, "other": true, "unknown": true,
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateInput is the POST body; OrganizationID comes from the principal, not
// the payload.
type CreateInput struct {
	FullName         string           `json:"fullName"`
	DateOfBirth      string           `json:"dateOfBirth"`
	Gender           string           `json:"gender"`
	Ethnicity        *string          `json:"ethnicity"`
	ContactInfo      ContactInfo      `json:"contactInfo"`
	Insurance        Insurance        `json:"insurance"`
	EmergencyContact EmergencyContact `json:"emergencyContact"`
	MedicalHistory   MedicalHistory   `json:"medicalHistory"`
}

func (s *Service) Create(ctx context.Context, orgID uuid.UUID, in CreateInput) (*Patient, error) {
	var bad []string
	if strings.TrimSpace(in.FullName) == "" {
		bad = append(bad, "fullName")
	}
	if !validDate(in.DateOfBirth) {
		bad = append(bad, "dateOfBirth")
	}
	if !validGenders[in.Gender] {
		bad = append(bad, "gender")
	}
	if len(bad) > 0 {
		return nil, apperr.ValidationFields(bad...)
	}

	p := &Patient{
		OrganizationID:   orgID,
		FullName:         strings.TrimSpace(in.FullName),
		DateOfBirth:      in.DateOfBirth,
		Gender:           in.Gender,
		Ethnicity:        in.Ethnicity,
		ContactInfo:      in.ContactInfo,
		Insurance:        in.Insurance,
		EmergencyContact: in.EmergencyContact,
		MedicalHistory:   in.MedicalHistory,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Patient, error) {
	return s.repo.List(ctx, orgID, limit, offset)
}

// Update applies a shallow merge: scalar fields change individually, a
// supplied nested object replaces the stored one wholesale.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, in UpdateInput) (*Patient, error) {
	p, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	var bad []string
	if in.FullName != nil {
		if strings.TrimSpace(*in.FullName) == "" {
			bad = append(bad, "fullName")
		} else {
			p.FullName = strings.TrimSpace(*in.FullName)
		}
	}
	if in.DateOfBirth != nil {
		if !validDate(*in.DateOfBirth) {
			bad = append(bad, "dateOfBirth")
		} else {
			p.DateOfBirth = *in.DateOfBirth
		}
	}
	if in.Gender != nil {
		if !validGenders[*in.Gender] {
			bad = append(bad, "gender")
		} else {
			p.Gender = *in.Gender
		}
	}
	if len(bad) > 0 {
		return nil, apperr.ValidationFields(bad...)
	}

	if in.Ethnicity != nil {
		p.Ethnicity = in.Ethnicity
	}
	if in.ContactInfo != nil {
		p.ContactInfo = *in.ContactInfo
	}
	if in.Insurance != nil {
		p.Insurance = *in.Insurance
	}
	if in.EmergencyContact != nil {
		p.EmergencyContact = *in.EmergencyContact
	}
	if in.MedicalHistory != nil {
		p.MedicalHistory = *in.MedicalHistory
	}

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.Delete(ctx, orgID, id)
}

func validDate(s string) bool {
	_, err := time.Parse(dateLayout, s)
	return err == nil
}

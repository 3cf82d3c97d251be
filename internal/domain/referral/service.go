package referral

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rmdhealth/rmd/internal/domain/patient"
	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/ehr"
	"github.com/rmdhealth/rmd/internal/platform/middleware"
)

// PatientDirectory resolves the referral's patient within the same tenant.
type PatientDirectory interface {
	Get(ctx context.Context, orgID, id uuid.UUID) (*patient.Patient, error)
}

// Syncer pushes a created referral to the external health system.
type Syncer interface {
	SyncReferral(ctx context.Context, ref ehr.ReferralSync) ehr.SyncOutcome
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	// sync is nil when no EHR endpoints are configured; creation then
	// skips the push entirely.
	sync Syncer
	log  zerolog.Logger
}

func NewService(repo Repository, patients PatientDirectory, sync Syncer, log zerolog.Logger) *Service {
	return &Service{repo: repo, patients: patients, sync: sync, log: log}
}

type CreateInput struct {
	PatientID uuid.UUID  `json:"patientId"`
	Status    string     `json:"status"`
	Priority  string     `json:"priority"`
	Details   Details    `json:"details"`
	Documents []Document `json:"documents"`
}

// Create persists the referral and pushes it to the EHR channels
// best-effort. A failed push never rolls back the local row; the per-channel
// outcome is returned alongside the referral and is nil when no EHR is
// configured.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, in CreateInput) (*Referral, map[string]ehr.ChannelStatus, error) {
	var bad []string
	if in.PatientID == uuid.Nil {
		bad = append(bad, "patientId")
	}
	if !ValidPriority(in.Priority) {
		bad = append(bad, "priority")
	}
	if strings.TrimSpace(in.Details.MedicalService) == "" {
		bad = append(bad, "details.medicalService")
	}
	status := in.Status
	if status == "" {
		status = "new"
	}
	if !ValidStatus(status) {
		bad = append(bad, "status")
	} else if in.Details.SubStatus == "" {
		in.Details.SubStatus = DefaultSubStatus(status)
	} else if !ValidSubStatus(status, in.Details.SubStatus) {
		bad = append(bad, "details.subStatus")
	}
	if len(bad) > 0 {
		return nil, nil, apperr.ValidationFields(bad...)
	}

	pat, err := s.patients.Get(ctx, orgID, in.PatientID)
	if err != nil {
		return nil, nil, err
	}

	ref := &Referral{
		OrganizationID: orgID,
		PatientID:      pat.ID,
		CaseID:         NewCaseID(),
		Status:         status,
		Priority:       in.Priority,
		Details:        in.Details,
		Documents:      in.Documents,
	}
	if ref.Documents == nil {
		ref.Documents = []Document{}
	}
	if err := s.repo.Create(ctx, ref); err != nil {
		return nil, nil, err
	}

	if s.sync == nil {
		return ref, nil, nil
	}
	outcome := s.sync.SyncReferral(ctx, ehr.ReferralSync{
		CaseID:            ref.CaseID,
		PatientID:         pat.ID.String(),
		PatientName:       pat.FullName,
		ReceivingProvider: ref.Details.Provider,
		Specialty:         ref.Details.MedicalService,
		Priority:          ref.Priority,
		Reason:            ref.Details.Reason,
	})
	if !errors.Is(outcome.FHIRErr, ehr.ErrChannelNotConfigured) {
		middleware.RecordEHRSync("fhir", outcome.FHIRErr == nil)
	}
	if !errors.Is(outcome.HL7Err, ehr.ErrChannelNotConfigured) {
		middleware.RecordEHRSync("hl7", outcome.HL7Err == nil)
	}
	if !outcome.FullySynced() {
		s.log.Warn().Str("case_id", ref.CaseID).Msg("referral persisted with partial ehr sync")
	}
	return ref, outcome.Report(), nil
}

func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (*Referral, error) {
	return s.repo.GetByID(ctx, orgID, id)
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID, limit, offset int) ([]*Referral, error) {
	return s.repo.List(ctx, orgID, limit, offset)
}

func (s *Service) ListByPatient(ctx context.Context, orgID, patientID uuid.UUID, limit, offset int) ([]*Referral, error) {
	return s.repo.ListByPatient(ctx, orgID, patientID, limit, offset)
}

type UpdateInput struct {
	Status    *string     `json:"status"`
	SubStatus *string     `json:"subStatus"`
	Priority  *string     `json:"priority"`
	Details   *Details    `json:"details"`
	Documents *[]Document `json:"documents"`
}

// Update applies a shallow merge. Details replaces the stored object
// wholesale; status and subStatus are then reconciled on top: a status
// change without an explicit subStatus lands on the new status's default,
// and a subStatus outside the effective status's set is rejected.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, in UpdateInput) (*Referral, error) {
	ref, err := s.repo.GetByID(ctx, orgID, id)
	if err != nil {
		return nil, err
	}

	var bad []string
	if in.Priority != nil {
		if !ValidPriority(*in.Priority) {
			bad = append(bad, "priority")
		} else {
			ref.Priority = *in.Priority
		}
	}
	if in.Details != nil {
		ref.Details = *in.Details
	}
	if in.Documents != nil {
		ref.Documents = *in.Documents
	}

	switch {
	case in.Status != nil:
		if !ValidStatus(*in.Status) {
			bad = append(bad, "status")
			break
		}
		ref.Status = *in.Status
		switch {
		case in.SubStatus != nil:
			ref.Details.SubStatus = *in.SubStatus
		case in.Details == nil || ref.Details.SubStatus == "":
			ref.Details.SubStatus = DefaultSubStatus(ref.Status)
		}
		if !ValidSubStatus(ref.Status, ref.Details.SubStatus) {
			bad = append(bad, "subStatus")
		}
	case in.SubStatus != nil:
		ref.Details.SubStatus = *in.SubStatus
		if !ValidSubStatus(ref.Status, ref.Details.SubStatus) {
			bad = append(bad, "subStatus")
		}
	case in.Details != nil:
		if ref.Details.SubStatus == "" {
			ref.Details.SubStatus = DefaultSubStatus(ref.Status)
		}
		if !ValidSubStatus(ref.Status, ref.Details.SubStatus) {
			bad = append(bad, "details.subStatus")
		}
	}

	if len(bad) > 0 {
		return nil, apperr.ValidationFields(bad...)
	}
	if ref.Documents == nil {
		ref.Documents = []Document{}
	}
	if err := s.repo.Update(ctx, ref); err != nil {
		return nil, err
	}
	return ref, nil
}

func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.Delete(ctx, orgID, id)
}

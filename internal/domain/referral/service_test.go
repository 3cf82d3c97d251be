package referral

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rmdhealth/rmd/internal/domain/patient"
	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/ehr"
)

type mockRepo struct {
	store map[uuid.UUID]*Referral
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Referral)}
}

func (m *mockRepo) Create(_ context.Context, ref *Referral) error {
	ref.ID = uuid.New()
	clone := *ref
	m.store[ref.ID] = &clone
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*Referral, error) {
	ref, ok := m.store[id]
	if !ok || ref.OrganizationID != orgID {
		return nil, apperr.NotFound("referral")
	}
	clone := *ref
	return &clone, nil
}

func (m *mockRepo) List(_ context.Context, orgID uuid.UUID, limit, offset int) ([]*Referral, error) {
	items := []*Referral{}
	for _, ref := range m.store {
		if ref.OrganizationID == orgID {
			clone := *ref
			items = append(items, &clone)
		}
	}
	return items, nil
}

func (m *mockRepo) ListByPatient(_ context.Context, orgID, patientID uuid.UUID, limit, offset int) ([]*Referral, error) {
	items := []*Referral{}
	for _, ref := range m.store {
		if ref.OrganizationID == orgID && ref.PatientID == patientID {
			clone := *ref
			items = append(items, &clone)
		}
	}
	return items, nil
}

func (m *mockRepo) Update(_ context.Context, ref *Referral) error {
	existing, ok := m.store[ref.ID]
	if !ok || existing.OrganizationID != ref.OrganizationID {
		return apperr.NotFound("referral")
	}
	clone := *ref
	m.store[ref.ID] = &clone
	return nil
}

func (m *mockRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	ref, ok := m.store[id]
	if !ok || ref.OrganizationID != orgID {
		return apperr.NotFound("referral")
	}
	delete(m.store, id)
	return nil
}

type fakePatients struct {
	store map[uuid.UUID]*patient.Patient
}

func newFakePatients() *fakePatients {
	return &fakePatients{store: make(map[uuid.UUID]*patient.Patient)}
}

func (f *fakePatients) add(orgID uuid.UUID, name string) *patient.Patient {
	p := &patient.Patient{ID: uuid.New(), OrganizationID: orgID, FullName: name}
	f.store[p.ID] = p
	return p
}

func (f *fakePatients) Get(_ context.Context, orgID, id uuid.UUID) (*patient.Patient, error) {
	p, ok := f.store[id]
	if !ok || p.OrganizationID != orgID {
		return nil, apperr.NotFound("patient")
	}
	return p, nil
}

type fakeSyncer struct {
	outcome ehr.SyncOutcome
	got     *ehr.ReferralSync
}

func (f *fakeSyncer) SyncReferral(_ context.Context, ref ehr.ReferralSync) ehr.SyncOutcome {
	f.got = &ref
	return f.outcome
}

func validCreate(patientID uuid.UUID) CreateInput {
	return CreateInput{
		PatientID: patientID,
		Priority:  "high",
		Details: Details{
			Location:       "Main Campus",
			Provider:       "Dr. Lindqvist",
			MedicalService: "Cardiology",
			Reason:         "Chest pain on exertion",
		},
	}
}

func TestCreate_DefaultsStatusAndSubStatus(t *testing.T) {
	orgID := uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgID, "Jane Doe")
	svc := NewService(newMockRepo(), patients, nil, zerolog.Nop())

	ref, sync, err := svc.Create(context.Background(), orgID, validCreate(pat.ID))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Status != "new" || ref.Details.SubStatus != "Unassigned" {
		t.Errorf("status = %q / %q", ref.Status, ref.Details.SubStatus)
	}
	if sync != nil {
		t.Errorf("sync = %v, want nil without a configured EHR", sync)
	}
	if !strings.HasPrefix(ref.CaseID, "REF") || len(ref.CaseID) != 9 {
		t.Errorf("caseId = %q", ref.CaseID)
	}
	if ref.Documents == nil {
		t.Error("documents should serialize as an empty array, not null")
	}
}

func TestCreate_CrossVocabularySubStatusRejected(t *testing.T) {
	orgID := uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgID, "Jane Doe")
	svc := NewService(newMockRepo(), patients, nil, zerolog.Nop())

	in := validCreate(pat.ID)
	in.Status = "new"
	in.Details.SubStatus = "Assigned" // belongs to in_progress
	_, _, err := svc.Create(context.Background(), orgID, in)
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestCreate_UnknownPatientRejected(t *testing.T) {
	orgID := uuid.New()
	svc := NewService(newMockRepo(), newFakePatients(), nil, zerolog.Nop())

	_, _, err := svc.Create(context.Background(), orgID, validCreate(uuid.New()))
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestCreate_ForeignTenantPatientRejected(t *testing.T) {
	orgA, orgB := uuid.New(), uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgA, "Jane Doe")
	svc := NewService(newMockRepo(), patients, nil, zerolog.Nop())

	_, _, err := svc.Create(context.Background(), orgB, validCreate(pat.ID))
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found for foreign tenant's patient", err)
	}
}

func TestCreate_SyncOutcomeSurfaced(t *testing.T) {
	orgID := uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgID, "Jane Doe")
	syncer := &fakeSyncer{outcome: ehr.SyncOutcome{HL7Err: errors.New("hl7 down")}}
	svc := NewService(newMockRepo(), patients, syncer, zerolog.Nop())

	ref, sync, err := svc.Create(context.Background(), orgID, validCreate(pat.ID))
	if err != nil {
		t.Fatalf("create must succeed despite sync failure: %v", err)
	}
	if ref.ID == uuid.Nil {
		t.Fatal("referral not persisted")
	}
	if !sync["fhir"].Synced {
		t.Errorf("fhir = %+v", sync["fhir"])
	}
	if sync["hl7"].Synced || sync["hl7"].Error == "" {
		t.Errorf("hl7 = %+v", sync["hl7"])
	}
	if syncer.got == nil || syncer.got.Specialty != "Cardiology" || syncer.got.PatientName != "Jane Doe" {
		t.Errorf("sync payload = %+v", syncer.got)
	}
	if syncer.got.CaseID != ref.CaseID {
		t.Errorf("sync caseId = %q, want %q", syncer.got.CaseID, ref.CaseID)
	}
}

func TestUpdate_StatusChangeDefaultsSubStatus(t *testing.T) {
	orgID := uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgID, "Jane Doe")
	svc := NewService(newMockRepo(), patients, nil, zerolog.Nop())
	ref, _, _ := svc.Create(context.Background(), orgID, validCreate(pat.ID))

	status := "scheduled"
	updated, err := svc.Update(context.Background(), orgID, ref.ID, UpdateInput{Status: &status})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Status != "scheduled" || updated.Details.SubStatus != "Appointment Confirmed" {
		t.Errorf("status = %q / %q", updated.Status, updated.Details.SubStatus)
	}
}

func TestUpdate_ExplicitSubStatusHonored(t *testing.T) {
	orgID := uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgID, "Jane Doe")
	svc := NewService(newMockRepo(), patients, nil, zerolog.Nop())
	ref, _, _ := svc.Create(context.Background(), orgID, validCreate(pat.ID))

	status, sub := "on_hold", "Insurance Issue"
	updated, err := svc.Update(context.Background(), orgID, ref.ID, UpdateInput{Status: &status, SubStatus: &sub})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Details.SubStatus != "Insurance Issue" {
		t.Errorf("subStatus = %q", updated.Details.SubStatus)
	}
}

func TestUpdate_SubStatusOutsideStatusSetRejected(t *testing.T) {
	orgID := uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgID, "Jane Doe")
	svc := NewService(newMockRepo(), patients, nil, zerolog.Nop())
	ref, _, _ := svc.Create(context.Background(), orgID, validCreate(pat.ID))

	sub := "Authorization Denied" // pending_authorization label, referral is new
	_, err := svc.Update(context.Background(), orgID, ref.ID, UpdateInput{SubStatus: &sub})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}

func TestUpdate_DetailsReplacedWholesale(t *testing.T) {
	orgID := uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgID, "Jane Doe")
	svc := NewService(newMockRepo(), patients, nil, zerolog.Nop())
	ref, _, _ := svc.Create(context.Background(), orgID, validCreate(pat.ID))

	updated, err := svc.Update(context.Background(), orgID, ref.ID, UpdateInput{
		Details: &Details{MedicalService: "Neurology", Reason: "Migraines"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.Details.Provider != "" || updated.Details.Location != "" {
		t.Errorf("details merged instead of replaced: %+v", updated.Details)
	}
	// An absent subStatus in the replacement lands on the status default.
	if updated.Details.SubStatus != "Unassigned" {
		t.Errorf("subStatus = %q", updated.Details.SubStatus)
	}
}

func TestDelete_SecondDeleteIsNotFound(t *testing.T) {
	orgID := uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgID, "Jane Doe")
	svc := NewService(newMockRepo(), patients, nil, zerolog.Nop())
	ref, _, _ := svc.Create(context.Background(), orgID, validCreate(pat.ID))

	if err := svc.Delete(context.Background(), orgID, ref.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	if err := svc.Delete(context.Background(), orgID, ref.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

func TestListByPatient_ScopedToTenant(t *testing.T) {
	orgA, orgB := uuid.New(), uuid.New()
	patients := newFakePatients()
	pat := patients.add(orgA, "Jane Doe")
	svc := NewService(newMockRepo(), patients, nil, zerolog.Nop())
	svc.Create(context.Background(), orgA, validCreate(pat.ID))

	items, err := svc.ListByPatient(context.Background(), orgB, pat.ID, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("foreign tenant sees %d referrals", len(items))
	}
}

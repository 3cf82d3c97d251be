package patient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
)

type mockRepo struct {
	store map[uuid.UUID]*Patient
}

func newMockRepo() *mockRepo {
	return &mockRepo{store: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	clone := *p
	m.store[p.ID] = &clone
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, orgID, id uuid.UUID) (*Patient, error) {
	p, ok := m.store[id]
	if !ok || p.OrganizationID != orgID {
		return nil, apperr.NotFound("patient")
	}
	clone := *p
	return &clone, nil
}

func (m *mockRepo) List(_ context.Context, orgID uuid.UUID, limit, offset int) ([]*Patient, error) {
	items := []*Patient{}
	for _, p := range m.store {
		if p.OrganizationID == orgID {
			clone := *p
			items = append(items, &clone)
		}
	}
	return items, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	existing, ok := m.store[p.ID]
	if !ok || existing.OrganizationID != p.OrganizationID {
		return apperr.NotFound("patient")
	}
	clone := *p
	m.store[p.ID] = &clone
	return nil
}

func (m *mockRepo) Delete(_ context.Context, orgID, id uuid.UUID) error {
	p, ok := m.store[id]
	if !ok || p.OrganizationID != orgID {
		return apperr.NotFound("patient")
	}
	delete(m.store, id)
	return nil
}

func validCreate() CreateInput {
	return CreateInput{
		FullName:    "Jane Doe",
		DateOfBirth: "1990-01-01",
		Gender:      "female",
		ContactInfo: ContactInfo{Phone: "555-0100", Address: "1 Main St"},
		Insurance: Insurance{Primary: InsurancePlan{
			Provider:     "Acme Health",
			PolicyNumber: "P-100",
			PolicyHolder: PolicyHolder{Name: "Jane Doe", Relationship: "self", DateOfBirth: "1990-01-01"},
		}},
		EmergencyContact: EmergencyContact{Name: "John Doe", Relationship: "spouse", Phone: "555-0101"},
		MedicalHistory:   MedicalHistory{Conditions: []string{"asthma"}},
	}
}

func TestCreate_Success(t *testing.T) {
	svc := NewService(newMockRepo())
	orgID := uuid.New()

	p, err := svc.Create(context.Background(), orgID, validCreate())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ID == uuid.Nil || p.OrganizationID != orgID {
		t.Errorf("patient = %+v", p)
	}
	if p.Insurance.Primary.Provider != "Acme Health" {
		t.Errorf("insurance = %+v", p.Insurance)
	}
}

func TestCreate_AllOffendingFieldsListed(t *testing.T) {
	svc := NewService(newMockRepo())
	_, err := svc.Create(context.Background(), uuid.New(), CreateInput{
		DateOfBirth: "01/01/1990",
		Gender:      "bogus",
	})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
	for _, field := range []string{"fullName", "dateOfBirth", "gender"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("message %q missing %q", err.Error(), field)
		}
	}
}

func TestGet_TenantMismatchIsNotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	orgA, orgB := uuid.New(), uuid.New()
	p, _ := svc.Create(context.Background(), orgA, validCreate())

	_, err := svc.Get(context.Background(), orgB, p.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found for foreign tenant", err)
	}
	if _, err := svc.Get(context.Background(), orgA, p.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
}

func TestList_ScopedToTenant(t *testing.T) {
	svc := NewService(newMockRepo())
	orgA, orgB := uuid.New(), uuid.New()
	svc.Create(context.Background(), orgA, validCreate())

	items, err := svc.List(context.Background(), orgB, 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 0 {
		t.Errorf("foreign tenant sees %d patients", len(items))
	}

	items, _ = svc.List(context.Background(), orgA, 0, 0)
	if len(items) != 1 {
		t.Errorf("owner sees %d patients, want 1", len(items))
	}
}

func TestUpdate_ShallowMergeReplacesNestedWholesale(t *testing.T) {
	svc := NewService(newMockRepo())
	orgID := uuid.New()
	p, _ := svc.Create(context.Background(), orgID, validCreate())

	name := "Jane Q. Doe"
	updated, err := svc.Update(context.Background(), orgID, p.ID, UpdateInput{
		FullName:    &name,
		ContactInfo: &ContactInfo{Phone: "555-0199"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if updated.FullName != "Jane Q. Doe" {
		t.Errorf("fullName = %q", updated.FullName)
	}
	// The nested object is replaced, not merged: the old address is gone.
	if updated.ContactInfo.Address != "" {
		t.Errorf("address = %q, want empty after wholesale replace", updated.ContactInfo.Address)
	}
	if updated.ContactInfo.Phone != "555-0199" {
		t.Errorf("phone = %q", updated.ContactInfo.Phone)
	}
	// Untouched groups survive.
	if updated.Insurance.Primary.Provider != "Acme Health" {
		t.Errorf("insurance = %+v", updated.Insurance)
	}
}

func TestUpdate_InvalidFieldRejected(t *testing.T) {
	svc := NewService(newMockRepo())
	orgID := uuid.New()
	p, _ := svc.Create(context.Background(), orgID, validCreate())

	bad := "not-a-date"
	_, err := svc.Update(context.Background(), orgID, p.ID, UpdateInput{DateOfBirth: &bad})
	if !apperr.IsKind(err, apperr.KindValidation) {
		t.Fatalf("err = %v, want validation", err)
	}

	unchanged, _ := svc.Get(context.Background(), orgID, p.ID)
	if unchanged.DateOfBirth != "1990-01-01" {
		t.Errorf("dateOfBirth = %q, rejected update persisted", unchanged.DateOfBirth)
	}
}

func TestUpdate_TenantMismatchIsNotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	orgA, orgB := uuid.New(), uuid.New()
	p, _ := svc.Create(context.Background(), orgA, validCreate())

	name := "Intruder Edit"
	_, err := svc.Update(context.Background(), orgB, p.ID, UpdateInput{FullName: &name})
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestDelete_SecondDeleteIsNotFound(t *testing.T) {
	svc := NewService(newMockRepo())
	orgID := uuid.New()
	p, _ := svc.Create(context.Background(), orgID, validCreate())

	if err := svc.Delete(context.Background(), orgID, p.ID); err != nil {
		t.Fatalf("first delete: %v", err)
	}
	err := svc.Delete(context.Background(), orgID, p.ID)
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("second delete err = %v, want not found", err)
	}
}

package referral

import (
	"context"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rmdhealth/rmd/internal/domain/account"
	"github.com/rmdhealth/rmd/internal/domain/patient"
	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/auth"
)

// In-memory stand-ins for the account and patient stores so the whole
// register, login, create-patient, create-referral flow runs at the service
// layer.

type memAccounts struct {
	orgs  map[uuid.UUID]*account.Organization
	users map[uuid.UUID]*account.User
}

func newMemAccounts() *memAccounts {
	return &memAccounts{
		orgs:  make(map[uuid.UUID]*account.Organization),
		users: make(map[uuid.UUID]*account.User),
	}
}

func (m *memAccounts) Register(_ context.Context, org *account.Organization, admin *account.User) error {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, admin.Email) {
			return apperr.Conflict("email is already registered")
		}
	}
	org.ID = uuid.New()
	admin.ID = uuid.New()
	admin.OrganizationID = org.ID
	m.orgs[org.ID] = org
	m.users[admin.ID] = admin
	return nil
}

func (m *memAccounts) GetOrganization(_ context.Context, id uuid.UUID) (*account.Organization, error) {
	o, ok := m.orgs[id]
	if !ok {
		return nil, apperr.NotFound("organization")
	}
	return o, nil
}

func (m *memAccounts) UpdateOrganization(_ context.Context, org *account.Organization) error {
	m.orgs[org.ID] = org
	return nil
}

func (m *memAccounts) GetUserByEmail(_ context.Context, email string) (*account.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return nil, apperr.NotFound("user")
}

func (m *memAccounts) GetUserByID(_ context.Context, id uuid.UUID) (*account.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.NotFound("user")
	}
	return u, nil
}

func (m *memAccounts) UpdatePassword(_ context.Context, userID uuid.UUID, hash string) error {
	u, ok := m.users[userID]
	if !ok {
		return apperr.NotFound("user")
	}
	u.PasswordHash = hash
	return nil
}

type memPatients struct {
	store map[uuid.UUID]*patient.Patient
}

func newMemPatients() *memPatients {
	return &memPatients{store: make(map[uuid.UUID]*patient.Patient)}
}

func (m *memPatients) Create(_ context.Context, p *patient.Patient) error {
	p.ID = uuid.New()
	m.store[p.ID] = p
	return nil
}

func (m *memPatients) GetByID(_ context.Context, orgID, id uuid.UUID) (*patient.Patient, error) {
	p, ok := m.store[id]
	if !ok || p.OrganizationID != orgID {
		return nil, apperr.NotFound("patient")
	}
	return p, nil
}

func (m *memPatients) List(_ context.Context, orgID uuid.UUID, limit, offset int) ([]*patient.Patient, error) {
	items := []*patient.Patient{}
	for _, p := range m.store {
		if p.OrganizationID == orgID {
			items = append(items, p)
		}
	}
	return items, nil
}

func (m *memPatients) Update(_ context.Context, p *patient.Patient) error {
	m.store[p.ID] = p
	return nil
}

func (m *memPatients) Delete(_ context.Context, orgID, id uuid.UUID) error {
	delete(m.store, id)
	return nil
}

func TestEndToEnd_RegisterLoginCreateReferral(t *testing.T) {
	ctx := context.Background()
	issuer := auth.NewTokenIssuer("0123456789abcdef0123456789abcdef", time.Hour, time.Hour)
	accounts := account.NewService(newMemAccounts(), issuer, zerolog.Nop())
	patients := patient.NewService(newMemPatients())
	referrals := NewService(newMockRepo(), patients, nil, zerolog.Nop())

	// Clinic A registers and logs in.
	_, err := accounts.Register(ctx, account.RegisterInput{
		OrganizationName: "Clinic A",
		Name:             "Ada Admin",
		Email:            "ada@clinica.example",
		Password:         "s3cret-long-enough",
	})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	session, err := accounts.Login(ctx, "ada@clinica.example", "s3cret-long-enough")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	orgA := session.Organization.ID

	// The session token resolves to a principal scoped to Clinic A.
	userID, orgID, err := issuer.Verify(session.Token)
	if err != nil || userID != session.User.ID || orgID != orgA {
		t.Fatalf("token claims: user=%v org=%v err=%v", userID, orgID, err)
	}

	jane, err := patients.Create(ctx, orgA, patient.CreateInput{
		FullName:    "Jane Doe",
		DateOfBirth: "1990-01-01",
		Gender:      "female",
	})
	if err != nil {
		t.Fatalf("create patient: %v", err)
	}

	_, _, err = referrals.Create(ctx, orgA, CreateInput{
		PatientID: jane.ID,
		Priority:  "high",
		Details:   Details{MedicalService: "Cardiology", Reason: "Evaluation"},
	})
	if err != nil {
		t.Fatalf("create referral: %v", err)
	}

	list, err := referrals.List(ctx, orgA, 0, 0)
	if err != nil {
		t.Fatalf("list referrals: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("got %d referrals, want 1", len(list))
	}
	if !regexp.MustCompile(`^REF\d{6}$`).MatchString(list[0].CaseID) {
		t.Errorf("caseId = %q", list[0].CaseID)
	}
	if list[0].Status != "new" {
		t.Errorf("status = %q, want new", list[0].Status)
	}

	// Clinic B registers; its views are empty despite Clinic A's data.
	sessionB, err := accounts.Register(ctx, account.RegisterInput{
		OrganizationName: "Clinic B",
		Name:             "Bea Admin",
		Email:            "bea@clinicb.example",
		Password:         "another-s3cret",
	})
	if err != nil {
		t.Fatalf("register clinic b: %v", err)
	}
	orgB := sessionB.Organization.ID

	patientsB, err := patients.List(ctx, orgB, 0, 0)
	if err != nil {
		t.Fatalf("list patients: %v", err)
	}
	if len(patientsB) != 0 {
		t.Errorf("clinic B sees %d patients, want 0", len(patientsB))
	}
	referralsB, err := referrals.List(ctx, orgB, 0, 0)
	if err != nil {
		t.Fatalf("list referrals: %v", err)
	}
	if len(referralsB) != 0 {
		t.Errorf("clinic B sees %d referrals, want 0", len(referralsB))
	}
}

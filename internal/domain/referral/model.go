package referral

import (
	"time"

	"github.com/google/uuid"
)

// Referral maps to the referrals table. Details and the ordered document
// list are jsonb columns.
type Referral struct {
	ID             uuid.UUID  `db:"id" json:"id"`
	OrganizationID uuid.UUID  `db:"organization_id" json:"organizationId"`
	PatientID      uuid.UUID  `db:"patient_id" json:"patientId"`
	CaseID         string     `db:"case_id" json:"caseId"`
	Status         string     `db:"status" json:"status"`
	Priority       string     `db:"priority" json:"priority"`
	Details        Details    `db:"details" json:"details"`
	Documents      []Document `db:"documents" json:"documents"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updatedAt"`
}

type Details struct {
	Location          string `json:"location"`
	Provider          string `json:"provider"`
	MedicalService    string `json:"medicalService"`
	Reason            string `json:"reason"`
	Notes             string `json:"notes,omitempty"`
	SubStatus         string `json:"subStatus"`
	PreferredDate     string `json:"preferredDate,omitempty"`
	PreferredTime     string `json:"preferredTime,omitempty"`
	InsuranceVerified bool   `json:"insuranceVerified"`
	InsuranceNotes    string `json:"insuranceNotes,omitempty"`
}

type Document struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
}

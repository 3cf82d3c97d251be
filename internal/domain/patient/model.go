package patient

import (
	"time"

	"github.com/google/uuid"
)

// Patient maps to the patients table. The nested demographic groups are
// stored as jsonb columns and travel as whole objects: a partial update
// replaces a supplied group wholesale, it never merges inside one.
type Patient struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	OrganizationID   uuid.UUID        `db:"organization_id" json:"organizationId"`
	FullName         string           `db:"full_name" json:"fullName"`
	DateOfBirth      string           `db:"date_of_birth" json:"dateOfBirth"`
	Gender           string           `db:"gender" json:"gender"`
	Ethnicity        *string          `db:"ethnicity" json:"ethnicity,omitempty"`
	ContactInfo      ContactInfo      `db:"contact_info" json:"contactInfo"`
	Insurance        Insurance        `db:"insurance" json:"insurance"`
	EmergencyContact EmergencyContact `db:"emergency_contact" json:"emergencyContact"`
	MedicalHistory   MedicalHistory   `db:"medical_history" json:"medicalHistory"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updatedAt"`
}

type ContactInfo struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type PolicyHolder struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	DateOfBirth  string `json:"dateOfBirth"`
}

type InsurancePlan struct {
	Provider      string       `json:"provider"`
	PolicyNumber  string       `json:"policyNumber"`
	GroupNumber   string       `json:"groupNumber"`
	EffectiveDate string       `json:"effectiveDate"`
	PolicyHolder  PolicyHolder `json:"policyHolder"`
}

type Insurance struct {
	Primary   InsurancePlan  `json:"primary"`
	Secondary *InsurancePlan `json:"secondary,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name"`
	Relationship string `json:"relationship"`
	Phone        string `json:"phone"`
}

type MedicalHistory struct {
	Conditions  []string `json:"conditions"`
	Allergies   []string `json:"allergies"`
	Medications []string `json:"medications"`
}

// UpdateInput is the PATCH body. Nil means "leave unchanged"; a present
// nested object replaces the stored one entirely.
type UpdateInput struct {
	FullName         *string           `json:"fullName"`
	DateOfBirth      *string           `json:"dateOfBirth"`
	Gender           *string           `json:"gender"`
	Ethnicity        *string           `json:"ethnicity"`
	ContactInfo      *ContactInfo      `json:"contactInfo"`
	Insurance        *Insurance        `json:"insurance"`
	EmergencyContact *EmergencyContact `json:"emergencyContact"`
	MedicalHistory   *MedicalHistory   `json:"medicalHistory"`
}

package ehr

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"
)

// ErrChannelNotConfigured is reported for a sync channel that has no
// endpoint coordinates.
var ErrChannelNotConfigured = errors.New("channel not configured")

// Contact holds the reachable-patient fields surfaced from either channel.
type Contact struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Patient is the channel-neutral demographic record returned by the Adapter.
type Patient struct {
	ID          string  `json:"id"`
	FirstName   string  `json:"firstName"`
	LastName    string  `json:"lastName"`
	DateOfBirth string  `json:"dateOfBirth"`
	Gender      string  `json:"gender"`
	Contact     Contact `json:"contact"`
}

// ReferralSync carries the referral fields pushed to the external system.
type ReferralSync struct {
	CaseID            string
	PatientID         string
	PatientName       string
	ReferringProvider string
	ReceivingProvider string
	Specialty         string
	Priority          string
	Reason            string
}

// ChannelStatus reports one channel's share of a referral sync.
type ChannelStatus struct {
	Synced bool   `json:"synced"`
	Error  string `json:"error,omitempty"`
}

// SyncOutcome records each channel's result separately so callers can tell a
// full sync from a partial one.
type SyncOutcome struct {
	FHIRErr error
	HL7Err  error
}

func (o SyncOutcome) FullySynced() bool { return o.FHIRErr == nil && o.HL7Err == nil }

// Report renders the outcome into the shape embedded in API responses.
func (o SyncOutcome) Report() map[string]ChannelStatus {
	report := map[string]ChannelStatus{
		"fhir": {Synced: o.FHIRErr == nil},
		"hl7":  {Synced: o.HL7Err == nil},
	}
	if o.FHIRErr != nil {
		report["fhir"] = ChannelStatus{Error: o.FHIRErr.Error()}
	}
	if o.HL7Err != nil {
		report["hl7"] = ChannelStatus{Error: o.HL7Err.Error()}
	}
	return report
}

type fhirChannel interface {
	GetPatient(ctx context.Context, patientID string) (map[string]interface{}, error)
	CreateServiceRequest(ctx context.Context, resource map[string]interface{}) (map[string]interface{}, error)
}

type hl7Channel interface {
	GetPatient(ctx context.Context, patientID string) (map[string][]string, error)
	SendReferral(ctx context.Context, ref ReferralMessage) (string, error)
}

// Adapter fronts both channels: FHIR is the primary read path with an HL7
// query fallback, and referral writes go to both. Either channel may be
// absent; a missing channel is skipped and reported as not configured.
type Adapter struct {
	fhir fhirChannel
	hl7  hl7Channel
	log  zerolog.Logger
}

func NewAdapter(fhir *FHIRClient, hl7 *HL7Client, log zerolog.Logger) *Adapter {
	a := &Adapter{log: log}
	// A nil concrete client must stay a nil interface or the channel
	// checks below never fire.
	if fhir != nil {
		a.fhir = fhir
	}
	if hl7 != nil {
		a.hl7 = hl7
	}
	return a
}

// GetPatient resolves a patient via FHIR, falling back to an HL7 QRY^A19
// query when the FHIR call fails. When both channels fail the HL7 error is
// returned; with a single channel configured its error propagates directly.
func (a *Adapter) GetPatient(ctx context.Context, patientID string) (Patient, error) {
	var fhirErr error
	if a.fhir != nil {
		resource, err := a.fhir.GetPatient(ctx, patientID)
		if err == nil {
			return patientFromFHIR(resource), nil
		}
		fhirErr = err
		a.log.Warn().Err(fhirErr).Str("patient_id", patientID).
			Msg("fhir patient lookup failed, falling back to hl7")
	}

	if a.hl7 == nil {
		if fhirErr != nil {
			return Patient{}, fhirErr
		}
		return Patient{}, ErrChannelNotConfigured
	}
	segments, hl7Err := a.hl7.GetPatient(ctx, patientID)
	if hl7Err != nil {
		return Patient{}, hl7Err
	}
	return patientFromPID(patientID, segments), nil
}

// SyncReferral pushes a referral to both channels. A failed or missing
// channel never prevents the other from being attempted; the per-channel
// results come back in the outcome.
func (a *Adapter) SyncReferral(ctx context.Context, ref ReferralSync) SyncOutcome {
	var out SyncOutcome

	if a.fhir == nil {
		out.FHIRErr = ErrChannelNotConfigured
	} else {
		_, out.FHIRErr = a.fhir.CreateServiceRequest(ctx, serviceRequestResource(ref))
		if out.FHIRErr != nil {
			a.log.Warn().Err(out.FHIRErr).Str("case_id", ref.CaseID).Msg("fhir referral sync failed")
		}
	}

	if a.hl7 == nil {
		out.HL7Err = ErrChannelNotConfigured
		return out
	}
	_, out.HL7Err = a.hl7.SendReferral(ctx, ReferralMessage{
		PatientID:         ref.PatientID,
		PatientName:       ref.PatientName,
		ReferringProvider: ref.ReferringProvider,
		ReceivingProvider: ref.ReceivingProvider,
		Specialty:         ref.Specialty,
		Priority:          ref.Priority,
		Reason:            ref.Reason,
	})
	if out.HL7Err != nil {
		a.log.Warn().Err(out.HL7Err).Str("case_id", ref.CaseID).Msg("hl7 referral sync failed")
	}
	return out
}

func serviceRequestResource(ref ReferralSync) map[string]interface{} {
	return map[string]interface{}{
		"resourceType": "ServiceRequest",
		"status":       "active",
		"intent":       "order",
		"priority":     fhirPriority(ref.Priority),
		"identifier": []interface{}{
			map[string]interface{}{"system": "urn:rmd:case-id", "value": ref.CaseID},
		},
		"subject": map[string]interface{}{
			"reference": "Patient/" + ref.PatientID,
			"display":   ref.PatientName,
		},
		"requester": map[string]interface{}{"display": ref.ReferringProvider},
		"performer": []interface{}{
			map[string]interface{}{"display": ref.ReceivingProvider},
		},
		"category": []interface{}{
			map[string]interface{}{"text": ref.Specialty},
		},
		"reasonCode": []interface{}{
			map[string]interface{}{"text": ref.Reason},
		},
	}
}

func fhirPriority(priority string) string {
	switch priority {
	case "urgent":
		return "stat"
	case "high":
		return "urgent"
	default:
		return "routine"
	}
}

func patientFromFHIR(resource map[string]interface{}) Patient {
	p := Patient{
		ID:          jsonString(resource["id"]),
		DateOfBirth: jsonString(resource["birthDate"]),
		Gender:      jsonString(resource["gender"]),
	}
	if names, ok := resource["name"].([]interface{}); ok && len(names) > 0 {
		if name, ok := names[0].(map[string]interface{}); ok {
			p.LastName = jsonString(name["family"])
			if given, ok := name["given"].([]interface{}); ok && len(given) > 0 {
				p.FirstName = jsonString(given[0])
			}
		}
	}
	if telecoms, ok := resource["telecom"].([]interface{}); ok {
		for _, entry := range telecoms {
			tc, ok := entry.(map[string]interface{})
			if !ok {
				continue
			}
			switch jsonString(tc["system"]) {
			case "phone":
				if p.Contact.Phone == "" {
					p.Contact.Phone = jsonString(tc["value"])
				}
			case "email":
				if p.Contact.Email == "" {
					p.Contact.Email = jsonString(tc["value"])
				}
			}
		}
	}
	if addrs, ok := resource["address"].([]interface{}); ok && len(addrs) > 0 {
		if addr, ok := addrs[0].(map[string]interface{}); ok {
			p.Contact.Address = formatFHIRAddress(addr)
		}
	}
	return p
}

func formatFHIRAddress(addr map[string]interface{}) string {
	var parts []string
	if lines, ok := addr["line"].([]interface{}); ok {
		for _, line := range lines {
			if s := jsonString(line); s != "" {
				parts = append(parts, s)
			}
		}
	}
	for _, key := range []string{"city", "state", "postalCode"} {
		if s := jsonString(addr[key]); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, ", ")
}

// patientFromPID maps a parsed PID segment: PID-3 identifier, PID-5 name as
// LAST^FIRST, PID-7 birth date as YYYYMMDD, PID-8 sex, PID-11 address,
// PID-13 phone.
func patientFromPID(patientID string, segments map[string][]string) Patient {
	pid := segments["PID"]
	p := Patient{ID: patientID}
	if id := segmentField(pid, 3); id != "" {
		p.ID = id
	}
	name := strings.SplitN(segmentField(pid, 5), "^", 3)
	p.LastName = name[0]
	if len(name) > 1 {
		p.FirstName = name[1]
	}
	p.DateOfBirth = formatHL7Date(segmentField(pid, 7))
	p.Gender = hl7Gender(segmentField(pid, 8))
	p.Contact.Address = strings.ReplaceAll(segmentField(pid, 11), "^", ", ")
	p.Contact.Phone = segmentField(pid, 13)
	return p
}

func formatHL7Date(raw string) string {
	if len(raw) >= 8 {
		return raw[:4] + "-" + raw[4:6] + "-" + raw[6:8]
	}
	return raw
}

func hl7Gender(code string) string {
	switch strings.ToUpper(code) {
	case "M":
		return "male"
	case "F":
		return "female"
	case "O":
		return "other"
	default:
		return strings.ToLower(code)
	}
}

func jsonString(v interface{}) string {
	s, _ := v.(string)
	return s
}

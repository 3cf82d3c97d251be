package ehr

import (
	"context"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
)

// HL7Client exchanges pipe-delimited HL7v2-style messages with an external
// system over a raw TCP socket: write one message, read until the peer closes
// the connection.
//
// The message handling is deliberately minimal by contract with the small,
// controlled set of sending facilities: no delimiter escaping, no field
// repetition, no multi-message batches. Dial, read, and write all carry
// deadlines so a hung remote cannot stall a request.
type HL7Client struct {
	host       string
	port       int
	facilityID string
	timeout    time.Duration
}

func NewHL7Client(host string, port int, facilityID string, timeout time.Duration) *HL7Client {
	return &HL7Client{host: host, port: port, facilityID: facilityID, timeout: timeout}
}

// ReferralMessage carries the fields placed into an outbound REF message.
type ReferralMessage struct {
	PatientID         string
	PatientName       string
	ReferringProvider string
	ReceivingProvider string
	Specialty         string
	Priority          string
	Reason            string
}

const hl7Timestamp = "20060102150405"

// buildMessage assembles MSH, PID, PV1 and OBR segments joined by carriage
// returns, the wire form the receiving interface engine expects.
func (c *HL7Client) buildMessage(messageType, controlID string, ref ReferralMessage) string {
	ts := time.Now().UTC().Format(hl7Timestamp)
	segments := []string{
		"MSH|^~\\&|RMD|" + c.facilityID + "|EHR|FACILITY|" + ts + "||" + messageType + "|" + controlID + "|P|2.5.1",
		"PID|||" + ref.PatientID + "||" + ref.PatientName + "|||||",
		"PV1||O|||||" + ref.ReferringProvider + "|" + ref.ReceivingProvider + "|||||||||||",
		"OBR|1|||" + ref.Specialty + "|||" + ts + "||||" + ref.Priority + "||||" + ref.Reason,
	}
	return strings.Join(segments, "\r")
}

// send writes the message and reads the full response until EOF. The whole
// exchange is bounded by the client timeout and the request context.
func (c *HL7Client) send(ctx context.Context, message string) (string, error) {
	dialer := net.Dialer{Timeout: c.timeout}
	addr := net.JoinHostPort(c.host, strconv.Itoa(c.port))

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", apperr.EHR("hl7 connection failed", 0, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(c.timeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}
	conn.SetDeadline(deadline)

	if _, err := conn.Write([]byte(message)); err != nil {
		return "", apperr.EHR("hl7 write failed", 0, err)
	}
	if tcp, ok := conn.(*net.TCPConn); ok {
		// Half-close so the peer sees EOF and can reply then close.
		tcp.CloseWrite()
	}

	resp, err := io.ReadAll(conn)
	if err != nil {
		return "", apperr.EHR("hl7 read failed", 0, err)
	}
	return string(resp), nil
}

// ParseResponse splits a raw response into a map from segment tag to its
// ordered field list. Carriage return separates segments; pipes separate
// fields. A repeated segment tag keeps only the last occurrence.
func ParseResponse(raw string) map[string][]string {
	raw = strings.ReplaceAll(raw, "\r\n", "\r")
	raw = strings.ReplaceAll(raw, "\n", "\r")

	segments := make(map[string][]string)
	for _, line := range strings.Split(raw, "\r") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		parts := strings.Split(line, "|")
		tag := parts[0]
		segments[tag] = parts[1:]
	}
	return segments
}

// GetPatient issues a QRY^A19 patient query and returns the parsed response
// segments.
func (c *HL7Client) GetPatient(ctx context.Context, patientID string) (map[string][]string, error) {
	msg := c.buildMessage("QRY^A19", "MSG001", ReferralMessage{PatientID: patientID})
	resp, err := c.send(ctx, msg)
	if err != nil {
		return nil, err
	}
	segments := ParseResponse(resp)
	if _, ok := segments["PID"]; !ok {
		return nil, apperr.EHR("hl7 response missing PID segment", 0, nil)
	}
	return segments, nil
}

// SendReferral transmits a REF message and returns the raw response.
func (c *HL7Client) SendReferral(ctx context.Context, ref ReferralMessage) (string, error) {
	msg := c.buildMessage("REF^I12", "MSG001", ref)
	return c.send(ctx, msg)
}

// segmentField returns the 1-based HL7 field from a parsed segment, or ""
// when absent. ParseResponse strips the tag, so field n sits at index n-1.
func segmentField(fields []string, n int) string {
	idx := n - 1
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

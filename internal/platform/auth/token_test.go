package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func newTestIssuer() *TokenIssuer {
	return NewTokenIssuer(testSecret, time.Hour, time.Hour)
}

func TestIssueVerify_RoundTrip(t *testing.T) {
	issuer := newTestIssuer()
	userID, orgID := uuid.New(), uuid.New()

	token, err := issuer.Issue(userID, orgID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	gotUser, gotOrg, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != userID || gotOrg != orgID {
		t.Errorf("claims mismatch: got %s/%s", gotUser, gotOrg)
	}
}

func TestVerify_RejectsExpired(t *testing.T) {
	issuer := NewTokenIssuer(testSecret, -time.Minute, time.Hour)
	token, err := issuer.Issue(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := issuer.Verify(token); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized for expired token, got %v", err)
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	token, err := newTestIssuer().Issue(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	other := NewTokenIssuer("ffffffffffffffffffffffffffffffff", time.Hour, time.Hour)
	if _, _, err := other.Verify(token); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized for bad signature, got %v", err)
	}
}

func TestVerify_RejectsGarbage(t *testing.T) {
	if _, _, err := newTestIssuer().Verify("not.a.token"); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected Unauthorized, got %v", err)
	}
}

func TestResetToken_RoundTrip(t *testing.T) {
	issuer := newTestIssuer()
	userID := uuid.New()

	token, err := issuer.IssueReset(userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := issuer.VerifyReset(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != userID {
		t.Errorf("expected %s, got %s", userID, got)
	}
}

func TestResetToken_NotValidAsSession(t *testing.T) {
	issuer := newTestIssuer()
	token, err := issuer.IssueReset(uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := issuer.Verify(token); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected reset token to be rejected as session token, got %v", err)
	}
}

func TestSessionToken_NotValidAsReset(t *testing.T) {
	issuer := newTestIssuer()
	token, err := issuer.Issue(uuid.New(), uuid.New())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := issuer.VerifyReset(token); !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("expected session token to be rejected as reset token, got %v", err)
	}
}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret-passw0rd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash == "s3cret-passw0rd" {
		t.Fatal("hash equals plaintext")
	}
	if !CheckPassword(hash, "s3cret-passw0rd") {
		t.Error("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Error("expected wrong password to fail")
	}
}

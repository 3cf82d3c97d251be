package account

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/auth"
)

func newTestHandler(expose bool) (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc, expose), echo.New()
}

func postJSON(e *echo.Echo, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func withPrincipal(c echo.Context, p auth.Principal) echo.Context {
	ctx := auth.WithPrincipal(c.Request().Context(), p)
	c.SetRequest(c.Request().WithContext(ctx))
	return c
}

const registerBody = `{"organizationName":"Clinic A","name":"Ada Admin","email":"ada@clinica.example","password":"s3cret-long-enough"}`

func TestHandler_Register(t *testing.T) {
	h, e := newTestHandler(false)
	c, rec := postJSON(e, "/api/auth/register", registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var body authBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "success" || body.Token == "" {
		t.Errorf("body = %+v", body)
	}
	if body.Data.User == nil || body.Data.User.Email != "ada@clinica.example" {
		t.Errorf("user = %+v", body.Data.User)
	}
	if strings.Contains(rec.Body.String(), "passwordHash") || strings.Contains(rec.Body.String(), "s3cret") {
		t.Error("response leaks password material")
	}
}

func TestHandler_Register_Conflict(t *testing.T) {
	h, e := newTestHandler(false)
	c, _ := postJSON(e, "/api/auth/register", registerBody)
	if err := h.Register(c); err != nil {
		t.Fatalf("first register: %v", err)
	}
	c, _ = postJSON(e, "/api/auth/register", registerBody)
	err := h.Register(c)
	if !apperr.IsKind(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestHandler_Login(t *testing.T) {
	h, e := newTestHandler(false)
	c, _ := postJSON(e, "/api/auth/register", registerBody)
	h.Register(c)

	c, rec := postJSON(e, "/api/auth/login", `{"email":"ada@clinica.example","password":"s3cret-long-enough"}`)
	if err := h.Login(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_Login_BadCredentials(t *testing.T) {
	h, e := newTestHandler(false)
	c, _ := postJSON(e, "/api/auth/login", `{"email":"nobody@clinica.example","password":"whatever-pass"}`)
	err := h.Login(c)
	if !apperr.IsKind(err, apperr.KindUnauthorized) {
		t.Fatalf("err = %v, want unauthorized", err)
	}
}

func TestHandler_ForgotPassword_TokenHiddenByDefault(t *testing.T) {
	h, e := newTestHandler(false)
	c, _ := postJSON(e, "/api/auth/register", registerBody)
	h.Register(c)

	c, rec := postJSON(e, "/api/auth/forgot-password", `{"email":"ada@clinica.example"}`)
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(rec.Body.String(), "resetToken") {
		t.Error("reset token exposed without the dev flag")
	}
}

func TestHandler_ForgotPassword_ExposedWhenConfigured(t *testing.T) {
	h, e := newTestHandler(true)
	c, _ := postJSON(e, "/api/auth/register", registerBody)
	h.Register(c)

	c, rec := postJSON(e, "/api/auth/forgot-password", `{"email":"ada@clinica.example"}`)
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body struct {
		Data map[string]string `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)
	if body.Data["resetToken"] == "" {
		t.Error("expected resetToken in dev mode")
	}
}

func TestHandler_ForgotPassword_UnknownEmailLooksIdentical(t *testing.T) {
	h, e := newTestHandler(true)
	c, rec := postJSON(e, "/api/auth/forgot-password", `{"email":"nobody@clinica.example"}`)
	if err := h.ForgotPassword(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "resetToken") {
		t.Error("unknown email produced a token")
	}
}

func TestHandler_ResetPassword(t *testing.T) {
	h, e := newTestHandler(true)
	c, _ := postJSON(e, "/api/auth/register", registerBody)
	h.Register(c)

	c, rec := postJSON(e, "/api/auth/forgot-password", `{"email":"ada@clinica.example"}`)
	h.ForgotPassword(c)
	var body struct {
		Data map[string]string `json:"data"`
	}
	json.Unmarshal(rec.Body.Bytes(), &body)

	c, rec = postJSON(e, "/api/auth/reset-password/x", `{"password":"brand-new-password"}`)
	c.SetParamNames("token")
	c.SetParamValues(body.Data["resetToken"])
	if err := h.ResetPassword(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	if _, err := h.svc.Login(context.Background(), "ada@clinica.example", "brand-new-password"); err != nil {
		t.Fatalf("login after reset: %v", err)
	}
}

func TestHandler_UpdatePassword(t *testing.T) {
	h, e := newTestHandler(false)
	result, err := h.svc.Register(context.Background(), validRegister())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	c, rec := postJSON(e, "/api/auth/update-password",
		`{"currentPassword":"s3cret-long-enough","newPassword":"next-password-1"}`)
	c = withPrincipal(c, auth.Principal{UserID: result.User.ID, OrgID: result.Organization.ID, Role: RoleAdmin})
	if err := h.UpdatePassword(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_UpdateOrganization(t *testing.T) {
	h, e := newTestHandler(false)
	result, _ := h.svc.Register(context.Background(), validRegister())

	body := `{"name":"Clinic A2","address":"1 Main St","phone":"555-0100","website":"https://clinica.example"}`
	req := httptest.NewRequest(http.MethodPatch, "/api/settings/organization", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := withPrincipal(e.NewContext(req, rec), auth.Principal{UserID: result.User.ID, OrgID: result.Organization.ID, Role: RoleAdmin})

	if err := h.UpdateOrganization(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Clinic A2", "1 Main St", "555-0100", "https://clinica.example"} {
		if !strings.Contains(rec.Body.String(), want) {
			t.Errorf("body missing %q: %s", want, rec.Body.String())
		}
	}
}

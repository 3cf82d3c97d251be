package account

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/auth"
	"github.com/rmdhealth/rmd/pkg/respond"
)

type Handler struct {
	svc *Service
	// exposeResetToken returns reset tokens in the forgot-password
	// response. Development only; production responds with a generic
	// message and the token is only logged.
	exposeResetToken bool
}

func NewHandler(svc *Service, exposeResetToken bool) *Handler {
	return &Handler{svc: svc, exposeResetToken: exposeResetToken}
}

func (h *Handler) RegisterRoutes(public, authed *echo.Group) {
	public.POST("/auth/register", h.Register)
	public.POST("/auth/login", h.Login)
	public.POST("/auth/forgot-password", h.ForgotPassword)
	public.POST("/auth/reset-password/:token", h.ResetPassword)

	authed.POST("/auth/update-password", h.UpdatePassword)
	authed.GET("/settings/organization", h.GetOrganization)
	authed.PATCH("/settings/organization", h.UpdateOrganization, auth.RequireRole(RoleAdmin))
}

// authBody is the envelope for register and login: the token sits beside the
// data object, matching the client contract.
type authBody struct {
	Status string      `json:"status"`
	Token  string      `json:"token"`
	Data   authPayload `json:"data"`
}

type authPayload struct {
	User         *User         `json:"user"`
	Organization *Organization `json:"organization"`
}

func (h *Handler) Register(c echo.Context) error {
	var in RegisterInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	result, err := h.svc.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, authBody{
		Status: "success",
		Token:  result.Token,
		Data:   authPayload{User: result.User, Organization: result.Organization},
	})
}

func (h *Handler) Login(c echo.Context) error {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	result, err := h.svc.Login(c.Request().Context(), in.Email, in.Password)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authBody{
		Status: "success",
		Token:  result.Token,
		Data:   authPayload{User: result.User, Organization: result.Organization},
	})
}

func (h *Handler) ForgotPassword(c echo.Context) error {
	var in struct {
		Email string `json:"email"`
	}
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	token, err := h.svc.RequestPasswordReset(c.Request().Context(), in.Email)
	if err != nil {
		return err
	}
	if h.exposeResetToken && token != "" {
		return respond.Success(c, http.StatusOK, map[string]string{"resetToken": token})
	}
	return respond.Success(c, http.StatusOK, map[string]string{
		"message": "if the email is registered, a reset link has been sent",
	})
}

func (h *Handler) ResetPassword(c echo.Context) error {
	var in struct {
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.ResetPassword(c.Request().Context(), c.Param("token"), in.Password); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) UpdatePassword(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return apperr.Unauthorized("missing authorization header")
	}
	var in struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	if err := h.svc.ChangePassword(c.Request().Context(), p.UserID, in.CurrentPassword, in.NewPassword); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "password updated"})
}

func (h *Handler) GetOrganization(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return apperr.Unauthorized("missing authorization header")
	}
	org, err := h.svc.GetOrganization(c.Request().Context(), p.OrgID)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, org)
}

func (h *Handler) UpdateOrganization(c echo.Context) error {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return apperr.Unauthorized("missing authorization header")
	}
	var in OrganizationUpdate
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	org, err := h.svc.UpdateOrganization(c.Request().Context(), p.OrgID, in)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, org)
}

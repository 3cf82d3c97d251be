package referral

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/auth"
	"github.com/rmdhealth/rmd/internal/platform/ehr"
	"github.com/rmdhealth/rmd/pkg/pagination"
	"github.com/rmdhealth/rmd/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/referrals", h.List)
	api.POST("/referrals", h.Create)
	api.GET("/referrals/patient/:patientId", h.ListByPatient)
	api.GET("/referrals/:id", h.Get)
	api.PATCH("/referrals/:id", h.Update)
	api.DELETE("/referrals/:id", h.Delete, auth.RequireRole("admin"))
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return auth.Principal{}, apperr.Unauthorized("missing authorization header")
	}
	return p, nil
}

// createBody carries the referral plus the per-channel sync outcome; ehrSync
// is absent when no EHR is configured.
type createBody struct {
	Referral *Referral                    `json:"referral"`
	EHRSync  map[string]ehr.ChannelStatus `json:"ehrSync,omitempty"`
}

func (h *Handler) Create(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in CreateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	ref, sync, err := h.svc.Create(c.Request().Context(), p.OrgID, in)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusCreated, createBody{Referral: ref, EHRSync: sync})
}

func (h *Handler) Get(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NotFound("referral")
	}
	ref, err := h.svc.Get(c.Request().Context(), p.OrgID, id)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, ref)
}

func (h *Handler) List(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pg := pagination.FromContext(c)
	items, err := h.svc.List(c.Request().Context(), p.OrgID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, items)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	patientID, err := uuid.Parse(c.Param("patientId"))
	if err != nil {
		return apperr.NotFound("patient")
	}
	pg := pagination.FromContext(c)
	items, err := h.svc.ListByPatient(c.Request().Context(), p.OrgID, patientID, pg.Limit, pg.Offset)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, items)
}

func (h *Handler) Update(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NotFound("referral")
	}
	var in UpdateInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	ref, err := h.svc.Update(c.Request().Context(), p.OrgID, id, in)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, ref)
}

func (h *Handler) Delete(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return apperr.NotFound("referral")
	}
	if err := h.svc.Delete(c.Request().Context(), p.OrgID, id); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "referral deleted"})
}

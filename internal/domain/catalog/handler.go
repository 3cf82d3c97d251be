package catalog

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/rmdhealth/rmd/internal/platform/apperr"
	"github.com/rmdhealth/rmd/internal/platform/auth"
	"github.com/rmdhealth/rmd/pkg/respond"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	admin := auth.RequireRole("admin")

	api.GET("/settings/locations", h.ListLocations)
	api.POST("/settings/locations", h.CreateLocation, admin)
	api.GET("/settings/locations/:id", h.GetLocation)
	api.PATCH("/settings/locations/:id", h.UpdateLocation, admin)
	api.DELETE("/settings/locations/:id", h.DeleteLocation, admin)
	api.GET("/settings/locations/:id/services", h.ListLocationServices)
	api.POST("/settings/locations/:id/services/:serviceId", h.AddLocationService, admin)
	api.DELETE("/settings/locations/:id/services/:serviceId", h.RemoveLocationService, admin)

	api.GET("/settings/providers", h.ListProviders)
	api.POST("/settings/providers", h.CreateProvider, admin)
	api.GET("/settings/providers/:id", h.GetProvider)
	api.PATCH("/settings/providers/:id", h.UpdateProvider, admin)
	api.DELETE("/settings/providers/:id", h.DeleteProvider, admin)
	api.GET("/settings/providers/:id/locations", h.ListProviderLocations)
	api.POST("/settings/providers/:id/locations/:locationId", h.AddProviderLocation, admin)
	api.DELETE("/settings/providers/:id/locations/:locationId", h.RemoveProviderLocation, admin)
	api.GET("/settings/providers/:id/services", h.ListProviderServices)
	api.POST("/settings/providers/:id/services/:serviceId", h.AddProviderService, admin)
	api.DELETE("/settings/providers/:id/services/:serviceId", h.RemoveProviderService, admin)

	api.GET("/settings/specialties", h.ListServices)
	api.POST("/settings/specialties", h.CreateService, admin)
	api.GET("/settings/specialties/:id", h.GetService)
	api.PATCH("/settings/specialties/:id", h.UpdateService, admin)
	api.DELETE("/settings/specialties/:id", h.DeleteService, admin)
}

func principal(c echo.Context) (auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c.Request().Context())
	if !ok {
		return auth.Principal{}, apperr.Unauthorized("missing authorization header")
	}
	return p, nil
}

func pathID(c echo.Context, name, resource string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		return uuid.Nil, apperr.NotFound(resource)
	}
	return id, nil
}

// -- Locations --

func (h *Handler) CreateLocation(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in LocationInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	created, err := h.svc.CreateLocation(c.Request().Context(), p.OrgID, in)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusCreated, created)
}

func (h *Handler) GetLocation(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "location")
	if err != nil {
		return err
	}
	found, err := h.svc.GetLocation(c.Request().Context(), p.OrgID, id)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, found)
}

func (h *Handler) ListLocations(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListLocations(c.Request().Context(), p.OrgID)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, items)
}

func (h *Handler) UpdateLocation(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "location")
	if err != nil {
		return err
	}
	var in LocationInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	updated, err := h.svc.UpdateLocation(c.Request().Context(), p.OrgID, id, in)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, updated)
}

func (h *Handler) DeleteLocation(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "location")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteLocation(c.Request().Context(), p.OrgID, id); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "location deleted"})
}

func (h *Handler) ListLocationServices(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "location")
	if err != nil {
		return err
	}
	items, err := h.svc.LocationServices(c.Request().Context(), p.OrgID, id)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, items)
}

func (h *Handler) AddLocationService(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	locID, err := pathID(c, "id", "location")
	if err != nil {
		return err
	}
	svcID, err := pathID(c, "serviceId", "medical service")
	if err != nil {
		return err
	}
	if err := h.svc.AddServiceToLocation(c.Request().Context(), p.OrgID, locID, svcID); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "service linked to location"})
}

func (h *Handler) RemoveLocationService(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	locID, err := pathID(c, "id", "location")
	if err != nil {
		return err
	}
	svcID, err := pathID(c, "serviceId", "medical service")
	if err != nil {
		return err
	}
	if err := h.svc.RemoveServiceFromLocation(c.Request().Context(), p.OrgID, locID, svcID); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "service unlinked from location"})
}

// -- Providers --

func (h *Handler) CreateProvider(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in ProviderInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	created, err := h.svc.CreateProvider(c.Request().Context(), p.OrgID, in)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusCreated, created)
}

func (h *Handler) GetProvider(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "provider")
	if err != nil {
		return err
	}
	found, err := h.svc.GetProvider(c.Request().Context(), p.OrgID, id)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, found)
}

func (h *Handler) ListProviders(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListProviders(c.Request().Context(), p.OrgID)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, items)
}

func (h *Handler) UpdateProvider(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "provider")
	if err != nil {
		return err
	}
	var in ProviderInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	updated, err := h.svc.UpdateProvider(c.Request().Context(), p.OrgID, id, in)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, updated)
}

func (h *Handler) DeleteProvider(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "provider")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteProvider(c.Request().Context(), p.OrgID, id); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "provider deleted"})
}

func (h *Handler) ListProviderLocations(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "provider")
	if err != nil {
		return err
	}
	items, err := h.svc.ProviderLocations(c.Request().Context(), p.OrgID, id)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, items)
}

func (h *Handler) AddProviderLocation(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	provID, err := pathID(c, "id", "provider")
	if err != nil {
		return err
	}
	locID, err := pathID(c, "locationId", "location")
	if err != nil {
		return err
	}
	if err := h.svc.AddLocationToProvider(c.Request().Context(), p.OrgID, provID, locID); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "location linked to provider"})
}

func (h *Handler) RemoveProviderLocation(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	provID, err := pathID(c, "id", "provider")
	if err != nil {
		return err
	}
	locID, err := pathID(c, "locationId", "location")
	if err != nil {
		return err
	}
	if err := h.svc.RemoveLocationFromProvider(c.Request().Context(), p.OrgID, provID, locID); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "location unlinked from provider"})
}

func (h *Handler) ListProviderServices(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "provider")
	if err != nil {
		return err
	}
	items, err := h.svc.ProviderServices(c.Request().Context(), p.OrgID, id)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, items)
}

func (h *Handler) AddProviderService(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	provID, err := pathID(c, "id", "provider")
	if err != nil {
		return err
	}
	svcID, err := pathID(c, "serviceId", "medical service")
	if err != nil {
		return err
	}
	if err := h.svc.AddServiceToProvider(c.Request().Context(), p.OrgID, provID, svcID); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "service linked to provider"})
}

func (h *Handler) RemoveProviderService(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	provID, err := pathID(c, "id", "provider")
	if err != nil {
		return err
	}
	svcID, err := pathID(c, "serviceId", "medical service")
	if err != nil {
		return err
	}
	if err := h.svc.RemoveServiceFromProvider(c.Request().Context(), p.OrgID, provID, svcID); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "service unlinked from provider"})
}

// -- Medical services --

func (h *Handler) CreateService(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in MedicalServiceInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	created, err := h.svc.CreateService(c.Request().Context(), p.OrgID, in)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusCreated, created)
}

func (h *Handler) GetService(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "medical service")
	if err != nil {
		return err
	}
	found, err := h.svc.GetService(c.Request().Context(), p.OrgID, id)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, found)
}

func (h *Handler) ListServices(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	items, err := h.svc.ListServices(c.Request().Context(), p.OrgID)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, items)
}

func (h *Handler) UpdateService(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "medical service")
	if err != nil {
		return err
	}
	var in MedicalServiceInput
	if err := c.Bind(&in); err != nil {
		return apperr.Validation("invalid request body")
	}
	updated, err := h.svc.UpdateService(c.Request().Context(), p.OrgID, id, in)
	if err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, updated)
}

func (h *Handler) DeleteService(c echo.Context) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id", "medical service")
	if err != nil {
		return err
	}
	if err := h.svc.DeleteService(c.Request().Context(), p.OrgID, id); err != nil {
		return err
	}
	return respond.Success(c, http.StatusOK, map[string]string{"message": "medical service deleted"})
}

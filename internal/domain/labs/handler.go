package labs

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/domain/identity"
	"github.com/clinicore/clinicore/internal/platform/apperror"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(authed *echo.Group) {
	authed.POST("/lab-results", h.CreateLabResult, auth.RequireRole(identity.RoleHospital))
	authed.PUT("/lab-results/:id", h.UpdateLabResult, auth.RequireRole(identity.RoleHospital))
	authed.GET("/lab-results/:id", h.GetLabResult)
	authed.GET("/patients/:roleId/lab-results", h.ListByPatient)
	authed.GET("/patients/:roleId/lab-trend", h.Trend)
	authed.GET("/patients/:roleId/lab-summary", h.Summarize)
}

func panelID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid lab result id")
	}
	return id, nil
}

func (h *Handler) CreateLabResult(c echo.Context) error {
	var in CreateLabResultInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	panel, err := h.svc.CreateLabResult(c.Request().Context(), in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, panel)
}

func (h *Handler) UpdateLabResult(c echo.Context) error {
	id, err := panelID(c)
	if err != nil {
		return err
	}

	var in CreateLabResultInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	panel, err := h.svc.UpdateLabResult(c.Request().Context(), id, in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, panel)
}

func (h *Handler) GetLabResult(c echo.Context) error {
	id, err := panelID(c)
	if err != nil {
		return err
	}

	panel, err := h.svc.GetLabResult(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, panel)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	params := pagination.FromContext(c)
	panels, total, err := h.svc.ListByPatient(c.Request().Context(), c.Param("roleId"), params.Limit, params.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(panels, total, params.Limit, params.Offset))
}

func (h *Handler) Trend(c echo.Context) error {
	result, err := h.svc.Trend(c.Request().Context(), c.Param("roleId"), c.QueryParam("testName"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, result)
}

func (h *Handler) Summarize(c echo.Context) error {
	summary, err := h.svc.Summarize(c.Request().Context(), c.Param("roleId"), c.QueryParam("testName"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, summary)
}

package prediction

import (
	"net/http"

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
	authed.GET("/patients/:roleId/dashboard", h.Dashboard)
	authed.POST("/patients/:roleId/predictions", h.Generate, auth.RequireRole(identity.RoleDoctor, identity.RolePatient))
	authed.GET("/patients/:roleId/predictions", h.History)
}

func (h *Handler) Dashboard(c echo.Context) error {
	view, err := h.svc.Dashboard(c.Request().Context(), c.Param("roleId"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, view)
}

func (h *Handler) Generate(c echo.Context) error {
	snapshot, err := h.svc.Generate(c.Request().Context(), c.Param("roleId"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, snapshot)
}

func (h *Handler) History(c echo.Context) error {
	params := pagination.FromContext(c)
	preds, total, err := h.svc.History(c.Request().Context(), c.Param("roleId"), params.Limit, params.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(preds, total, params.Limit, params.Offset))
}

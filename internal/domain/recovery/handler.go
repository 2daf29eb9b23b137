package recovery

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/apperror"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/auth/password/request", h.RequestReset)
	api.POST("/auth/password/verify", h.VerifyReset)
	api.POST("/auth/password/reset", h.CompleteReset)
}

func (h *Handler) RequestReset(c echo.Context) error {
	var in struct {
		RoleID string `json:"roleId"`
		Role   string `json:"role"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	code, err := h.svc.RequestReset(c.Request().Context(), in.RoleID, in.Role)
	if err != nil {
		return apperror.ToHTTP(err)
	}

	// Delivery of the code (mail/SMS) is an out-of-band concern; the
	// code is returned to the delivery layer here.
	return c.JSON(http.StatusOK, echo.Map{"code": code})
}

func (h *Handler) VerifyReset(c echo.Context) error {
	var in struct {
		RoleID string `json:"roleId"`
		Role   string `json:"role"`
		Code   string `json:"code"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ok, err := h.svc.VerifyReset(c.Request().Context(), in.RoleID, in.Role, in.Code)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"valid": ok})
}

func (h *Handler) CompleteReset(c echo.Context) error {
	var in struct {
		RoleID      string `json:"roleId"`
		Role        string `json:"role"`
		Code        string `json:"code"`
		NewPassword string `json:"newPassword"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ok, err := h.svc.VerifyReset(c.Request().Context(), in.RoleID, in.Role, in.Code)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	if !ok {
		return apperror.ToHTTP(apperror.New(apperror.KindInvalidCredential, "invalid or expired reset code"))
	}

	if err := h.svc.CompleteReset(c.Request().Context(), in.RoleID, in.Role, in.NewPassword); err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password updated"})
}

package identity

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clinicore/clinicore/internal/platform/apperror"
	"github.com/clinicore/clinicore/internal/platform/auth"
	"github.com/clinicore/clinicore/pkg/pagination"
)

type Handler struct {
	svc    *Service
	tokens *auth.TokenIssuer
}

func NewHandler(svc *Service, tokens *auth.TokenIssuer) *Handler {
	return &Handler{svc: svc, tokens: tokens}
}

func (h *Handler) RegisterRoutes(api *echo.Group, authed *echo.Group) {
	api.POST("/auth/register/patient", h.RegisterPatient)
	api.POST("/auth/register/hospital", h.RegisterHospital)
	api.POST("/auth/register/doctor", h.RegisterDoctor)
	api.POST("/auth/login", h.Login)

	authed.GET("/patients", h.ListPatients, auth.RequireRole(RoleDoctor, RoleHospital))
	authed.GET("/patients/:roleId", h.GetPatient)
	authed.PUT("/patients/:roleId", h.UpdatePatient, auth.RequireRole(RolePatient, RoleHospital))
	authed.GET("/hospitals", h.ListHospitals)
	authed.GET("/hospitals/:roleId", h.GetHospital)
	authed.GET("/hospitals/:roleId/doctors", h.ListDoctorsByHospital)
	authed.GET("/doctors/:roleId", h.GetDoctor)
}

func (h *Handler) RegisterPatient(c echo.Context) error {
	var in struct {
		RoleID   string `json:"roleId"`
		Password string `json:"password"`
		Patient
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.RegisterPatient(c.Request().Context(), RegisterPatientInput{
		RoleID:   in.RoleID,
		Password: in.Password,
		Patient:  in.Patient,
	})
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) RegisterHospital(c echo.Context) error {
	var in struct {
		RoleID   string `json:"roleId"`
		Password string `json:"password"`
		Hospital
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	hosp, err := h.svc.RegisterHospital(c.Request().Context(), RegisterHospitalInput{
		RoleID:   in.RoleID,
		Password: in.Password,
		Hospital: in.Hospital,
	})
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, hosp)
}

func (h *Handler) RegisterDoctor(c echo.Context) error {
	var in struct {
		RoleID   string `json:"roleId"`
		Password string `json:"password"`
		Doctor
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	d, err := h.svc.RegisterDoctor(c.Request().Context(), RegisterDoctorInput{
		RoleID:   in.RoleID,
		Password: in.Password,
		Doctor:   in.Doctor,
	})
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, d)
}

func (h *Handler) Login(c echo.Context) error {
	var in struct {
		RoleID   string `json:"roleId"`
		Role     string `json:"role"`
		Password string `json:"password"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	u, err := h.svc.Authenticate(c.Request().Context(), in.RoleID, in.Role, in.Password)
	if err != nil {
		return apperror.ToHTTP(err)
	}

	token, err := h.tokens.Issue(u.RoleID, u.Role)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "issue token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"token":  token,
		"roleId": u.RoleID,
		"role":   u.Role,
	})
}

func (h *Handler) GetPatient(c echo.Context) error {
	p, err := h.svc.GetPatient(c.Request().Context(), c.Param("roleId"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	var patch Patient
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	p, err := h.svc.UpdatePatient(c.Request().Context(), c.Param("roleId"), patch)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) ListPatients(c echo.Context) error {
	params := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(patients, total, params.Limit, params.Offset))
}

func (h *Handler) GetHospital(c echo.Context) error {
	hosp, err := h.svc.GetHospital(c.Request().Context(), c.Param("roleId"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, hosp)
}

func (h *Handler) ListHospitals(c echo.Context) error {
	params := pagination.FromContext(c)
	hospitals, total, err := h.svc.ListHospitals(c.Request().Context(), params.Limit, params.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(hospitals, total, params.Limit, params.Offset))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	d, err := h.svc.GetDoctor(c.Request().Context(), c.Param("roleId"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, d)
}

func (h *Handler) ListDoctorsByHospital(c echo.Context) error {
	params := pagination.FromContext(c)
	doctors, total, err := h.svc.ListDoctorsByHospital(c.Request().Context(), c.Param("roleId"), params.Limit, params.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(doctors, total, params.Limit, params.Offset))
}

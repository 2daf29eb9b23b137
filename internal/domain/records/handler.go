package records

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
	authed.POST("/records", h.CreateRecord, auth.RequireRole(identity.RoleHospital))
	authed.PUT("/records/:id", h.UpdateRecord, auth.RequireRole(identity.RoleHospital))
	authed.GET("/records/:id", h.GetRecord)
	authed.GET("/patients/:roleId/records", h.ListByPatient)
	authed.GET("/patients/:roleId/records/history", h.History)
	authed.POST("/records/:id/notes", h.AddNote, auth.RequireRole(identity.RoleDoctor))
	authed.GET("/records/:id/notes", h.ListNotes)
	authed.GET("/records/:id/summary", h.Summarize, auth.RequireRole(identity.RoleDoctor, identity.RoleHospital))
}

func recordID(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, echo.NewHTTPError(http.StatusBadRequest, "invalid record id")
	}
	return id, nil
}

func (h *Handler) CreateRecord(c echo.Context) error {
	var in CreateRecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.svc.CreateRecord(c.Request().Context(), in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, rec)
}

func (h *Handler) UpdateRecord(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	var in UpdateRecordInput
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	rec, err := h.svc.UpdateRecord(c.Request().Context(), id, in)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) GetRecord(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	rec, err := h.svc.GetRecord(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, rec)
}

func (h *Handler) ListByPatient(c echo.Context) error {
	params := pagination.FromContext(c)
	recs, total, err := h.svc.ListByPatient(c.Request().Context(), c.Param("roleId"), params.Limit, params.Offset)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(recs, total, params.Limit, params.Offset))
}

func (h *Handler) History(c echo.Context) error {
	recs, err := h.svc.History(c.Request().Context(), c.Param("roleId"))
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, recs)
}

func (h *Handler) AddNote(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	var in struct {
		Note string `json:"note"`
	}
	if err := c.Bind(&in); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	doctorID := auth.SubjectFromContext(c.Request().Context())
	note, err := h.svc.AddNote(c.Request().Context(), id, doctorID, in.Note)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusCreated, note)
}

func (h *Handler) ListNotes(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	notes, err := h.svc.ListNotes(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, notes)
}

func (h *Handler) Summarize(c echo.Context) error {
	id, err := recordID(c)
	if err != nil {
		return err
	}

	summary, err := h.svc.Summarize(c.Request().Context(), id)
	if err != nil {
		return apperror.ToHTTP(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"summary": summary})
}

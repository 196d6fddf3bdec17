package admission

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/internal/platform/realtime"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc    *Service
	events realtime.EventPublisher
}

func NewHandler(svc *Service, events realtime.EventPublisher) *Handler {
	return &Handler{svc: svc, events: events}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "doctor", "nurse", "receptionist"))
	read.GET("/admission-requests", h.ListRequests)
	read.GET("/admission-requests/:id", h.GetRequest)
	read.GET("/admissions", h.ListActive)
	read.GET("/admissions/:id", h.GetAdmission)
	read.GET("/patients/:id/admissions", h.ListByPatient)

	api.POST("/admission-requests", h.CreateRequest, auth.RequireRole("admin", "doctor", "receptionist"))
	api.PUT("/admission-requests/:id/status", h.SetStatus, auth.RequireRole("admin", "receptionist"))
	api.POST("/admission-requests/:id/allocate", h.AllocateBed, auth.RequireRole("admin", "receptionist", "nurse"))
	api.POST("/admissions/:id/discharge", h.Discharge, auth.RequireRole("admin", "doctor", "nurse"))
}

func (h *Handler) CreateRequest(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateRequest(c.Request().Context(), &req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.publish(c, Change{Entity: "admission_request", ID: req.ID})
	return c.JSON(http.StatusCreated, req)
}

func (h *Handler) GetRequest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	req, err := h.svc.GetRequest(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "admission request not found")
	}
	return c.JSON(http.StatusOK, req)
}

func (h *Handler) ListRequests(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListRequests(c.Request().Context(), c.QueryParam("status"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type setStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) SetStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body setStatusRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	req, err := h.svc.SetStatus(c.Request().Context(), id, body.Status)
	if err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.publish(c, Change{Entity: "admission_request", ID: req.ID})
	return c.JSON(http.StatusOK, req)
}

type allocateRequest struct {
	BedID uuid.UUID `json:"bed_id"`
}

func (h *Handler) AllocateBed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body allocateRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if body.BedID == uuid.Nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bed_id is required")
	}

	// Subject may be a non-UUID in dev mode; record uuid.Nil in that case.
	admittedBy, _ := uuid.Parse(auth.UserIDFromContext(c.Request().Context()))
	res, err := h.svc.AllocateBed(c.Request().Context(), id, body.BedID, admittedBy)
	if err != nil {
		switch {
		case errors.Is(err, ErrBedUnavailable):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	h.publish(c, res.Changed...)
	return c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetAdmission(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	adm, err := h.svc.GetAdmission(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "admission not found")
	}
	return c.JSON(http.StatusOK, adm)
}

func (h *Handler) ListActive(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListActive(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListByPatient(c echo.Context) error {
	patientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListByPatient(c.Request().Context(), patientID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) Discharge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	adm, changed, err := h.svc.Discharge(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, ErrInactiveAdmission) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.publish(c, changed...)
	return c.JSON(http.StatusOK, adm)
}

// publish fans entity changes out to the realtime feed. Changes to beds go
// to the beds topic so occupancy views refresh; everything else goes to the
// admissions topic.
func (h *Handler) publish(c echo.Context, changes ...Change) {
	if h.events == nil {
		return
	}
	for _, ch := range changes {
		topic := "admissions"
		if ch.Entity == "bed" {
			topic = "beds"
		}
		_ = h.events.Publish(c.Request().Context(), realtime.Event{
			Type:      "updated",
			Topic:     topic,
			Entity:    ch.Entity,
			EntityID:  ch.ID.String(),
			Timestamp: time.Now(),
		})
	}
}

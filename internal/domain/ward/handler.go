package ward

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
	read.GET("/wards", h.ListWards)
	read.GET("/wards/:id", h.GetWard)
	read.GET("/wards/:id/beds", h.ListBeds)
	read.GET("/wards/:id/occupancy", h.Occupancy)
	read.GET("/bed-types", h.ListBedTypes)
	read.GET("/bed-types/:id", h.GetBedType)
	read.GET("/beds", h.ListBedsByStatus)
	read.GET("/beds/:id", h.GetBed)

	write := api.Group("", auth.RequireRole("admin", "nurse"))
	write.POST("/wards", h.CreateWard)
	write.PUT("/wards/:id", h.UpdateWard)
	write.POST("/bed-types", h.CreateBedType)
	write.PUT("/bed-types/:id", h.UpdateBedType)
	write.POST("/beds", h.CreateBed)
	write.POST("/beds/:id/maintenance", h.ToggleMaintenance)
}

// -- Ward Handlers --

func (h *Handler) CreateWard(c echo.Context) error {
	var w Ward
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateWard(c.Request().Context(), &w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, w)
}

func (h *Handler) GetWard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	w, err := h.svc.GetWard(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "ward not found")
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) UpdateWard(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var w Ward
	if err := c.Bind(&w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	w.ID = id
	if err := h.svc.UpdateWard(c.Request().Context(), &w); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, w)
}

func (h *Handler) ListWards(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListWards(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- BedType Handlers --

func (h *Handler) CreateBedType(c echo.Context) error {
	var bt BedType
	if err := c.Bind(&bt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBedType(c.Request().Context(), &bt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, bt)
}

func (h *Handler) GetBedType(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	bt, err := h.svc.GetBedType(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "bed type not found")
	}
	return c.JSON(http.StatusOK, bt)
}

func (h *Handler) UpdateBedType(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var bt BedType
	if err := c.Bind(&bt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	bt.ID = id
	if err := h.svc.UpdateBedType(c.Request().Context(), &bt); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, bt)
}

func (h *Handler) ListBedTypes(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBedTypes(c.Request().Context(), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

// -- Bed Handlers --

func (h *Handler) CreateBed(c echo.Context) error {
	var b Bed
	if err := c.Bind(&b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateBed(c.Request().Context(), &b); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, b)
}

func (h *Handler) GetBed(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	b, err := h.svc.GetBed(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "bed not found")
	}
	return c.JSON(http.StatusOK, b)
}

func (h *Handler) ListBeds(c echo.Context) error {
	wardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid ward id")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBedsByWard(c.Request().Context(), wardID, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) ListBedsByStatus(c echo.Context) error {
	status := c.QueryParam("status")
	if status == "" {
		status = BedAvailable
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListBedsByStatus(c.Request().Context(), status, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

type maintenanceRequest struct {
	Target string `json:"target"`
}

func (h *Handler) ToggleMaintenance(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req maintenanceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	bed, err := h.svc.ToggleMaintenance(c.Request().Context(), id, req.Target)
	if err != nil {
		if errors.Is(err, ErrBedOccupied) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if h.events != nil {
		_ = h.events.Publish(c.Request().Context(), realtime.Event{
			Type:      "updated",
			Topic:     "beds",
			Entity:    "bed",
			EntityID:  bed.ID.String(),
			Timestamp: time.Now(),
		})
	}
	return c.JSON(http.StatusOK, bed)
}

func (h *Handler) Occupancy(c echo.Context) error {
	wardID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid ward id")
	}
	stats, err := h.svc.Occupancy(c.Request().Context(), wardID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, stats)
}

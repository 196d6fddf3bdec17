package settings

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/platform/auth"
	"github.com/hms/hms/pkg/pagination"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	read := api.Group("", auth.RequireRole("admin", "doctor", "nurse", "receptionist"))
	read.GET("/settings/schedule", h.GetSchedule)
	read.GET("/settings/service-items", h.ListItems)
	read.GET("/settings/service-items/:id", h.GetItem)

	admin := api.Group("", auth.RequireRole("admin"))
	admin.PUT("/settings/schedule", h.SaveSchedule)
	admin.POST("/settings/schedule/validate", h.ValidateSchedule)
	admin.POST("/settings/service-items", h.CreateItem)
	admin.PUT("/settings/service-items/:id", h.UpdateItem)
}

func (h *Handler) GetSchedule(c echo.Context) error {
	sched, err := h.svc.GetSchedule(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sched)
}

type validationResponse struct {
	Valid      bool     `json:"valid"`
	Violations []string `json:"violations"`
}

func (h *Handler) ValidateSchedule(c echo.Context) error {
	var sched Schedule
	if err := c.Bind(&sched); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	violations := h.svc.ValidateSchedule(&sched)
	return c.JSON(http.StatusOK, validationResponse{
		Valid:      len(violations) == 0,
		Violations: violations,
	})
}

func (h *Handler) SaveSchedule(c echo.Context) error {
	var sched Schedule
	if err := c.Bind(&sched); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	violations, err := h.svc.SaveSchedule(c.Request().Context(), &sched)
	if err != nil {
		if errors.Is(err, ErrInvalidSchedule) {
			return c.JSON(http.StatusUnprocessableEntity, validationResponse{
				Valid:      false,
				Violations: violations,
			})
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sched)
}

func (h *Handler) CreateItem(c echo.Context) error {
	var it ServiceItem
	if err := c.Bind(&it); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := h.svc.CreateItem(c.Request().Context(), &it); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, it)
}

func (h *Handler) GetItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	it, err := h.svc.GetItem(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "service item not found")
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) UpdateItem(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var it ServiceItem
	if err := c.Bind(&it); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	it.ID = id
	if err := h.svc.UpdateItem(c.Request().Context(), &it); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, it)
}

func (h *Handler) ListItems(c echo.Context) error {
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListItems(c.Request().Context(), c.QueryParam("category"), pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

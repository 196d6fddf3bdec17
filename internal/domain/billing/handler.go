package billing

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/hms/hms/internal/domain/admission"
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
	read.GET("/admissions/:id/ledger", h.ListLedger)
	read.GET("/admissions/:id/ledger/summary", h.GetSummary)
	read.GET("/patients/:id/ledger", h.ListByPatient)

	write := api.Group("", auth.RequireRole("admin", "receptionist"))
	write.POST("/admissions/:id/bed-charges", h.PostBedCharge)
	write.POST("/admissions/:id/charges", h.AddCharge)
	write.POST("/admissions/:id/payments", h.RecordPayment)
	write.POST("/admission-requests/:id/deposit", h.RecordDeposit)
}

func (h *Handler) PostBedCharge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	posted, err := h.svc.PostBedCharge(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, admission.ErrInactiveAdmission) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if len(posted) > 0 {
		h.publishLedger(c, id)
	}
	if posted == nil {
		posted = []*Transaction{}
	}
	return c.JSON(http.StatusOK, posted)
}

func (h *Handler) AddCharge(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var item ChargeItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	txn, err := h.svc.AddCharge(c.Request().Context(), id, item)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, admission.ErrInactiveAdmission):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.publishLedger(c, id)
	return c.JSON(http.StatusCreated, txn)
}

type paymentRequest struct {
	AmountCents int64  `json:"amount_cents"`
	Description string `json:"description"`
}

func (h *Handler) RecordPayment(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body paymentRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	txn, err := h.svc.RecordPayment(c.Request().Context(), id, body.AmountCents, body.Description)
	if err != nil {
		if errors.Is(err, ErrInvalidInput) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.publishLedger(c, id)
	return c.JSON(http.StatusCreated, txn)
}

func (h *Handler) RecordDeposit(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var body paymentRequest
	if err := c.Bind(&body); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	txn, err := h.svc.RecordDeposit(c.Request().Context(), id, body.AmountCents)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, admission.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	h.publishLedger(c, id)
	return c.JSON(http.StatusCreated, txn)
}

func (h *Handler) ListLedger(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	txns, err := h.svc.ListForAdmission(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if txns == nil {
		txns = []*Transaction{}
	}
	return c.JSON(http.StatusOK, txns)
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

func (h *Handler) GetSummary(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	sum, err := h.svc.GetSummary(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, sum)
}

func (h *Handler) publishLedger(c echo.Context, entityID uuid.UUID) {
	if h.events == nil {
		return
	}
	_ = h.events.Publish(c.Request().Context(), realtime.Event{
		Type:      "updated",
		Topic:     "ledger",
		Entity:    "ledger_transaction",
		EntityID:  entityID.String(),
		Timestamp: time.Now(),
	})
}

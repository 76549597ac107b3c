package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/DJaayy/slot-booking/internal/middleware"
	"github.com/DJaayy/slot-booking/internal/model"
	"github.com/DJaayy/slot-booking/internal/repository"
	"github.com/DJaayy/slot-booking/internal/service"
	"github.com/DJaayy/slot-booking/internal/stats"
)

// BookingHandler serves the deployment calendar: the week view,
// booking and cancellation, release status updates and the
// statistics dashboard. All mutations go through the store's
// atomic ledger operations; the handler only binds, translates
// errors and fans out notifications.
type BookingHandler struct {
	Store    repository.Store
	Notifier *service.Notifier
	Cache    *middleware.Cache
	Log      *zap.Logger
}

// NewBookingHandler constructs a BookingHandler. Notifier and Cache
// may be nil.
func NewBookingHandler(store repository.Store, notifier *service.Notifier, cache *middleware.Cache, log *zap.Logger) *BookingHandler {
	if store == nil {
		panic("nil store passed to NewBookingHandler")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &BookingHandler{Store: store, Notifier: notifier, Cache: cache, Log: log}
}

// GetSlots handles GET /api/slots?date=D. It returns the slots of
// the Monday-start week containing D (today when omitted), grouped
// by "2006-01-02" day keys, each slot carrying its release when
// booked.
func (h *BookingHandler) GetSlots(c echo.Context) error {
	date := time.Now().UTC()
	if q := c.QueryParam("date"); q != "" {
		parsed, err := time.Parse("2006-01-02", q)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
		}
		date = parsed
	}
	slots, err := h.Store.GetSlotsByWeek(c.Request().Context(), date)
	if err != nil {
		h.Log.Error("failed to list slots", zap.Error(err))
		return writeStoreError(c, err)
	}
	byDay := make(map[string][]model.SlotWithRelease)
	for _, s := range slots {
		day := s.Date.Format("2006-01-02")
		byDay[day] = append(byDay[day], s)
	}
	return c.JSON(http.StatusOK, byDay)
}

// GetReleases handles GET /api/releases. It returns all upcoming
// releases, each joined with its slot.
func (h *BookingHandler) GetReleases(c echo.Context) error {
	releases, err := h.Store.GetUpcomingReleases(c.Request().Context())
	if err != nil {
		h.Log.Error("failed to list releases", zap.Error(err))
		return writeStoreError(c, err)
	}
	if releases == nil {
		releases = []model.ReleaseWithSlot{}
	}
	return c.JSON(http.StatusOK, releases)
}

// BookSlot handles POST /api/slots/book. On success it responds 201
// with the created release; otherwise 404 (slot absent), 409
// (already booked) or 400 (validation failure or past-dated slot).
func (h *BookingHandler) BookSlot(c echo.Context) error {
	var req model.BookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx := c.Request().Context()
	rel, err := h.Store.Book(ctx, req, time.Now().UTC())
	if err != nil {
		return writeStoreError(c, err)
	}
	h.Log.Info("slot booked",
		zap.Uint64("slot_id", rel.SlotID),
		zap.Uint64("release_id", rel.ID),
		zap.String("team", rel.Team))
	h.Cache.Bump(ctx)
	if h.Notifier != nil {
		if slot, err := h.Store.GetSlot(ctx, rel.SlotID); err == nil {
			h.Notifier.ReleaseBooked(ctx, rel, slot)
		}
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": "Slot booked successfully",
		"release": rel,
	})
}

// CancelBooking handles DELETE /api/releases/:id. It removes the
// release and frees its slot, responding 200 on success and 404
// when the release does not exist.
func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release id"})
	}
	ctx := c.Request().Context()
	if err := h.Store.Cancel(ctx, id); err != nil {
		return writeStoreError(c, err)
	}
	h.Log.Info("booking canceled", zap.Uint64("release_id", id))
	h.Cache.Bump(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "Booking canceled successfully"})
}

// statusUpdateRequest is the body of PATCH /api/releases/:id/status.
type statusUpdateRequest struct {
	Status   model.ReleaseStatus `json:"status"`
	Comments string              `json:"comments"`
}

// UpdateReleaseStatus handles PATCH /api/releases/:id/status. Any of
// the five known statuses may be set, including pending again;
// status history is not modeled. Only status and comments change.
func (h *BookingHandler) UpdateReleaseStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid release id"})
	}
	var req statusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if !model.ValidStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown status"})
	}
	ctx := c.Request().Context()
	rel, err := h.Store.UpdateReleaseStatus(ctx, id, req.Status, req.Comments)
	if err != nil {
		return writeStoreError(c, err)
	}
	h.Log.Info("release status updated",
		zap.Uint64("release_id", id),
		zap.String("status", string(req.Status)))
	h.Cache.Bump(ctx)
	if h.Notifier != nil {
		h.Notifier.StatusChanged(ctx, rel)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Release status updated successfully",
		"release": rel,
	})
}

// GetStats handles GET /api/stats. It computes the aggregate view
// from a snapshot of slots and releases.
func (h *BookingHandler) GetStats(c echo.Context) error {
	ctx := c.Request().Context()
	slots, err := h.Store.GetSlots(ctx)
	if err != nil {
		h.Log.Error("failed to load slots for stats", zap.Error(err))
		return writeStoreError(c, err)
	}
	releases, err := h.Store.GetReleases(ctx)
	if err != nil {
		h.Log.Error("failed to load releases for stats", zap.Error(err))
		return writeStoreError(c, err)
	}
	return c.JSON(http.StatusOK, stats.Compute(slots, releases, time.Now().UTC()))
}

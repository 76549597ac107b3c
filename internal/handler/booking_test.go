package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/DJaayy/slot-booking/internal/handler"
	"github.com/DJaayy/slot-booking/internal/model"
	"github.com/DJaayy/slot-booking/internal/repository"
	"github.com/DJaayy/slot-booking/internal/router"
	"github.com/DJaayy/slot-booking/internal/utils"
)

const testSecret = "unit-test-secret"

// env wires the full route table over an in-memory store, the same
// way main does minus Redis and the queue.
type env struct {
	e     *echo.Echo
	store *repository.MemoryStore
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := repository.NewMemoryStore(nil)
	e := echo.New()
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(store, testSecret, 15, 4, nil), testSecret)
	router.RegisterBooking(e, handler.NewBookingHandler(store, nil, nil, nil), testSecret, nil, nil)
	router.RegisterTemplates(e, handler.NewTemplateHandler(store, nil, nil), testSecret)
	return &env{e: e, store: store}
}

func (v *env) token(t *testing.T, role string) string {
	t.Helper()
	tok, err := utils.NewAccessToken(testSecret, 1, role, 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	return tok.Token
}

func (v *env) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		rd = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	v.e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, into any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), into); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// seedSlot creates a slot n days from now, returning its id.
func (v *env) seedSlot(t *testing.T, daysAhead, ordinal int) uint64 {
	t.Helper()
	slot := model.Slot{
		Date:       time.Now().UTC().AddDate(0, 0, daysAhead),
		Time:       fmt.Sprintf("Slot %d", ordinal),
		TimeDetail: "09:00 AM - 11:00 AM IST",
	}
	if _, err := v.store.CreateSlot(context.Background(), &slot); err != nil {
		t.Fatalf("CreateSlot: %v", err)
	}
	return slot.ID
}

func bookBody(slotID uint64) map[string]any {
	return map[string]any{
		"slotId":      slotID,
		"releaseName": "ledger-api",
		"version":     "v1.2.0",
		"team":        "Backend Team",
		"releaseType": "feature",
		"description": "weekly ship",
	}
}

func TestHealthz(t *testing.T) {
	v := newEnv(t)
	rec := v.do(t, http.MethodGet, "/healthz", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /healthz = %d, want 200", rec.Code)
	}
}

func TestGetSlotsGroupsByDay(t *testing.T) {
	v := newEnv(t)
	// Two slots on one day of a far-future week, one slot the week
	// after; the week view must only return the requested week.
	base := time.Now().UTC().AddDate(0, 0, 21)
	monday, _ := repository.WeekOf(base)
	mk := func(date time.Time, ordinal int) {
		slot := model.Slot{Date: date, Time: fmt.Sprintf("Slot %d", ordinal)}
		if _, err := v.store.CreateSlot(context.Background(), &slot); err != nil {
			t.Fatalf("CreateSlot: %v", err)
		}
	}
	mk(monday, 1)
	mk(monday, 2)
	mk(monday.AddDate(0, 0, 7), 1)

	rec := v.do(t, http.MethodGet, "/api/slots?date="+monday.Format("2006-01-02"), "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/slots = %d, body %s", rec.Code, rec.Body.String())
	}
	var byDay map[string][]model.SlotWithRelease
	decode(t, rec, &byDay)
	if got := len(byDay[monday.Format("2006-01-02")]); got != 2 {
		t.Errorf("monday has %d slots, want 2", got)
	}
	if _, ok := byDay[monday.AddDate(0, 0, 7).Format("2006-01-02")]; ok {
		t.Errorf("week view leaked the following week")
	}
}

func TestGetSlotsBadDate(t *testing.T) {
	v := newEnv(t)
	rec := v.do(t, http.MethodGet, "/api/slots?date=next-tuesday", "", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("GET /api/slots?date=next-tuesday = %d, want 400", rec.Code)
	}
}

func TestBookSlot(t *testing.T) {
	v := newEnv(t)
	tok := v.token(t, "MEMBER")
	slotID := v.seedSlot(t, 7, 1)

	rec := v.do(t, http.MethodPost, "/api/slots/book", tok, bookBody(slotID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("book = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Message string        `json:"message"`
		Release model.Release `json:"release"`
	}
	decode(t, rec, &resp)
	if resp.Message != "Slot booked successfully" {
		t.Errorf("message = %q", resp.Message)
	}
	if resp.Release.SlotID != slotID || resp.Release.Status != model.StatusPending {
		t.Errorf("release = %+v", resp.Release)
	}

	// The slot now shows up booked with its release in the week view.
	slot, err := v.store.GetSlot(context.Background(), slotID)
	if err != nil {
		t.Fatalf("GetSlot: %v", err)
	}
	if !slot.Booked {
		t.Errorf("slot not booked after 201")
	}

	// Same slot again conflicts.
	rec = v.do(t, http.MethodPost, "/api/slots/book", tok, bookBody(slotID))
	if rec.Code != http.StatusConflict {
		t.Fatalf("double book = %d, want 409", rec.Code)
	}
}

func TestBookSlotErrors(t *testing.T) {
	v := newEnv(t)
	tok := v.token(t, "MEMBER")
	slotID := v.seedSlot(t, 7, 1)

	cases := []struct {
		name string
		body map[string]any
		want int
	}{
		{"unknown slot", bookBody(987654), http.StatusNotFound},
		{"missing team", func() map[string]any { b := bookBody(slotID); b["team"] = ""; return b }(), http.StatusBadRequest},
		{"unknown type", func() map[string]any { b := bookBody(slotID); b["releaseType"] = "hotfix"; return b }(), http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := v.do(t, http.MethodPost, "/api/slots/book", tok, tc.body)
			if rec.Code != tc.want {
				t.Fatalf("book = %d, want %d, body %s", rec.Code, tc.want, rec.Body.String())
			}
		})
	}
	// All attempts failed, slot stays free.
	slot, _ := v.store.GetSlot(context.Background(), slotID)
	if slot.Booked {
		t.Errorf("slot booked by a rejected request")
	}
}

func TestBookRequiresToken(t *testing.T) {
	v := newEnv(t)
	slotID := v.seedSlot(t, 7, 1)

	if rec := v.do(t, http.MethodPost, "/api/slots/book", "", bookBody(slotID)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", rec.Code)
	}
	if rec := v.do(t, http.MethodPost, "/api/slots/book", "not-a-jwt", bookBody(slotID)); rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token = %d, want 401", rec.Code)
	}
}

func TestCancelBooking(t *testing.T) {
	v := newEnv(t)
	tok := v.token(t, "MEMBER")
	slotID := v.seedSlot(t, 7, 1)

	rec := v.do(t, http.MethodPost, "/api/slots/book", tok, bookBody(slotID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("book = %d", rec.Code)
	}
	var resp struct {
		Release model.Release `json:"release"`
	}
	decode(t, rec, &resp)

	path := fmt.Sprintf("/api/releases/%d", resp.Release.ID)
	if rec = v.do(t, http.MethodDelete, path, tok, nil); rec.Code != http.StatusOK {
		t.Fatalf("cancel = %d, body %s", rec.Code, rec.Body.String())
	}
	slot, _ := v.store.GetSlot(context.Background(), slotID)
	if slot.Booked || slot.ReleaseID != nil {
		t.Errorf("slot not freed after cancel: %+v", slot)
	}
	if rec = v.do(t, http.MethodDelete, path, tok, nil); rec.Code != http.StatusNotFound {
		t.Fatalf("second cancel = %d, want 404", rec.Code)
	}
}

func TestUpdateReleaseStatus(t *testing.T) {
	v := newEnv(t)
	tok := v.token(t, "MEMBER")
	slotID := v.seedSlot(t, 7, 1)

	rec := v.do(t, http.MethodPost, "/api/slots/book", tok, bookBody(slotID))
	var booked struct {
		Release model.Release `json:"release"`
	}
	decode(t, rec, &booked)
	path := fmt.Sprintf("/api/releases/%d/status", booked.Release.ID)

	rec = v.do(t, http.MethodPatch, path, tok, map[string]string{"status": "released", "comments": "clean rollout"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status update = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Release model.Release `json:"release"`
	}
	decode(t, rec, &resp)
	if resp.Release.Status != model.StatusReleased || resp.Release.Comments != "clean rollout" {
		t.Errorf("release = %+v", resp.Release)
	}

	if rec = v.do(t, http.MethodPatch, path, tok, map[string]string{"status": "done"}); rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown status = %d, want 400", rec.Code)
	}
	if rec = v.do(t, http.MethodPatch, "/api/releases/999/status", tok, map[string]string{"status": "skipped"}); rec.Code != http.StatusNotFound {
		t.Fatalf("missing release = %d, want 404", rec.Code)
	}
}

func TestGetStats(t *testing.T) {
	v := newEnv(t)
	tok := v.token(t, "MEMBER")
	v.seedSlot(t, 14, 1)
	slotID := v.seedSlot(t, 14, 2)
	if rec := v.do(t, http.MethodPost, "/api/slots/book", tok, bookBody(slotID)); rec.Code != http.StatusCreated {
		t.Fatalf("book = %d", rec.Code)
	}

	rec := v.do(t, http.MethodGet, "/api/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Stats struct {
			Total     int `json:"total"`
			Available int `json:"available"`
		} `json:"stats"`
		ByType map[string]int `json:"byType"`
		ByTeam map[string]int `json:"byTeam"`
	}
	decode(t, rec, &resp)
	if resp.Stats.Total != 1 || resp.Stats.Available != 1 {
		t.Errorf("stats = %+v, want 1 total / 1 available", resp.Stats)
	}
	if resp.ByType["feature"] != 1 || resp.ByTeam["Backend Team"] != 1 {
		t.Errorf("breakdowns = %v / %v", resp.ByType, resp.ByTeam)
	}
}

func TestGetReleasesEmpty(t *testing.T) {
	v := newEnv(t)
	rec := v.do(t, http.MethodGet, "/api/releases", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("releases = %d", rec.Code)
	}
	var releases []model.ReleaseWithSlot
	decode(t, rec, &releases)
	if releases == nil || len(releases) != 0 {
		t.Errorf("empty store must answer [], got %s", rec.Body.String())
	}
}

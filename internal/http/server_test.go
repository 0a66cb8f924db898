package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"habitlog/internal/core"
	"habitlog/internal/store"
)

type fakePublisher struct {
	published []core.Collection
	err       error
}

func (f *fakePublisher) PublishCollectionSync(_ context.Context, c core.Collection) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, c)
	return nil
}

var testDaily = []core.Activity{
	{ID: "reading", Name: "Reading", Category: "Study"},
	{ID: "exercise", Name: "Exercise", Category: "Life", Extra: core.ExtraMinutes},
}

var testWeekly = []core.Activity{
	{ID: "housework", Name: "Housework"},
}

func newTestServer(t *testing.T) (*Server, store.Store, *fakePublisher) {
	t.Helper()
	st := store.NewMemoryStore()
	pub := &fakePublisher{}
	return NewServer(":0", st, pub, testDaily, testWeekly), st, pub
}

func get(srv *Server, path string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func postForm(srv *Server, path string, form url.Values) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	srv.Handler.ServeHTTP(rr, req)
	return rr
}

func TestDashboardAndHealth(t *testing.T) {
	srv, _, _ := newTestServer(t)

	rr := get(srv, "/")
	if rr.Code != http.StatusOK {
		t.Fatalf("dashboard status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "Habit Log") {
		t.Fatalf("dashboard body missing heading")
	}

	rr = get(srv, "/healthz")
	if rr.Code != http.StatusOK {
		t.Fatalf("healthz status=%d", rr.Code)
	}

	rr = get(srv, "/no-such-page")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rr.Code)
	}
}

func TestDailyFormRendersExistingRecord(t *testing.T) {
	srv, st, _ := newTestServer(t)
	seed := map[string]core.Record{
		"2023-03-22": {"reading": true, "exercise": true, "exercise_minutes": 45.0, "weight": 70.5},
	}
	if err := store.SaveDaily(context.Background(), st, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr := get(srv, "/daily?date=2023-03-22")
	if rr.Code != http.StatusOK {
		t.Fatalf("daily status=%d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `name="reading" checked`) {
		t.Errorf("reading checkbox not checked:\n%s", body)
	}
	if !strings.Contains(body, `name="exercise_minutes" value="45"`) {
		t.Errorf("exercise minutes value missing")
	}
	if !strings.Contains(body, `name="weight" value="70.5"`) {
		t.Errorf("weight value missing")
	}
}

func TestDailyFormRejectsMalformedDate(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rr := get(srv, "/daily?date=22-03-2023")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed date, got %d", rr.Code)
	}
}

func TestSaveDaily(t *testing.T) {
	srv, st, pub := newTestServer(t)

	rr := postForm(srv, "/daily", url.Values{
		"date":             {"2023-03-22"},
		"reading":          {"on"},
		"exercise":         {"on"},
		"exercise_minutes": {"30"},
		"weight":           {"70.5"},
		"mood":             {"8"},
		"notes":            {"good day"},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "date=2023-03-22") {
		t.Errorf("redirect location = %q", loc)
	}

	data, err := store.LoadDaily(context.Background(), st)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	rec, ok := data["2023-03-22"]
	if !ok {
		t.Fatalf("record not saved: %v", data)
	}
	if !rec.Bool("reading") || !rec.Bool("exercise") {
		t.Errorf("activity flags lost: %v", rec)
	}
	if v, _ := rec.Number("exercise_minutes"); v != 30 {
		t.Errorf("exercise_minutes = %v", v)
	}
	if v, _ := rec.Number("weight"); v != 70.5 {
		t.Errorf("weight = %v", v)
	}
	if rec.Text("notes") != "good day" {
		t.Errorf("notes = %q", rec.Text("notes"))
	}

	if len(pub.published) != 1 || pub.published[0] != core.Daily {
		t.Errorf("published = %v, want one daily event", pub.published)
	}
}

func TestSaveDailyReplacesRecordKeepsOthers(t *testing.T) {
	srv, st, _ := newTestServer(t)
	seed := map[string]core.Record{
		"2023-03-21": {"reading": true},
		"2023-03-22": {"reading": true, "weight": 71.0, "notes": "old"},
	}
	if err := store.SaveDaily(context.Background(), st, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr := postForm(srv, "/daily", url.Values{
		"date":     {"2023-03-22"},
		"exercise": {"on"},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rr.Code)
	}

	data, _ := store.LoadDaily(context.Background(), st)
	if !data["2023-03-21"].Bool("reading") {
		t.Error("unrelated record was lost")
	}
	rec := data["2023-03-22"]
	if rec.Bool("reading") {
		t.Error("stale field survived record replacement")
	}
	if _, ok := rec.Number("weight"); ok {
		t.Error("stale weight survived record replacement")
	}
	if !rec.Bool("exercise") {
		t.Error("new field missing")
	}
}

func TestSaveDailyInvalidDate(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rr := postForm(srv, "/daily", url.Values{"date": {"not-a-date"}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
}

func TestSaveDailySurvivesPublishFailure(t *testing.T) {
	st := store.NewMemoryStore()
	pub := &fakePublisher{err: errors.New("broker down")}
	srv := NewServer(":0", st, pub, testDaily, testWeekly)

	rr := postForm(srv, "/daily", url.Values{
		"date":    {"2023-03-22"},
		"reading": {"on"},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303 even when publish fails, got %d", rr.Code)
	}
	data, _ := store.LoadDaily(context.Background(), st)
	if _, ok := data["2023-03-22"]; !ok {
		t.Fatal("record not saved")
	}
}

func TestSaveWeeklyNormalizesToMonday(t *testing.T) {
	srv, st, pub := newTestServer(t)

	// 2023-03-22 is a Wednesday; the record must land under its Monday.
	rr := postForm(srv, "/weekly", url.Values{
		"week":      {"2023-03-22"},
		"housework": {"on"},
		"waist":     {"84"},
	})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d: %s", rr.Code, rr.Body.String())
	}
	if loc := rr.Header().Get("Location"); !strings.Contains(loc, "week=2023-03-20") {
		t.Errorf("redirect location = %q, want Monday key", loc)
	}

	data, _ := store.LoadWeekly(context.Background(), st)
	rec, ok := data["2023-03-20"]
	if !ok {
		t.Fatalf("record not keyed by Monday: %v", data)
	}
	if !rec.Bool("housework") {
		t.Errorf("housework flag lost: %v", rec)
	}
	if v, _ := rec.Number("waist"); v != 84 {
		t.Errorf("waist = %v", v)
	}
	if len(pub.published) != 1 || pub.published[0] != core.Weekly {
		t.Errorf("published = %v, want one weekly event", pub.published)
	}
}

func TestWeeklyFormShowsMondayForMidweekParam(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rr := get(srv, "/weekly?week=2023-03-22")
	if rr.Code != http.StatusOK {
		t.Fatalf("weekly status=%d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "2023-03-20") {
		t.Error("weekly page does not show the Monday key")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _, _ := newTestServer(t)
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/daily", nil)
	srv.Handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", rr.Code)
	}
}

func TestCalendarAPI(t *testing.T) {
	srv, st, _ := newTestServer(t)
	seed := map[string]core.Record{"2023-03-01": {"reading": true}}
	if err := store.SaveDaily(context.Background(), st, seed); err != nil {
		t.Fatalf("seed: %v", err)
	}

	rr := get(srv, "/api/calendar?year=2023&month=3")
	if rr.Code != http.StatusOK {
		t.Fatalf("calendar status=%d", rr.Code)
	}

	var resp struct {
		Year    int        `json:"year"`
		Month   int        `json:"month"`
		Weeks   [][]string `json:"weeks"`
		Tracked []string   `json:"tracked"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Year != 2023 || resp.Month != 3 {
		t.Errorf("year/month = %d/%d", resp.Year, resp.Month)
	}
	for i, row := range resp.Weeks {
		if len(row) != 7 {
			t.Errorf("week %d has %d slots", i, len(row))
		}
	}
	// March 2023 starts on a Wednesday: two leading pads, then the 1st.
	first := resp.Weeks[0]
	if first[0] != "" || first[1] != "" || first[2] != "2023-03-01" {
		t.Errorf("first row = %v", first)
	}
	if len(resp.Tracked) != 1 || resp.Tracked[0] != "2023-03-01" {
		t.Errorf("tracked = %v", resp.Tracked)
	}
}

func TestTrendsAPIs(t *testing.T) {
	srv, st, _ := newTestServer(t)
	today := core.Today()
	daily := map[string]core.Record{
		today.ISO():            {"reading": true, "weight": 70.0, "mood": 7.0},
		today.AddDays(-1).ISO(): {"exercise": true},
	}
	if err := store.SaveDaily(context.Background(), st, daily); err != nil {
		t.Fatalf("seed daily: %v", err)
	}
	monday := core.WeekStart(today)
	weekly := map[string]core.Record{
		monday.ISO(): {"housework": true, "waist": 84.0},
	}
	if err := store.SaveWeekly(context.Background(), st, weekly); err != nil {
		t.Fatalf("seed weekly: %v", err)
	}

	rr := get(srv, "/api/trends/daily")
	if rr.Code != http.StatusOK {
		t.Fatalf("daily trends status=%d", rr.Code)
	}
	var dresp struct {
		Points []struct {
			Date      string   `json:"date"`
			Weight    *float64 `json:"weight"`
			Completed int      `json:"completed"`
		} `json:"points"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &dresp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(dresp.Points) != 2 {
		t.Fatalf("points = %d, want 2", len(dresp.Points))
	}
	last := dresp.Points[len(dresp.Points)-1]
	if last.Date != today.ISO() {
		t.Errorf("last point date = %s, want %s", last.Date, today.ISO())
	}
	if last.Weight == nil || *last.Weight != 70.0 {
		t.Errorf("last point weight = %v", last.Weight)
	}
	if last.Completed != 1 {
		t.Errorf("last point completed = %d", last.Completed)
	}

	rr = get(srv, "/api/trends/weekly")
	if rr.Code != http.StatusOK {
		t.Fatalf("weekly trends status=%d", rr.Code)
	}
	var wresp struct {
		Points []struct {
			WeekStart string   `json:"week_start"`
			Waist     *float64 `json:"waist"`
		} `json:"points"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &wresp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(wresp.Points) != 1 || wresp.Points[0].WeekStart != monday.ISO() {
		t.Errorf("weekly points = %+v", wresp.Points)
	}
}

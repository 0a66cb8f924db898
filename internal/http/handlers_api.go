package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"habitlog/internal/core"
	"habitlog/internal/store"
)

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "JSON encode error", "error", err, "url", r.URL.Path)
	}
}

// handleCalendar returns the month grid plus which days carry a record.
// Out-of-month slots are empty strings so rows are always seven wide.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	year, month := parseYearMonth(r)

	daily, err := store.LoadDaily(r.Context(), s.store)
	if err != nil {
		slog.ErrorContext(r.Context(), "Daily load error", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}

	type response struct {
		Year    int        `json:"year"`
		Month   int        `json:"month"`
		Weeks   [][]string `json:"weeks"`
		Tracked []string   `json:"tracked"`
	}
	resp := response{Year: year, Month: month, Tracked: []string{}}

	for _, row := range core.MonthCalendar(year, month) {
		cells := make([]string, 0, 7)
		for _, d := range row {
			if d.IsZero() {
				cells = append(cells, "")
				continue
			}
			key := d.ISO()
			cells = append(cells, key)
			if _, ok := daily[key]; ok {
				resp.Tracked = append(resp.Tracked, key)
			}
		}
		resp.Weeks = append(resp.Weeks, cells)
	}

	writeJSON(w, r, resp)
}

type dailyPointJSON struct {
	Date      string   `json:"date"`
	Weight    *float64 `json:"weight,omitempty"`
	Calories  *float64 `json:"calories,omitempty"`
	Mood      *float64 `json:"mood,omitempty"`
	Completed int      `json:"completed"`
	Notes     string   `json:"notes,omitempty"`
}

type weeklyPointJSON struct {
	WeekStart string   `json:"week_start"`
	Waist     *float64 `json:"waist,omitempty"`
	Arm       *float64 `json:"arm,omitempty"`
	Completed int      `json:"completed"`
	Notes     string   `json:"notes,omitempty"`
}

// parseWindow reads a positive integer query parameter with a default and cap.
func parseWindow(r *http.Request, name string, def, max int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return def
	}
	if n > max {
		return max
	}
	return n
}

func (s *Server) handleDailyTrends(w http.ResponseWriter, r *http.Request) {
	days := parseWindow(r, "days", 30, 365)

	daily, err := store.LoadDaily(r.Context(), s.store)
	if err != nil {
		slog.ErrorContext(r.Context(), "Daily load error", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}

	points := core.DailyTrends(daily, s.dailyActivities, core.Today(), days, days)
	out := make([]dailyPointJSON, 0, len(points))
	for _, p := range points {
		j := dailyPointJSON{Date: p.Date.ISO(), Completed: p.Completed, Notes: p.Notes}
		if p.HasWeight {
			v := p.Weight
			j.Weight = &v
		}
		if p.HasCalories {
			v := p.Calories
			j.Calories = &v
		}
		if p.HasMood {
			v := p.Mood
			j.Mood = &v
		}
		out = append(out, j)
	}

	writeJSON(w, r, struct {
		Points []dailyPointJSON `json:"points"`
	}{Points: out})
}

func (s *Server) handleWeeklyTrends(w http.ResponseWriter, r *http.Request) {
	weeks := parseWindow(r, "weeks", 12, 104)

	weekly, err := store.LoadWeekly(r.Context(), s.store)
	if err != nil {
		slog.ErrorContext(r.Context(), "Weekly load error", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}

	points := core.WeeklyTrends(weekly, s.weeklyActivities, core.Today(), weeks, weeks*7)
	out := make([]weeklyPointJSON, 0, len(points))
	for _, p := range points {
		j := weeklyPointJSON{WeekStart: p.WeekStart.ISO(), Completed: p.Completed, Notes: p.Notes}
		if p.HasWaist {
			v := p.Waist
			j.Waist = &v
		}
		if p.HasArm {
			v := p.Arm
			j.Arm = &v
		}
		out = append(out, j)
	}

	writeJSON(w, r, struct {
		Points []weeklyPointJSON `json:"points"`
	}{Points: out})
}

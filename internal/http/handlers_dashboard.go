package http

import (
	"log/slog"
	"net/http"

	"habitlog/internal/core"
	"habitlog/internal/store"
)

// dayCell is one day of the current-week strip on the dashboard.
type dayCell struct {
	Date      string
	Weekday   string
	IsToday   bool
	Tracked   bool
	Completed int
}

type trendRow struct {
	Date      string
	Weight    string
	Calories  string
	Mood      string
	Completed int
	Notes     string
}

type weeklyRow struct {
	WeekStart string
	Waist     string
	Arm       string
	Completed int
	Notes     string
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	today := core.Today()
	monday := core.WeekStart(today)

	daily, err := store.LoadDaily(r.Context(), s.store)
	if err != nil {
		slog.ErrorContext(r.Context(), "Daily load error", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	weekly, err := store.LoadWeekly(r.Context(), s.store)
	if err != nil {
		slog.ErrorContext(r.Context(), "Weekly load error", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}

	page := struct {
		Today        string
		WeekStart    string
		Week         []dayCell
		ActivityMax  int
		DailyTrends  []trendRow
		WeeklyTrends []weeklyRow
	}{
		Today:       today.ISO(),
		WeekStart:   monday.ISO(),
		ActivityMax: len(s.dailyActivities),
	}

	for _, day := range core.WeekOverview(daily, s.dailyActivities, monday) {
		page.Week = append(page.Week, dayCell{
			Date:      day.Date.ISO(),
			Weekday:   day.Date.Time.Weekday().String()[:3],
			IsToday:   day.Date == today,
			Tracked:   day.Tracked,
			Completed: day.Completed,
		})
	}

	for _, p := range core.DailyTrends(daily, s.dailyActivities, today, 14, 30) {
		row := trendRow{
			Date:      p.Date.ISO(),
			Completed: p.Completed,
			Notes:     p.Notes,
		}
		if p.HasWeight {
			row.Weight = formatNumber(p.Weight)
		}
		if p.HasCalories {
			row.Calories = formatNumber(p.Calories)
		}
		if p.HasMood {
			row.Mood = formatNumber(p.Mood)
		}
		page.DailyTrends = append(page.DailyTrends, row)
	}

	for _, p := range core.WeeklyTrends(weekly, s.weeklyActivities, today, 8, 8*7) {
		row := weeklyRow{
			WeekStart: p.WeekStart.ISO(),
			Completed: p.Completed,
			Notes:     p.Notes,
		}
		if p.HasWaist {
			row.Waist = formatNumber(p.Waist)
		}
		if p.HasArm {
			row.Arm = formatNumber(p.Arm)
		}
		page.WeeklyTrends = append(page.WeeklyTrends, row)
	}

	if err := s.templates.ExecuteTemplate(w, "dashboard.html", page); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"habitlog/internal/core"
	applog "habitlog/internal/log"
	"habitlog/internal/store"
)

// activityInput is one checkbox row on a form page.
type activityInput struct {
	ID         string
	Name       string
	Checked    bool
	ExtraField string
	ExtraLabel string
	ExtraValue string
}

// activityGroup collects a category's rows in configuration order.
type activityGroup struct {
	Category string
	Items    []activityInput
}

func groupActivities(activities []core.Activity, rec core.Record) []activityGroup {
	var groups []activityGroup
	index := map[string]int{}
	for _, a := range activities {
		item := activityInput{
			ID:      a.ID,
			Name:    a.Name,
			Checked: rec.Bool(a.ID),
		}
		if field := a.ExtraField(); field != "" {
			item.ExtraField = field
			switch a.Extra {
			case core.ExtraMinutes:
				item.ExtraLabel = "Minutes"
			case core.ExtraWordCount:
				item.ExtraLabel = "Words"
			}
			if v, ok := rec.Number(field); ok {
				item.ExtraValue = formatNumber(v)
			}
		}

		i, ok := index[a.Category]
		if !ok {
			i = len(groups)
			index[a.Category] = i
			groups = append(groups, activityGroup{Category: a.Category})
		}
		groups[i].Items = append(groups[i].Items, item)
	}
	return groups
}

// formatNumber renders a float the way a user typed it, without a forced
// decimal part.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (s *Server) handleDaily(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderDailyForm(w, r)
	case http.MethodPost:
		s.saveDaily(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderDailyForm(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	date, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	data, err := store.LoadDaily(r.Context(), s.store)
	if err != nil {
		slog.ErrorContext(r.Context(), "Daily load error", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	rec := data[date.ISO()]

	page := struct {
		Date     string
		Weekday  string
		Tracked  bool
		Saved    bool
		Groups   []activityGroup
		Weight   string
		Calories string
		Mood     string
		Notes    string
		PrevDate string
		NextDate string
	}{
		Date:     date.ISO(),
		Weekday:  date.Time.Weekday().String(),
		Tracked:  rec != nil,
		Saved:    r.URL.Query().Get("saved") == "1",
		Groups:   groupActivities(s.dailyActivities, rec),
		Notes:    rec.Text(core.FieldNotes),
		PrevDate: date.AddDays(-1).ISO(),
		NextDate: date.AddDays(1).ISO(),
	}
	if v, ok := rec.Number(core.FieldWeight); ok {
		page.Weight = formatNumber(v)
	}
	if v, ok := rec.Number(core.FieldCalories); ok {
		page.Calories = formatNumber(v)
	}
	if v, ok := rec.Number(core.FieldMood); ok {
		page.Mood = formatNumber(v)
	}

	if err := s.templates.ExecuteTemplate(w, "daily.html", page); err != nil {
		slog.ErrorContext(r.Context(), "Daily template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) saveDaily(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	date, err := parseDateParam(r.Form.Get("date"))
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusUnprocessableEntity)
		return
	}

	rec := core.Record{}
	for _, a := range s.dailyActivities {
		rec[a.ID] = r.Form.Get(a.ID) != ""
		if field := a.ExtraField(); field != "" {
			if v, ok := parseFormNumber(r.Form.Get(field)); ok {
				rec[field] = v
			}
		}
	}
	if v, ok := parseFormNumber(r.Form.Get(core.FieldWeight)); ok {
		rec[core.FieldWeight] = v
	}
	if v, ok := parseFormNumber(r.Form.Get(core.FieldCalories)); ok {
		rec[core.FieldCalories] = v
	}
	if v, ok := parseFormNumber(r.Form.Get(core.FieldMood)); ok {
		rec[core.FieldMood] = v
	}
	if notes := sanitizeInput(r.Form.Get(core.FieldNotes)); notes != "" {
		rec[core.FieldNotes] = notes
	}

	records, err := s.replaceRecord(r.Context(), core.Daily, date.ISO(), rec)
	if err != nil {
		s.httpLog.LogError(r.Context(), "Daily save error", err,
			applog.ComponentStore, applog.OpSave,
			applog.NewFields().WithCollection(string(core.Daily), 0))
		http.Error(w, "failed to save record", http.StatusInternalServerError)
		return
	}
	s.httpLog.LogRecordSaved(r.Context(), string(core.Daily), date.ISO(), records)

	s.publishSync(r.Context(), core.Daily)
	http.Redirect(w, r, "/daily?date="+date.ISO()+"&saved=1", http.StatusSeeOther)
}

// replaceRecord swaps the record under one date key and writes the whole
// collection back, returning the collection size after the write.
func (s *Server) replaceRecord(ctx context.Context, c core.Collection, key string, rec core.Record) (int, error) {
	data, err := s.store.Load(ctx, c)
	if err != nil {
		return 0, err
	}
	data[key] = rec
	if err := s.store.Save(ctx, c, data); err != nil {
		return 0, err
	}
	return len(data), nil
}

func parseFormNumber(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

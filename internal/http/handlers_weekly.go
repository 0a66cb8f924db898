package http

import (
	"log/slog"
	"net/http"

	"habitlog/internal/core"
	applog "habitlog/internal/log"
	"habitlog/internal/store"
)

func (s *Server) handleWeekly(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.renderWeeklyForm(w, r)
	case http.MethodPost:
		s.saveWeekly(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) renderWeeklyForm(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "url", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	// Any day of the week is accepted; the record key is always its Monday.
	ref, err := parseDateParam(r.URL.Query().Get("week"))
	if err != nil {
		http.Error(w, "invalid week, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}
	monday := core.WeekStart(ref)

	data, err := store.LoadWeekly(r.Context(), s.store)
	if err != nil {
		slog.ErrorContext(r.Context(), "Weekly load error", "error", err)
		http.Error(w, "failed to load records", http.StatusInternalServerError)
		return
	}
	rec := data[monday.ISO()]

	page := struct {
		WeekStart string
		WeekEnd   string
		Tracked   bool
		Saved     bool
		Groups    []activityGroup
		Waist     string
		Arm       string
		Notes     string
		PrevWeek  string
		NextWeek  string
	}{
		WeekStart: monday.ISO(),
		WeekEnd:   core.WeekEnd(monday).ISO(),
		Tracked:   rec != nil,
		Saved:     r.URL.Query().Get("saved") == "1",
		Groups:    groupActivities(s.weeklyActivities, rec),
		Notes:     rec.Text(core.FieldNotes),
		PrevWeek:  monday.AddDays(-7).ISO(),
		NextWeek:  monday.AddDays(7).ISO(),
	}
	if v, ok := rec.Number(core.FieldWaist); ok {
		page.Waist = formatNumber(v)
	}
	if v, ok := rec.Number(core.FieldArm); ok {
		page.Arm = formatNumber(v)
	}

	if err := s.templates.ExecuteTemplate(w, "weekly.html", page); err != nil {
		slog.ErrorContext(r.Context(), "Weekly template execution failed", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (s *Server) saveWeekly(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "Parse form error", "error", err, "url", r.URL.Path)
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	ref, err := parseDateParam(r.Form.Get("week"))
	if err != nil {
		http.Error(w, "invalid week, expected YYYY-MM-DD", http.StatusUnprocessableEntity)
		return
	}
	monday := core.WeekStart(ref)

	rec := core.Record{}
	for _, a := range s.weeklyActivities {
		rec[a.ID] = r.Form.Get(a.ID) != ""
		if field := a.ExtraField(); field != "" {
			if v, ok := parseFormNumber(r.Form.Get(field)); ok {
				rec[field] = v
			}
		}
	}
	if v, ok := parseFormNumber(r.Form.Get(core.FieldWaist)); ok {
		rec[core.FieldWaist] = v
	}
	if v, ok := parseFormNumber(r.Form.Get(core.FieldArm)); ok {
		rec[core.FieldArm] = v
	}
	if notes := sanitizeInput(r.Form.Get(core.FieldNotes)); notes != "" {
		rec[core.FieldNotes] = notes
	}

	records, err := s.replaceRecord(r.Context(), core.Weekly, monday.ISO(), rec)
	if err != nil {
		s.httpLog.LogError(r.Context(), "Weekly save error", err,
			applog.ComponentStore, applog.OpSave,
			applog.NewFields().WithCollection(string(core.Weekly), 0))
		http.Error(w, "failed to save record", http.StatusInternalServerError)
		return
	}
	s.httpLog.LogRecordSaved(r.Context(), string(core.Weekly), monday.ISO(), records)

	s.publishSync(r.Context(), core.Weekly)
	http.Redirect(w, r, "/weekly?week="+monday.ISO()+"&saved=1", http.StatusSeeOther)
}

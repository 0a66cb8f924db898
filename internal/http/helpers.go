package http

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"habitlog/internal/core"
)

// parseDateParam reads a YYYY-MM-DD query or form value, falling back to
// today when absent. A present but malformed value is an error.
func parseDateParam(value string) (core.Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return core.Today(), nil
	}
	return core.ParseISO(value)
}

// parseYearMonth extracts year and month from query parameters, defaulting
// to the current month. An out-of-range month is corrected to the current one.
func parseYearMonth(r *http.Request) (year, month int) {
	now := core.Today()
	year = now.Year()
	month = now.Month()

	if v := strings.TrimSpace(r.URL.Query().Get("year")); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			year = y
		}
	}
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		if m, err := strconv.Atoi(v); err == nil {
			month = m
		}
	}
	if month < 1 || month > 12 {
		month = now.Month()
	}
	return year, month
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

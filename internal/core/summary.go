package core

import "sort"

// Well-known measurement fields written by the daily and weekly forms.
// The store itself never interprets these; they matter only to summaries
// and chart rendering.
const (
	FieldWeight   = "weight"
	FieldCalories = "calories"
	FieldMood     = "mood"
	FieldNotes    = "notes"
	FieldWaist    = "waist"
	FieldArm      = "arm"
)

// DailyPoint is one charted day in the recent-history trends.
type DailyPoint struct {
	Date        Date
	Weight      float64
	HasWeight   bool
	Calories    float64
	HasCalories bool
	Mood        float64
	HasMood     bool
	Completed   int
	Notes       string
}

// WeeklyPoint is one charted week in the weekly trends.
type WeeklyPoint struct {
	WeekStart Date
	Waist     float64
	HasWaist  bool
	Arm       float64
	HasArm    bool
	Completed int
	Notes     string
}

// DaySummary describes one day inside a week overview.
type DaySummary struct {
	Date      Date
	Tracked   bool
	Record    Record
	Completed int
}

// CompletedCount counts the activities whose checkbox field is set in r.
func CompletedCount(r Record, activities []Activity) int {
	n := 0
	for _, a := range activities {
		if r.Bool(a.ID) {
			n++
		}
	}
	return n
}

// trackedDates returns the parseable date keys of data that fall within
// windowDays of end, sorted ascending. Unparseable keys are skipped: a
// stray key in the file must not break the dashboard.
func trackedDates(data map[string]Record, end Date, windowDays int) []Date {
	var dates []Date
	for key := range data {
		d, err := ParseISO(key)
		if err != nil {
			continue
		}
		if d.After(end.Time) {
			continue
		}
		if int(end.Sub(d.Time).Hours()/24) > windowDays {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j].Time) })
	return dates
}

// DailyTrends collects chart points for the most recent tracked days:
// at most maxPoints days, no older than windowDays before end, oldest first.
func DailyTrends(data map[string]Record, activities []Activity, end Date, maxPoints, windowDays int) []DailyPoint {
	dates := trackedDates(data, end, windowDays)
	if len(dates) > maxPoints {
		dates = dates[len(dates)-maxPoints:]
	}

	points := make([]DailyPoint, 0, len(dates))
	for _, d := range dates {
		rec := data[d.ISO()]
		p := DailyPoint{
			Date:      d,
			Completed: CompletedCount(rec, activities),
			Notes:     rec.Text(FieldNotes),
		}
		p.Weight, p.HasWeight = rec.Number(FieldWeight)
		p.Calories, p.HasCalories = rec.Number(FieldCalories)
		p.Mood, p.HasMood = rec.Number(FieldMood)
		points = append(points, p)
	}
	return points
}

// WeeklyTrends collects chart points for the most recent tracked weeks,
// keyed by week-start Monday, oldest first.
func WeeklyTrends(data map[string]Record, activities []Activity, end Date, maxPoints, windowDays int) []WeeklyPoint {
	weeks := trackedDates(data, end, windowDays)
	if len(weeks) > maxPoints {
		weeks = weeks[len(weeks)-maxPoints:]
	}

	points := make([]WeeklyPoint, 0, len(weeks))
	for _, w := range weeks {
		rec := data[w.ISO()]
		p := WeeklyPoint{
			WeekStart: w,
			Completed: CompletedCount(rec, activities),
			Notes:     rec.Text(FieldNotes),
		}
		p.Waist, p.HasWaist = rec.Number(FieldWaist)
		p.Arm, p.HasArm = rec.Number(FieldArm)
		points = append(points, p)
	}
	return points
}

// WeekOverview summarizes the seven days of the week beginning at monday
// against the daily collection.
func WeekOverview(daily map[string]Record, activities []Activity, monday Date) [7]DaySummary {
	var out [7]DaySummary
	for i, d := range WeekDates(monday) {
		rec, ok := daily[d.ISO()]
		out[i] = DaySummary{Date: d, Tracked: ok, Record: rec}
		if ok {
			out[i].Completed = CompletedCount(rec, activities)
		}
	}
	return out
}

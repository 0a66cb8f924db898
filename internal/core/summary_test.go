package core

import "testing"

var testActivities = []Activity{
	{ID: "reading", Name: "Reading"},
	{ID: "exercise", Name: "Exercise", Extra: ExtraMinutes},
	{ID: "drawing", Name: "Drawing"},
}

func TestCompletedCount(t *testing.T) {
	r := Record{"reading": true, "exercise": true, "drawing": false, "weight": 70.0}
	if got := CompletedCount(r, testActivities); got != 2 {
		t.Fatalf("CompletedCount = %d, want 2", got)
	}
	if got := CompletedCount(Record{}, testActivities); got != 0 {
		t.Fatalf("empty record CompletedCount = %d", got)
	}
}

func TestDailyTrends(t *testing.T) {
	end, _ := ParseISO("2023-03-22")
	data := map[string]Record{
		"2023-03-22": {"weight": 70.5, "calories": 1800.0, "mood": 4.0, "reading": true},
		"2023-03-20": {"weight": 71.0, "notes": "tired"},
		"2023-01-01": {"weight": 75.0},  // outside the 60 day window
		"2023-04-01": {"weight": 69.0},  // in the future, ignored
		"not-a-date": {"weight": 1.0},   // stray key, skipped
	}

	points := DailyTrends(data, testActivities, end, 7, 60)
	if len(points) != 2 {
		t.Fatalf("got %d points, want 2: %+v", len(points), points)
	}
	if points[0].Date.ISO() != "2023-03-20" || points[1].Date.ISO() != "2023-03-22" {
		t.Fatalf("points not in chronological order: %+v", points)
	}
	if points[0].Notes != "tired" {
		t.Fatalf("notes = %q", points[0].Notes)
	}
	if points[0].HasMood {
		t.Fatal("missing mood should not be reported")
	}
	p := points[1]
	if !p.HasWeight || p.Weight != 70.5 || !p.HasCalories || p.Calories != 1800 || !p.HasMood || p.Mood != 4 {
		t.Fatalf("unexpected point: %+v", p)
	}
	if p.Completed != 1 {
		t.Fatalf("completed = %d, want 1", p.Completed)
	}
}

func TestDailyTrendsCapsPoints(t *testing.T) {
	end, _ := ParseISO("2023-03-22")
	data := map[string]Record{}
	for _, d := range LastNDays(10, end) {
		data[d.ISO()] = Record{"weight": 70.0}
	}
	points := DailyTrends(data, nil, end, 7, 60)
	if len(points) != 7 {
		t.Fatalf("got %d points, want cap of 7", len(points))
	}
	// The cap keeps the most recent days.
	if points[6].Date.ISO() != "2023-03-22" {
		t.Fatalf("last point = %s", points[6].Date)
	}
}

func TestWeeklyTrends(t *testing.T) {
	end, _ := ParseISO("2023-03-22")
	data := map[string]Record{
		"2023-03-20": {"waist": 80.5, "arm": 30.0, "reading": true, "drawing": true},
		"2023-03-13": {"waist": 81.0},
	}
	points := WeeklyTrends(data, testActivities, end, 8, 180)
	if len(points) != 2 {
		t.Fatalf("got %d points", len(points))
	}
	last := points[1]
	if last.WeekStart.ISO() != "2023-03-20" || !last.HasWaist || last.Waist != 80.5 || !last.HasArm {
		t.Fatalf("unexpected point: %+v", last)
	}
	if last.Completed != 2 {
		t.Fatalf("completed = %d", last.Completed)
	}
	if points[0].HasArm {
		t.Fatal("missing arm should not be reported")
	}
}

func TestWeekOverview(t *testing.T) {
	monday, _ := ParseISO("2023-03-20")
	daily := map[string]Record{
		"2023-03-20": {"reading": true, "exercise": true},
		"2023-03-22": {"weight": 70.5},
	}
	days := WeekOverview(daily, testActivities, monday)
	if days[0].Date != monday || !days[0].Tracked || days[0].Completed != 2 {
		t.Fatalf("monday summary wrong: %+v", days[0])
	}
	if !days[2].Tracked || days[2].Completed != 0 {
		t.Fatalf("wednesday summary wrong: %+v", days[2])
	}
	for _, i := range []int{1, 3, 4, 5, 6} {
		if days[i].Tracked {
			t.Fatalf("day %d should be untracked", i)
		}
	}
}

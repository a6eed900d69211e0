package metrics

import (
	"reflect"
	"testing"

	"github.com/cadfc/gestor/internal/database"
)

func gathering(men, women, adolescents, children, online int) database.Gathering {
	d := database.Demographics{Men: men, Women: women, Adolescents: adolescents, Children: children, Online: online}
	return database.Gathering{Attendance: d, Total: d.Sum()}
}

func TestAggregateTotals(t *testing.T) {
	gatherings := []database.Gathering{
		gathering(20, 25, 10, 5, 8), // 68
		gathering(18, 22, 12, 4, 6), // 62
		gathering(10, 15, 5, 2, 1),  // 33
	}

	s := Aggregate(gatherings, nil, nil)

	if s.GatheringCount != 3 {
		t.Errorf("expected 3 gatherings, got %d", s.GatheringCount)
	}
	if s.TotalAttendance != 163 {
		t.Errorf("expected total 163, got %d", s.TotalAttendance)
	}
	// 163/3 = 54.33 rounds to 54
	if s.AvgAttendance != 54 {
		t.Errorf("expected average 54, got %d", s.AvgAttendance)
	}
	want := database.Demographics{Men: 48, Women: 62, Adolescents: 27, Children: 11, Online: 15}
	if s.Demographics != want {
		t.Errorf("expected demographics %+v, got %+v", want, s.Demographics)
	}
}

func TestAggregateEmptyInput(t *testing.T) {
	s := Aggregate(nil, nil, nil)

	if s.AvgAttendance != 0 || s.TotalAttendance != 0 {
		t.Error("expected zero attendance figures on empty input")
	}
	if s.PercentMen != 0 || s.PercentWomen != 0 || s.PercentYouth != 0 {
		t.Error("expected zero percentages when denominator is zero")
	}
	if s.ResolvedRate != 0 {
		t.Error("expected zero resolved rate with no counseling")
	}
	if !s.Empty() {
		t.Error("expected empty summary")
	}
}

func TestAggregatePercentages(t *testing.T) {
	// Online excluded from the base: denominator is 30, not 40.
	gatherings := []database.Gathering{gathering(10, 15, 3, 2, 10)}

	s := Aggregate(gatherings, nil, nil)

	if s.PercentMen != 33.3 {
		t.Errorf("expected men 33.3, got %v", s.PercentMen)
	}
	if s.PercentWomen != 50.0 {
		t.Errorf("expected women 50.0, got %v", s.PercentWomen)
	}
	if s.PercentYouth != 10.0 {
		t.Errorf("expected youth 10.0, got %v", s.PercentYouth)
	}

	sum := s.PercentMen + s.PercentWomen + s.PercentYouth
	if sum > 100.05 {
		t.Errorf("expected men+women+youth <= 100 within rounding, got %v", sum)
	}
}

func TestAggregateCounseling(t *testing.T) {
	counseling := []database.CounselingSession{
		{Resolved: true},
		{Resolved: false},
		{Resolved: true},
	}

	s := Aggregate(nil, counseling, nil)

	if s.CounselingTotal != 3 {
		t.Errorf("expected 3 sessions, got %d", s.CounselingTotal)
	}
	if s.CounselingResolved != 2 {
		t.Errorf("expected 2 resolved, got %d", s.CounselingResolved)
	}
	if s.ResolvedRate != 66.7 {
		t.Errorf("expected rate 66.7, got %v", s.ResolvedRate)
	}
}

func TestAggregateRecentActivities(t *testing.T) {
	var activities []database.Activity
	categories := []database.ActivityCategory{
		database.ActivityPastoralVisit,
		database.ActivityInternal,
		database.ActivityHomeDedication,
		database.ActivityPastoralVisit,
		database.ActivityBusinessDedication,
		database.ActivityInternal,
		database.ActivityInternal,
	}
	for _, c := range categories {
		activities = append(activities, database.Activity{Category: c})
	}

	s := Aggregate(nil, nil, activities)

	if s.ActivityCount != 7 {
		t.Errorf("expected 7 activities, got %d", s.ActivityCount)
	}
	if len(s.RecentActivities) != RecentActivitySample {
		t.Fatalf("expected sample of %d, got %d", RecentActivitySample, len(s.RecentActivities))
	}
	// First five in input order, no sorting.
	if !reflect.DeepEqual(s.RecentActivities, categories[:5]) {
		t.Errorf("expected first five in input order, got %v", s.RecentActivities)
	}
}

func TestAggregateIdempotent(t *testing.T) {
	gatherings := []database.Gathering{gathering(7, 9, 4, 3, 2)}
	counseling := []database.CounselingSession{{Resolved: true}}
	activities := []database.Activity{{Category: database.ActivityInternal}}

	a := Aggregate(gatherings, counseling, activities)
	b := Aggregate(gatherings, counseling, activities)

	if !reflect.DeepEqual(a, b) {
		t.Error("expected identical summaries for identical input")
	}
}

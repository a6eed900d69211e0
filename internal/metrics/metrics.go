// Package metrics reduces a period-filtered record set into the summary
// figures reports are built from. Aggregation is pure: the same input
// always produces the identical Summary, so re-generating a report is
// idempotent.
package metrics

import (
	"math"

	"github.com/cadfc/gestor/internal/database"
)

// RecentActivitySample bounds the recent-category list on a Summary.
const RecentActivitySample = 5

// Summary holds the normalized metrics for one reporting period.
// Percentage fields are 0, not an error, whenever their denominator is 0.
type Summary struct {
	GatheringCount  int                   `json:"totalServices"`
	TotalAttendance int                   `json:"totalAttendance"`
	AvgAttendance   int                   `json:"avgAttendance"`
	Demographics    database.Demographics `json:"demographicsRaw"`
	PercentMen      float64               `json:"percentMen"`
	PercentWomen    float64               `json:"percentWomen"`
	PercentYouth    float64               `json:"percentYouth"`

	CounselingTotal    int     `json:"counselingTotal"`
	CounselingResolved int     `json:"counselingResolved"`
	ResolvedRate       float64 `json:"counselingResolvedRate"`

	ActivityCount    int                         `json:"activitiesCount"`
	RecentActivities []database.ActivityCategory `json:"recentActivityTypes"`
}

// Empty reports whether the summarized period held no records at all.
func (s Summary) Empty() bool {
	return s.GatheringCount == 0 && s.CounselingTotal == 0 && s.ActivityCount == 0
}

// Aggregate computes the Summary for an already-filtered record set.
// Activities must arrive most-recent-first; the first entries become the
// recent-category sample, no sorting happens here.
func Aggregate(gatherings []database.Gathering, counseling []database.CounselingSession, activities []database.Activity) Summary {
	s := Summary{GatheringCount: len(gatherings)}

	for _, g := range gatherings {
		s.TotalAttendance += g.Total
		s.Demographics.Men += g.Attendance.Men
		s.Demographics.Women += g.Attendance.Women
		s.Demographics.Adolescents += g.Attendance.Adolescents
		s.Demographics.Children += g.Attendance.Children
		s.Demographics.Online += g.Attendance.Online
	}
	if s.GatheringCount > 0 {
		s.AvgAttendance = int(math.Round(float64(s.TotalAttendance) / float64(s.GatheringCount)))
	}

	// Online attendance is a parallel channel, not a demographic segment,
	// so it stays out of the percentage base.
	denominator := s.Demographics.Men + s.Demographics.Women + s.Demographics.Adolescents + s.Demographics.Children
	if denominator > 0 {
		s.PercentMen = percent(s.Demographics.Men, denominator)
		s.PercentWomen = percent(s.Demographics.Women, denominator)
		s.PercentYouth = percent(s.Demographics.Adolescents, denominator)
	}

	s.CounselingTotal = len(counseling)
	for _, c := range counseling {
		if c.Resolved {
			s.CounselingResolved++
		}
	}
	if s.CounselingTotal > 0 {
		s.ResolvedRate = percent(s.CounselingResolved, s.CounselingTotal)
	}

	s.ActivityCount = len(activities)
	for _, a := range activities {
		if len(s.RecentActivities) == RecentActivitySample {
			break
		}
		s.RecentActivities = append(s.RecentActivities, a.Category)
	}

	return s
}

// percent returns part/whole as a percentage rounded to one decimal.
func percent(part, whole int) float64 {
	return math.Round(float64(part)/float64(whole)*1000) / 10
}

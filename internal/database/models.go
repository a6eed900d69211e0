package database

// GatheringCategory is the closed set of gathering types.
// Values are the pt-BR display strings and are stored as-is.
type GatheringCategory string

const (
	CategoryMidweekService GatheringCategory = "Culto de Quarta"
	CategorySundayService  GatheringCategory = "Culto de Domingo"
	CategoryVigil          GatheringCategory = "Vigília"
	CategoryPrayerJourney  GatheringCategory = "Jornada de Oração"
)

// GatheringCategories lists every valid category in display order.
func GatheringCategories() []GatheringCategory {
	return []GatheringCategory{
		CategoryMidweekService,
		CategorySundayService,
		CategoryVigil,
		CategoryPrayerJourney,
	}
}

// Valid reports whether c is one of the known gathering categories.
func (c GatheringCategory) Valid() bool {
	switch c {
	case CategoryMidweekService, CategorySundayService, CategoryVigil, CategoryPrayerJourney:
		return true
	}
	return false
}

// ActivityCategory is the closed set of outreach activity types.
type ActivityCategory string

const (
	ActivityPastoralVisit      ActivityCategory = "Visita Pastoral"
	ActivityHomeDedication     ActivityCategory = "Consagração de Casa"
	ActivityBusinessDedication ActivityCategory = "Consagração de Negócio"
	ActivityInternal           ActivityCategory = "Atividade Interna"
)

// ActivityCategories lists every valid category in display order.
func ActivityCategories() []ActivityCategory {
	return []ActivityCategory{
		ActivityPastoralVisit,
		ActivityHomeDedication,
		ActivityBusinessDedication,
		ActivityInternal,
	}
}

// Valid reports whether c is one of the known activity categories.
func (c ActivityCategory) Valid() bool {
	switch c {
	case ActivityPastoralVisit, ActivityHomeDedication, ActivityBusinessDedication, ActivityInternal:
		return true
	}
	return false
}

// Demographics holds the five attendance counts for a gathering.
// Online is a parallel attendance channel, not a demographic segment.
type Demographics struct {
	Men         int
	Women       int
	Adolescents int
	Children    int
	Online      int
}

// Sum returns the total across all five channels.
func (d Demographics) Sum() int {
	return d.Men + d.Women + d.Adolescents + d.Children + d.Online
}

// Gathering is one recorded service or prayer event.
// Total is computed from the counts at insert time and never recomputed.
type Gathering struct {
	ID         string
	Date       string // YYYY-MM-DD
	Category   GatheringCategory
	Attendance Demographics
	Total      int
	Notes      *string
	CreatedAt  *string
}

// Member is a roster entry. Members are a standing roster and are never
// filtered by reporting period.
type Member struct {
	ID        string
	Name      string
	Phone     string
	Since     string // YYYY-MM-DD join date
	CreatedAt *string
}

// CounselingSession is a one-on-one pastoral session. The member name and
// phone are copied from the roster at creation time and intentionally not
// re-synced if the member record changes later.
type CounselingSession struct {
	ID          string
	Date        string
	MemberID    string
	MemberName  string
	MemberPhone string
	Notes       string
	Resolved    bool
	CreatedAt   *string
}

// Activity is an ad-hoc outreach activity.
type Activity struct {
	ID          string
	Date        string
	Category    ActivityCategory
	Description string
	Location    *string
	CreatedAt   *string
}

// Snapshot is the full record set for the current scope, loaded together.
type Snapshot struct {
	Gatherings []Gathering
	Members    []Member
	Counseling []CounselingSession
	Activities []Activity
}

// Stats contains aggregate database statistics.
type Stats struct {
	Gatherings         int
	Members            int
	Counseling         int
	CounselingResolved int
	Activities         int
}

package period

import (
	"fmt"

	"github.com/cadfc/gestor/internal/database"
)

// Filtered is a snapshot scoped to one reporting period. Members carry
// over unfiltered: the roster is a standing list, not a period event.
// Gatherings, counseling and activities keep the snapshot's
// most-recent-first order.
type Filtered struct {
	Gatherings []database.Gathering
	Members    []database.Member
	Counseling []database.CounselingSession
	Activities []database.Activity
}

// Empty reports whether the period holds no gatherings, counseling or
// activities at all.
func (f *Filtered) Empty() bool {
	return len(f.Gatherings) == 0 && len(f.Counseling) == 0 && len(f.Activities) == 0
}

// Warning flags a record whose date could not be parsed. The record is
// left out of the filtered set and surfaced here instead of silently
// dropped or fatally rejected.
type Warning struct {
	Collection string
	RecordID   string
	Date       string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s %s: data inválida %q", w.Collection, w.RecordID, w.Date)
}

// Filter scopes a snapshot to the selector's window.
func Filter(snap *database.Snapshot, sel Selector) (*Filtered, []Warning) {
	var warnings []Warning

	f := &Filtered{Members: snap.Members}

	for _, g := range snap.Gatherings {
		ok, err := sel.Includes(g.Date)
		if err != nil {
			warnings = append(warnings, Warning{Collection: "gatherings", RecordID: g.ID, Date: g.Date})
			continue
		}
		if ok {
			f.Gatherings = append(f.Gatherings, g)
		}
	}

	for _, c := range snap.Counseling {
		ok, err := sel.Includes(c.Date)
		if err != nil {
			warnings = append(warnings, Warning{Collection: "counseling", RecordID: c.ID, Date: c.Date})
			continue
		}
		if ok {
			f.Counseling = append(f.Counseling, c)
		}
	}

	for _, a := range snap.Activities {
		ok, err := sel.Includes(a.Date)
		if err != nil {
			warnings = append(warnings, Warning{Collection: "activities", RecordID: a.ID, Date: a.Date})
			continue
		}
		if ok {
			f.Activities = append(f.Activities, a)
		}
	}

	return f, warnings
}

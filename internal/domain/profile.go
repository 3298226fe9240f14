package domain

import "time"

// Profile is a candidate profile, read-only input to matching. It is owned
// by the profile store; this subsystem never creates or mutates one.
type Profile struct {
	UserID      string      `json:"userId"`
	Skills      []string    `json:"skills"`
	WorkHistory []WorkEntry `json:"workHistory"`
	Education   []Education `json:"education"`
	DesiredLoc  string      `json:"desiredLocation,omitempty"`
	RemotePref  bool        `json:"remotePreferred"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// WorkEntry is one job in a candidate's work history. End is nil for the
// current position.
type WorkEntry struct {
	Title       string     `json:"title"`
	Company     string     `json:"company,omitempty"`
	Description string     `json:"description,omitempty"`
	Start       time.Time  `json:"start"`
	End         *time.Time `json:"end,omitempty"`
}

// Education is one entry in a candidate's education history.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree,omitempty"`
	Field       string `json:"field,omitempty"`
}

// TenureYears sums the duration of all work-history entries in years.
// Open-ended entries count up to now.
func (p Profile) TenureYears(now time.Time) float64 {
	var total float64
	for _, w := range p.WorkHistory {
		end := now
		if w.End != nil {
			end = *w.End
		}
		if end.Before(w.Start) {
			continue
		}
		total += end.Sub(w.Start).Hours() / (24 * 365.25)
	}
	return total
}

package domain

import "time"

// Location type of a posting, inferred during normalization.
const (
	LocationRemote  = "remote"
	LocationHybrid  = "hybrid"
	LocationOnsite  = "onsite"
	LocationUnknown = "unknown"
)

// Employment type.
const (
	EmploymentFullTime   = "full-time"
	EmploymentPartTime   = "part-time"
	EmploymentContract   = "contract"
	EmploymentInternship = "internship"
	EmploymentUnknown    = "unknown"
)

// Experience level.
const (
	LevelEntry     = "entry"
	LevelMid       = "mid"
	LevelSenior    = "senior"
	LevelExecutive = "executive"
	LevelUnknown   = "unknown"
)

// Posting is the canonical, deduplicated representation of a job posting.
// The pair (Source, SourceID) uniquely identifies one real-world posting
// and is enforced by a unique index in the store.
type Posting struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	CompanyLogoURL  string     `json:"companyLogoUrl,omitempty"`
	Description     string     `json:"description"`
	Requirements    string     `json:"requirements,omitempty"`
	Location        string     `json:"location"`
	LocationType    string     `json:"locationType"`
	SalaryMin       *float64   `json:"salaryMin,omitempty"`
	SalaryMax       *float64   `json:"salaryMax,omitempty"`
	SalaryCurrency  string     `json:"salaryCurrency,omitempty"`
	EmploymentType  string     `json:"employmentType"`
	ExperienceLevel string     `json:"experienceLevel"`
	ApplicationURL  string     `json:"applicationUrl"`
	Source          string     `json:"source"`
	SourceID        string     `json:"sourceId"`
	SourceURL       string     `json:"sourceUrl,omitempty"`
	PostedAt        *time.Time `json:"postedAt,omitempty"`
	LastSynced      time.Time  `json:"lastSynced"`
	Active          bool       `json:"active"`
	RequiredSkills  []string   `json:"requiredSkills,omitempty"`
	PreferredSkills []string   `json:"preferredSkills,omitempty"`
}

// JobSource identifies one external listing provider. Created on the first
// successful sync from that provider, refreshed every cycle, never deleted.
type JobSource struct {
	Name        string     `json:"name"`
	DisplayName string     `json:"displayName"`
	BaseURL     string     `json:"baseUrl"`
	LastSync    *time.Time `json:"lastSync,omitempty"`
}

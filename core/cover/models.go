package cover

import (
	"time"

	"github.com/trezcool/kitabu/core"
)

// Grades are the units of cover-page personalization. A school only
// exposes the grades it actually runs (its enabled-grade set).
const (
	GradePlaygroup Grade = "playgroup"
	GradeNursery   Grade = "nursery"
	GradeLKG       Grade = "lkg"
	GradeUKG       Grade = "ukg"
)

var (
	AllGrades = []Grade{GradePlaygroup, GradeNursery, GradeLKG, GradeUKG}

	gradeCodes = map[Grade]string{
		GradePlaygroup: "P",
		GradeNursery:   "N",
		GradeLKG:       "L",
		GradeUKG:       "U",
	}
)

type Grade string

func (g Grade) Valid() bool {
	_, ok := gradeCodes[g]
	return ok
}

// Code returns the single-letter grade code used by the asset library.
func (g Grade) Code() string {
	return gradeCodes[g]
}

// GradeFromCode maps a single-letter code back to its Grade.
func GradeFromCode(code string) (Grade, bool) {
	for g, c := range gradeCodes {
		if c == code {
			return g, true
		}
	}
	return "", false
}

// Workflow statuses. Exactly one authoritative status per school;
// a status found on a selection record is a legacy fallback only.
const (
	StatusExplore   Status = 1 // initial; selections editable by the school
	StatusPreparing Status = 2 // school finished; production preparing artwork
	StatusView      Status = 3 // artwork published for school review
	StatusFrozen    Status = 4 // school approved; terminal unless admin reverts
)

type Status int

func (s Status) Valid() bool {
	return s >= StatusExplore && s <= StatusFrozen
}

// ClientEditable reports whether a school user may still mutate selections.
func (s Status) ClientEditable() bool {
	return s == StatusExplore
}

func (s Status) String() string {
	switch s {
	case StatusExplore:
		return "explore"
	case StatusPreparing:
		return "preparing"
	case StatusView:
		return "view"
	case StatusFrozen:
		return "frozen"
	}
	return "unknown"
}

// Role is the acting party, resolved once per request from auth claims.
type Role int

const (
	RoleClient Role = iota
	RoleAdmin
)

func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "client"
}

type (
	// Theme is a visual design family. Immutable once loaded from the library.
	Theme struct {
		ID    string `json:"id" yaml:"id"`
		Label string `json:"label" yaml:"label"`
		Cover string `json:"cover,omitempty" yaml:"cover,omitempty"` // thumbnail reference
	}

	// Library is the canonical in-memory shape of the asset catalogue.
	Library struct {
		Themes         []Theme
		Colours        map[string]map[Grade]string // colour id -> grade -> image URL
		ColourVersions []string
	}

	// Selection is one grade's confirmed (theme, colour) choice.
	Selection struct {
		SchoolID    string    `json:"school_id"`
		Grade       Grade     `json:"grade"`
		ThemeID     string    `json:"theme_id"`
		ThemeLabel  string    `json:"theme_label"`
		ColourID    string    `json:"colour_id"`
		ColourLabel string    `json:"colour_label"`
		ImageURL    string    `json:"image_url,omitempty"`
		IsSelected  bool      `json:"is_selected"`
		UpdatedAt   time.Time `json:"updated_at"`

		// GradeStatus is the legacy per-grade workflow status some old
		// records still carry. Consulted only when no school-level status
		// document exists.
		GradeStatus *Status `json:"status,omitempty"`
	}

	// Baseline is the last-known-good (theme, colour) pair for a grade as
	// confirmed by the persistence layer.
	Baseline struct {
		ThemeID   string
		ColourID  string
		UpdatedAt time.Time
	}

	// Assignment is an in-progress (unsaved) image-to-grade choice.
	Assignment struct {
		Grade    Grade  `json:"grade"`
		ColourID string `json:"colour_id"`
		ImageURL string `json:"image_url"`
	}

	// CachedSelection is what the session cache side channel stores per
	// (school, grade). Resilience only, never the system of record.
	CachedSelection struct {
		ThemeID     string    `json:"theme_id"`
		ThemeLabel  string    `json:"theme_label"`
		ColourID    string    `json:"colour_id"`
		ColourLabel string    `json:"colour_label"`
		Status      Status    `json:"status"`
		UpdatedAt   time.Time `json:"updated_at"`
	}

	// Snapshot is the consistent view published after hydration.
	Snapshot struct {
		SchoolID   string              `json:"school_id"`
		Selections map[Grade]Selection `json:"selections"`
		Status     Status              `json:"status"`
		// Stale marks a snapshot served from cache because the remote
		// fetch was deferred or failed.
		Stale bool `json:"stale,omitempty"`
	}

	// Upload is one produced artwork file, or a placeholder for a grade
	// whose artwork has not been produced yet.
	Upload struct {
		Grade    Grade  `json:"grade"`
		Filename string `json:"filename,omitempty"`
		URL      string `json:"url,omitempty"`
		Missing  bool   `json:"missing,omitempty"`
	}
)

// NewSelection contains information needed to upsert one grade's selection.
type NewSelection struct {
	SchoolID    string `json:"school_id" validate:"required"`
	Grade       Grade  `json:"grade" validate:"required,gradekey"`
	ThemeID     string `json:"theme_id" validate:"required"`
	ThemeLabel  string `json:"theme_label"`
	ColourID    string `json:"colour_id" validate:"required"`
	ColourLabel string `json:"colour_label"`
	ImageURL    string `json:"image_url"`
	IsSelected  bool   `json:"is_selected"`
}

func (ns *NewSelection) Validate() error {
	ns.SchoolID = core.CleanString(ns.SchoolID)
	ns.Grade = Grade(core.CleanString(string(ns.Grade), true /* lower */))
	ns.ThemeID = NormalizeThemeID(core.CleanString(ns.ThemeID))
	ns.ColourID = NormalizeColourID(core.CleanString(ns.ColourID))
	ns.ThemeLabel = core.CleanString(ns.ThemeLabel)
	ns.ColourLabel = core.CleanString(ns.ColourLabel)
	return core.Validate.Struct(ns)
}

// StatusUpdate is the admin status-override payload.
type StatusUpdate struct {
	Status Status `json:"status" validate:"required,coverstatus"`
}

func (su StatusUpdate) Validate() error { return core.Validate.Struct(su) }

// SchoolRecords is the remote state fetched in one request during hydration.
type SchoolRecords struct {
	Selections []Selection
	// Status is the school-level status document, when one exists.
	Status *Status
	// Library optionally embeds the asset catalogue to save a round trip.
	Library []byte
}

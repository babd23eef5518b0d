package cover

import (
	"errors"
	"sort"
)

var (
	// errors
	ErrGradeNotEnabled = errors.New("grade is not enabled for this school")
	ErrNoThemeSelected = errors.New("select a theme first")
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrUnknownColour   = errors.New("unknown colour for the selected theme")
	ErrNothingToSave   = errors.New("no cover assignments to save")
)

// AssignmentKey identifies one (colour, image) choice in the store.
type AssignmentKey struct {
	ColourID string
	ImageURL string
}

// Store holds a school's in-progress cover choices: the active theme, and
// the image assigned to each grade. Writes go only to memory; persistence
// is always driven explicitly through the service.
//
// Switching themes stashes the current theme's draft assignments and
// restores any draft previously entered for the newly selected theme, so a
// user can compare themes without losing work.
type Store struct {
	library Library
	enabled map[Grade]bool

	activeTheme string
	assignments map[AssignmentKey]Assignment
	drafts      map[string]map[AssignmentKey]Assignment // per-theme stash
	dirty       bool
}

func NewStore(lib Library, enabledGrades []Grade) *Store {
	enabled := make(map[Grade]bool, len(enabledGrades))
	for _, g := range enabledGrades {
		if g.Valid() {
			enabled[g] = true
		}
	}
	return &Store{
		library:     lib,
		enabled:     enabled,
		assignments: make(map[AssignmentKey]Assignment),
		drafts:      make(map[string]map[AssignmentKey]Assignment),
	}
}

func (s *Store) ActiveTheme() string { return s.activeTheme }
func (s *Store) Dirty() bool         { return s.dirty }

// SelectTheme switches the active theme. The current theme's in-progress
// assignments are stashed; a draft previously entered for the new theme is
// restored.
func (s *Store) SelectTheme(themeID string) error {
	themeID = NormalizeThemeID(themeID)
	if _, ok := s.library.Theme(themeID); !ok {
		return ErrUnknownTheme
	}
	if themeID == s.activeTheme {
		return nil
	}

	if s.activeTheme != "" {
		s.drafts[s.activeTheme] = s.assignments
	}
	if draft, ok := s.drafts[themeID]; ok {
		s.assignments = draft
		delete(s.drafts, themeID)
	} else {
		s.assignments = make(map[AssignmentKey]Assignment)
	}
	s.activeTheme = themeID
	return nil
}

// Assign records an image choice for a grade. Any prior assignment for the
// same grade is revoked first: a grade carries at most one image at a time.
func (s *Store) Assign(grade Grade, colourID, imageURL string) error {
	if !s.enabled[grade] {
		return ErrGradeNotEnabled
	}
	if s.activeTheme == "" {
		return ErrNoThemeSelected
	}
	colourID = NormalizeColourID(colourID)
	if _, ok := s.library.Colours[colourID]; !ok {
		return ErrUnknownColour
	}

	s.removeGrade(grade)
	s.assignments[AssignmentKey{ColourID: colourID, ImageURL: imageURL}] = Assignment{
		Grade:    grade,
		ColourID: colourID,
		ImageURL: imageURL,
	}
	s.dirty = true
	return nil
}

// Unassign clears any assignment keyed to the grade. No-op if absent.
func (s *Store) Unassign(grade Grade) {
	if s.removeGrade(grade) {
		s.dirty = true
	}
}

func (s *Store) removeGrade(grade Grade) bool {
	var removed bool
	for key, a := range s.assignments {
		if a.Grade == grade {
			delete(s.assignments, key)
			removed = true
		}
	}
	return removed
}

// CurrentAssignments returns a read-only snapshot of the active theme's
// assignments keyed by (colour, image).
func (s *Store) CurrentAssignments() map[AssignmentKey]Assignment {
	out := make(map[AssignmentKey]Assignment, len(s.assignments))
	for k, a := range s.assignments {
		out[k] = a
	}
	return out
}

// Assignments returns the active theme's assignments in stable grade order,
// ready for persistence.
func (s *Store) Assignments() []Assignment {
	out := make([]Assignment, 0, len(s.assignments))
	for _, a := range s.assignments {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Grade < out[j].Grade })
	return out
}

func (s *Store) HasAssignments() bool { return len(s.assignments) > 0 }

// AssignmentFor returns the grade's current in-progress assignment, if any.
func (s *Store) AssignmentFor(grade Grade) (Assignment, bool) {
	for _, a := range s.assignments {
		if a.Grade == grade {
			return a, true
		}
	}
	return Assignment{}, false
}

func (s *Store) markSaved() { s.dirty = false }

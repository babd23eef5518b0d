package cover

// Workflow aggregates one school's editing state: session, selection store,
// status machine and the last confirmed baselines. One instance serves both
// the school user and the admin; the acting role is passed into each
// service operation.
type Workflow struct {
	Session *Session

	library   Library
	enabled   []Grade
	store     *Store
	machine   *Machine
	baselines map[Grade]Baseline
	// selections is the last published remote view, per grade.
	selections map[Grade]Selection
}

func NewWorkflow(sess *Session, lib Library, enabledGrades []Grade) *Workflow {
	return &Workflow{
		Session:    sess,
		library:    lib,
		enabled:    enabledGrades,
		store:      NewStore(lib, enabledGrades),
		machine:    NewMachine(StatusExplore, false),
		baselines:  make(map[Grade]Baseline),
		selections: make(map[Grade]Selection),
	}
}

func (w *Workflow) Store() *Store     { return w.store }
func (w *Workflow) Machine() *Machine { return w.machine }
func (w *Workflow) Library() Library  { return w.library }

// Baseline returns the last confirmed (theme, colour) pair for a grade.
func (w *Workflow) Baseline(grade Grade) (Baseline, bool) {
	b, ok := w.baselines[grade]
	return b, ok
}

// Snapshot publishes a consistent view of the workflow.
func (w *Workflow) Snapshot() Snapshot {
	sels := make(map[Grade]Selection, len(w.selections))
	for g, sel := range w.selections {
		sels[g] = sel
	}
	return Snapshot{
		SchoolID:   w.Session.SchoolID,
		Selections: sels,
		Status:     w.machine.Status(),
	}
}

// seedCached pre-populates the visible snapshot from the session cache
// before the network round trip (fast first paint). Cached data never sets
// the has-document flag: only a successful remote read or write does.
func (w *Workflow) seedCached(grade Grade, cached CachedSelection) {
	w.selections[grade] = Selection{
		SchoolID:    w.Session.SchoolID,
		Grade:       grade,
		ThemeID:     cached.ThemeID,
		ThemeLabel:  cached.ThemeLabel,
		ColourID:    cached.ColourID,
		ColourLabel: cached.ColourLabel,
		IsSelected:  true,
		UpdatedAt:   cached.UpdatedAt,
	}
	w.baselines[grade] = Baseline{
		ThemeID:   cached.ThemeID,
		ColourID:  cached.ColourID,
		UpdatedAt: cached.UpdatedAt,
	}
	if cached.Status.Valid() {
		w.machine = NewMachine(cached.Status, w.machine.HasDocument())
	}
}

// applyRemote merges one remote selection record. The server wins over any
// locally cached baseline unless the local one is strictly fresher (a save
// the fetch raced past). Unsaved in-progress edits live in the store and
// are never touched here.
func (w *Workflow) applyRemote(sel Selection) {
	if local, ok := w.baselines[sel.Grade]; ok && local.UpdatedAt.After(sel.UpdatedAt) {
		return
	}
	w.selections[sel.Grade] = sel
	w.baselines[sel.Grade] = Baseline{
		ThemeID:   sel.ThemeID,
		ColourID:  sel.ColourID,
		UpdatedAt: sel.UpdatedAt,
	}
}

// confirm records a successful selection write as the new baseline.
func (w *Workflow) confirm(sel Selection) {
	w.selections[sel.Grade] = sel
	w.baselines[sel.Grade] = Baseline{
		ThemeID:   sel.ThemeID,
		ColourID:  sel.ColourID,
		UpdatedAt: sel.UpdatedAt,
	}
}

// forget drops every trace of a grade after an admin deletion.
func (w *Workflow) forget(grade Grade) {
	delete(w.selections, grade)
	delete(w.baselines, grade)
	w.store.Unassign(grade)
}

// BaselineSatisfies reports whether a grade's confirmed baseline already
// matches the given (theme, colour) pair, i.e. saving it again would be
// a no-op.
func (w *Workflow) BaselineSatisfies(grade Grade, themeID, colourID string) bool {
	b, ok := w.baselines[grade]
	return ok && b.ThemeID == NormalizeThemeID(themeID) && b.ColourID == NormalizeColourID(colourID)
}

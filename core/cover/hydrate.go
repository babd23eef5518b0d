package cover

import (
	"context"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Hydrate loads and reconciles remote state into the workflow.
//
// The session cache seeds the visible snapshot first so the caller can
// paint immediately; the network fetch then publishes the authoritative
// view. Remote data overwrites local baselines (unless a local baseline is
// strictly fresher), but never touches unsaved edits held by the store.
//
// An auth-not-ready repository response defers hydration rather than
// failing it: the session stays un-hydrated so the next attempt retries.
// Other fetch failures degrade to the cached snapshot with a warning.
func (svc *Service) Hydrate(ctx context.Context, w *Workflow) (Snapshot, error) {
	sess := w.Session
	if !sess.beginHydration() {
		// another hydration is in flight; serve the current view
		return w.Snapshot(), nil
	}
	var completed bool
	defer func() { sess.endHydration(completed) }()

	// 1. fast paint from the session cache
	if !sess.Hydrated() {
		for _, g := range w.enabled {
			cached, ok, err := svc.cache.Get(ctx, sess.SchoolID, g)
			if err != nil {
				svc.log.Warn(fmt.Sprintf("cover: reading cache for %s/%s: %v", sess.SchoolID, g, err))
				continue
			}
			if ok {
				w.seedCached(g, cached)
			}
		}
	}

	// 2. authoritative fetch (selections + status in one request)
	records, err := svc.repo.GetSchoolRecords(ctx, sess.SchoolID)
	if err != nil {
		snap := w.Snapshot()
		snap.Stale = true
		if pkgerrors.Cause(err) == ErrTokenNotReady {
			// not an error: retry once a token is available
			return snap, nil
		}
		svc.log.Warn(fmt.Sprintf("cover: hydrating %s, serving cached state: %v", sess.SchoolID, err))
		return snap, nil
	}

	// 3. merge selections; remember any legacy grade-level status
	var legacy *Status
	for _, sel := range records.Selections {
		sel.ThemeID = NormalizeThemeID(sel.ThemeID)
		sel.ColourID = NormalizeColourID(sel.ColourID)
		if !sel.Grade.Valid() {
			continue
		}
		if sel.GradeStatus != nil && legacy == nil && sel.GradeStatus.Valid() {
			legacy = sel.GradeStatus
		}
		if url, ok := w.library.Image(sel.ColourID, sel.Grade); ok && sel.ImageURL == "" {
			sel.ImageURL = url
		}
		w.applyRemote(sel)
	}

	// 4. authoritative status: school-level document, else legacy grade field
	status := StatusExplore
	hasDoc := false
	switch {
	case records.Status != nil && records.Status.Valid():
		status = *records.Status
		hasDoc = true
	case legacy != nil:
		status = *legacy
	}
	w.machine = NewMachine(status, hasDoc)

	// 5. write-through so a refresh survives without the network
	for _, sel := range w.selections {
		svc.writeThrough(ctx, w, sel)
	}

	completed = true
	return w.Snapshot(), nil
}

package cover

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/trezcool/kitabu/core"
)

var (
	// ErrTokenNotReady is returned by repositories that authenticate with a
	// deferred identity token: the call should be retried once a token is
	// available, it has not failed.
	ErrTokenNotReady = errors.New("identity token not ready")

	errMissingSchool = errors.New("missing school id")
)

type (
	// Repository is the persistence boundary for the cover workflow. It is
	// implemented by the upstream REST backend adapter (managed mode) and
	// by the console's own database (self-hosted mode).
	Repository interface {
		// GetLibrary returns the raw asset-library payload; shape tolerance
		// is the resolver's job, not the repository's.
		GetLibrary(ctx context.Context) ([]byte, error)
		// GetSchoolRecords fetches a school's selections and status in one request.
		GetSchoolRecords(ctx context.Context, schoolID string) (SchoolRecords, error)
		UpsertSelection(ctx context.Context, sel NewSelection) error
		DeleteSelection(ctx context.Context, schoolID string, grade Grade) error
		GetStatus(ctx context.Context, schoolID string) (Status, bool, error)
		// CreateStatus is used only when no status document exists yet.
		CreateStatus(ctx context.Context, schoolID string, status Status) error
		UpdateStatus(ctx context.Context, schoolID string, status Status) error
		ListUploads(ctx context.Context, schoolID string) ([]Upload, error)
	}

	// SessionCache is the durable side channel keyed by (school, grade).
	// Purely a resilience cache, never the system of record.
	SessionCache interface {
		Get(ctx context.Context, schoolID string, grade Grade) (CachedSelection, bool, error)
		Put(ctx context.Context, schoolID string, grade Grade, sel CachedSelection) error
		Delete(ctx context.Context, schoolID string, grade Grade) error
	}

	// ContactDirectory resolves a school's contact address for notifications.
	ContactDirectory interface {
		ContactEmail(ctx context.Context, schoolID string) (mail.Address, error)
	}

	// URLResolver turns stored image references into fetchable URLs
	// (signed URLs for object-store references, pass-through otherwise).
	URLResolver interface {
		ResolveURL(ctx context.Context, ref string) (string, error)
	}

	ServiceInterface interface {
		Library(ctx context.Context) Library
		Open(ctx context.Context, schoolID string, enabledGrades []Grade) (*Workflow, Snapshot, error)
		Hydrate(ctx context.Context, w *Workflow) (Snapshot, error)
		SaveSelections(ctx context.Context, w *Workflow, role Role) (Snapshot, error)
		Finish(ctx context.Context, w *Workflow, role Role) (Snapshot, error)
		Approve(ctx context.Context, w *Workflow, role Role) (Snapshot, error)
		OverrideStatus(ctx context.Context, w *Workflow, role Role, target Status) (Snapshot, error)
		DeleteSelection(ctx context.Context, w *Workflow, role Role, grade Grade) (Snapshot, error)
		Uploads(ctx context.Context, schoolID string) ([]Upload, error)
	}

	Service struct {
		repo     Repository
		cache    SessionCache
		mailSvc  core.EmailService
		contacts ContactDirectory
		urls     URLResolver
		log      core.Logger
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(
	repo Repository,
	cache SessionCache,
	mailSvc core.EmailService,
	contacts ContactDirectory,
	urls URLResolver,
	logger core.Logger,
) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		mailSvc:  mailSvc,
		contacts: contacts,
		urls:     urls,
		log:      logger,
	}
}

// Library fetches and normalizes the asset catalogue, degrading to the
// built-in fallback when the remote library cannot be loaded.
func (svc *Service) Library(ctx context.Context) Library {
	raw, err := svc.repo.GetLibrary(ctx)
	if err != nil {
		svc.log.Warn(fmt.Sprintf("cover: loading library, using fallback: %v", err))
		return FallbackLibrary()
	}
	return NormalizeLibrary(raw)
}

// Open starts a workflow session for a school and runs the initial hydration.
func (svc *Service) Open(ctx context.Context, schoolID string, enabledGrades []Grade) (*Workflow, Snapshot, error) {
	schoolID = core.CleanString(schoolID)
	if schoolID == "" {
		return nil, Snapshot{}, core.NewValidationError(errMissingSchool)
	}
	w := NewWorkflow(NewSession(schoolID), svc.Library(ctx), enabledGrades)
	snap, err := svc.Hydrate(ctx, w)
	return w, snap, err
}

// SaveSelections persists the store's in-progress assignments, one upsert
// per grade. Validation failures and read-only states are rejected before
// any network call; a failed upsert leaves the published snapshot and the
// session cache at their last-known-good values.
func (svc *Service) SaveSelections(ctx context.Context, w *Workflow, role Role) (Snapshot, error) {
	if !w.machine.EditableBy(role) {
		return w.Snapshot(), ErrReadOnly
	}
	if w.store.ActiveTheme() == "" {
		return w.Snapshot(), core.NewValidationError(ErrNoThemeSelected)
	}
	if !w.store.HasAssignments() {
		return w.Snapshot(), core.NewValidationError(ErrNothingToSave)
	}

	theme, _ := w.library.Theme(w.store.ActiveTheme())
	for _, a := range w.store.Assignments() {
		ns := NewSelection{
			SchoolID:    w.Session.SchoolID,
			Grade:       a.Grade,
			ThemeID:     theme.ID,
			ThemeLabel:  theme.Label,
			ColourID:    a.ColourID,
			ColourLabel: a.ColourID,
			ImageURL:    a.ImageURL,
			IsSelected:  true,
		}
		if err := ns.Validate(); err != nil {
			return w.Snapshot(), err
		}
		if err := svc.repo.UpsertSelection(ctx, ns); err != nil {
			return w.Snapshot(), pkgerrors.Wrapf(err, "saving selection for %s", a.Grade)
		}

		sel := Selection{
			SchoolID:    ns.SchoolID,
			Grade:       ns.Grade,
			ThemeID:     ns.ThemeID,
			ThemeLabel:  ns.ThemeLabel,
			ColourID:    ns.ColourID,
			ColourLabel: ns.ColourLabel,
			ImageURL:    ns.ImageURL,
			IsSelected:  true,
			UpdatedAt:   time.Now().UTC(),
		}
		w.confirm(sel)
		svc.writeThrough(ctx, w, sel)
	}

	w.store.markSaved()
	return w.Snapshot(), nil
}

// Finish is the client action that finalizes selections: persists any
// in-progress assignments, then moves the workflow to preparing. Never
// skips the preparing state.
func (svc *Service) Finish(ctx context.Context, w *Workflow, role Role) (Snapshot, error) {
	if role != RoleClient {
		return w.Snapshot(), core.NewPermissionError("only the school may finish its selections")
	}

	if w.store.HasAssignments() {
		if snap, err := svc.SaveSelections(ctx, w, role); err != nil {
			return snap, err
		}
	} else if len(w.selections) == 0 {
		return w.Snapshot(), core.NewValidationError(ErrNothingToSave)
	}

	next, err := w.machine.Client().Finish()
	if err != nil {
		return w.Snapshot(), err
	}
	if err := svc.persistStatus(ctx, w, next); err != nil {
		return w.Snapshot(), err
	}

	svc.notifyTeam(w, "Selections finalized",
		fmt.Sprintf("School %s finalized its cover-page selections; artwork production can start.", w.Session.SchoolID))
	return w.Snapshot(), nil
}

// Approve is the client action that freezes the workflow once the produced
// artwork has been reviewed. Idempotent: approving an already frozen
// workflow reports ErrAlreadyApproved without touching anything.
func (svc *Service) Approve(ctx context.Context, w *Workflow, role Role) (Snapshot, error) {
	if role != RoleClient {
		return w.Snapshot(), core.NewPermissionError("only the school may approve its cover pages")
	}

	next, err := w.machine.Client().Approve()
	if err != nil {
		return w.Snapshot(), err
	}
	if err := svc.persistStatus(ctx, w, next); err != nil {
		return w.Snapshot(), err
	}

	svc.notifyTeam(w, "Cover pages approved",
		fmt.Sprintf("School %s approved its cover pages; the job is frozen for print.", w.Session.SchoolID))
	return w.Snapshot(), nil
}

// OverrideStatus is the admin escape hatch: unlock, relock or advance the
// workflow. Publishing for review (view) notifies the school contact.
func (svc *Service) OverrideStatus(ctx context.Context, w *Workflow, role Role, target Status) (Snapshot, error) {
	if role != RoleAdmin {
		return w.Snapshot(), core.NewPermissionError("only an admin may set the workflow status")
	}

	next, err := w.machine.Admin().Override(target)
	if err != nil {
		return w.Snapshot(), err
	}
	if err := svc.persistStatus(ctx, w, next); err != nil {
		return w.Snapshot(), err
	}

	if next == StatusView {
		svc.notifySchool(ctx, w, "Your cover pages are ready",
			"Your personalized cover pages are ready for review. Please sign in to view and approve them.")
	}
	return w.Snapshot(), nil
}

// DeleteSelection removes a grade's selection entirely (admin only) and
// clears every local cache referencing it.
func (svc *Service) DeleteSelection(ctx context.Context, w *Workflow, role Role, grade Grade) (Snapshot, error) {
	if role != RoleAdmin {
		return w.Snapshot(), core.NewPermissionError("only an admin may delete a selection")
	}
	if !grade.Valid() {
		return w.Snapshot(), core.NewValidationError(nil, core.FieldError{Field: "grade", Error: gradeKeyText})
	}

	if err := svc.repo.DeleteSelection(ctx, w.Session.SchoolID, grade); err != nil {
		return w.Snapshot(), pkgerrors.Wrapf(err, "deleting selection for %s", grade)
	}

	w.forget(grade)
	if err := svc.cache.Delete(ctx, w.Session.SchoolID, grade); err != nil {
		svc.log.Warn(fmt.Sprintf("cover: clearing cache for %s/%s: %v", w.Session.SchoolID, grade, err))
	}
	return w.Snapshot(), nil
}

// Uploads lists the produced artwork for review (status view/frozen),
// resolving stored references into fetchable URLs.
func (svc *Service) Uploads(ctx context.Context, schoolID string) ([]Upload, error) {
	uploads, err := svc.repo.ListUploads(ctx, schoolID)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "listing uploads")
	}
	if svc.urls == nil {
		return uploads, nil
	}
	for i, up := range uploads {
		if up.Missing || up.URL == "" {
			continue
		}
		url, err := svc.urls.ResolveURL(ctx, up.URL)
		if err != nil {
			svc.log.Warn(fmt.Sprintf("cover: resolving upload url %q: %v", up.URL, err))
			continue
		}
		uploads[i].URL = url
	}
	return uploads, nil
}

// persistStatus writes a planned status transition through the repository
// and applies it to the machine only once the write is confirmed. The first
// ever write creates the status document; later writes update it.
func (svc *Service) persistStatus(ctx context.Context, w *Workflow, next Status) error {
	var err error
	if w.machine.HasDocument() {
		err = svc.repo.UpdateStatus(ctx, w.Session.SchoolID, next)
	} else {
		err = svc.repo.CreateStatus(ctx, w.Session.SchoolID, next)
	}
	if err != nil {
		return pkgerrors.Wrapf(err, "persisting status %s", next)
	}

	w.machine.Apply(next)
	w.machine.SeedDocument()

	// write-through: keep cached entries in step with the new status
	for _, sel := range w.selections {
		svc.writeThrough(ctx, w, sel)
	}
	return nil
}

func (svc *Service) writeThrough(ctx context.Context, w *Workflow, sel Selection) {
	cached := CachedSelection{
		ThemeID:     sel.ThemeID,
		ThemeLabel:  sel.ThemeLabel,
		ColourID:    sel.ColourID,
		ColourLabel: sel.ColourLabel,
		Status:      w.machine.Status(),
		UpdatedAt:   sel.UpdatedAt,
	}
	if err := svc.cache.Put(ctx, w.Session.SchoolID, sel.Grade, cached); err != nil {
		svc.log.Warn(fmt.Sprintf("cover: caching %s/%s: %v", w.Session.SchoolID, sel.Grade, err))
	}
}

func (svc *Service) notifyTeam(w *Workflow, subject, body string) {
	if svc.mailSvc == nil {
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{core.Conf.ProductionTeamEmail()},
		Subject:     subject,
		TextContent: body,
	})
}

func (svc *Service) notifySchool(ctx context.Context, w *Workflow, subject, body string) {
	if svc.mailSvc == nil || svc.contacts == nil {
		return
	}
	to, err := svc.contacts.ContactEmail(ctx, w.Session.SchoolID)
	if err != nil {
		svc.log.Warn(fmt.Sprintf("cover: resolving contact for %s: %v", w.Session.SchoolID, err))
		return
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:          []mail.Address{to},
		Subject:     subject,
		TextContent: body,
	})
}

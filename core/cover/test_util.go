package cover

import "context"

// ServiceMock implements ServiceInterface with per-test overridable
// behavior. Handlers are tested against it without a real repository.
type ServiceMock struct {
	LibraryFn         func(ctx context.Context) Library
	OpenFn            func(ctx context.Context, schoolID string, enabledGrades []Grade) (*Workflow, Snapshot, error)
	HydrateFn         func(ctx context.Context, w *Workflow) (Snapshot, error)
	SaveSelectionsFn  func(ctx context.Context, w *Workflow, role Role) (Snapshot, error)
	FinishFn          func(ctx context.Context, w *Workflow, role Role) (Snapshot, error)
	ApproveFn         func(ctx context.Context, w *Workflow, role Role) (Snapshot, error)
	OverrideStatusFn  func(ctx context.Context, w *Workflow, role Role, target Status) (Snapshot, error)
	DeleteSelectionFn func(ctx context.Context, w *Workflow, role Role, grade Grade) (Snapshot, error)
	UploadsFn         func(ctx context.Context, schoolID string) ([]Upload, error)
}

var _ ServiceInterface = (*ServiceMock)(nil)

func (m *ServiceMock) Library(ctx context.Context) Library {
	if m.LibraryFn == nil {
		return FallbackLibrary()
	}
	return m.LibraryFn(ctx)
}

func (m *ServiceMock) Open(ctx context.Context, schoolID string, enabledGrades []Grade) (*Workflow, Snapshot, error) {
	if m.OpenFn == nil {
		w := NewWorkflow(NewSession(schoolID), FallbackLibrary(), enabledGrades)
		return w, w.Snapshot(), nil
	}
	return m.OpenFn(ctx, schoolID, enabledGrades)
}

func (m *ServiceMock) Hydrate(ctx context.Context, w *Workflow) (Snapshot, error) {
	if m.HydrateFn == nil {
		return w.Snapshot(), nil
	}
	return m.HydrateFn(ctx, w)
}

func (m *ServiceMock) SaveSelections(ctx context.Context, w *Workflow, role Role) (Snapshot, error) {
	if m.SaveSelectionsFn == nil {
		return w.Snapshot(), nil
	}
	return m.SaveSelectionsFn(ctx, w, role)
}

func (m *ServiceMock) Finish(ctx context.Context, w *Workflow, role Role) (Snapshot, error) {
	if m.FinishFn == nil {
		return w.Snapshot(), nil
	}
	return m.FinishFn(ctx, w, role)
}

func (m *ServiceMock) Approve(ctx context.Context, w *Workflow, role Role) (Snapshot, error) {
	if m.ApproveFn == nil {
		return w.Snapshot(), nil
	}
	return m.ApproveFn(ctx, w, role)
}

func (m *ServiceMock) OverrideStatus(ctx context.Context, w *Workflow, role Role, target Status) (Snapshot, error) {
	if m.OverrideStatusFn == nil {
		return w.Snapshot(), nil
	}
	return m.OverrideStatusFn(ctx, w, role, target)
}

func (m *ServiceMock) DeleteSelection(ctx context.Context, w *Workflow, role Role, grade Grade) (Snapshot, error) {
	if m.DeleteSelectionFn == nil {
		return w.Snapshot(), nil
	}
	return m.DeleteSelectionFn(ctx, w, role, grade)
}

func (m *ServiceMock) Uploads(ctx context.Context, schoolID string) ([]Upload, error) {
	if m.UploadsFn == nil {
		return nil, nil
	}
	return m.UploadsFn(ctx, schoolID)
}

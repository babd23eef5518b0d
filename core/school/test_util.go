package school

import (
	"context"
	"net/mail"
)

// ServiceMock implements ServiceInterface with per-test overridable
// behavior. Nil hooks fall back to a benign default.
type ServiceMock struct {
	CheckUniquenessFn func(slug string, excl ...School) error
	CreateFn          func(ns NewSchool) (School, error)
	QueryAllFn        func() ([]School, error)
	GetByIDFn         func(id string) (School, error)
	GetBySlugFn       func(slug string) (School, error)
	UpdateFn          func(id string, us UpdateSchool) (School, error)
	DeleteFn          func(ids ...string) error
	ContactEmailFn    func(ctx context.Context, schoolID string) (mail.Address, error)
}

var _ ServiceInterface = (*ServiceMock)(nil)

func (m *ServiceMock) CheckUniqueness(slug string, excl ...School) error {
	if m.CheckUniquenessFn == nil {
		return nil
	}
	return m.CheckUniquenessFn(slug, excl...)
}

func (m *ServiceMock) Create(ns NewSchool) (School, error) {
	if m.CreateFn == nil {
		return School{}, nil
	}
	return m.CreateFn(ns)
}

func (m *ServiceMock) QueryAll() ([]School, error) {
	if m.QueryAllFn == nil {
		return nil, nil
	}
	return m.QueryAllFn()
}

func (m *ServiceMock) GetByID(id string) (School, error) {
	if m.GetByIDFn == nil {
		return School{}, ErrNotFound
	}
	return m.GetByIDFn(id)
}

func (m *ServiceMock) GetBySlug(slug string) (School, error) {
	if m.GetBySlugFn == nil {
		return School{}, ErrNotFound
	}
	return m.GetBySlugFn(slug)
}

func (m *ServiceMock) Update(id string, us UpdateSchool) (School, error) {
	if m.UpdateFn == nil {
		return School{}, nil
	}
	return m.UpdateFn(id, us)
}

func (m *ServiceMock) Delete(ids ...string) error {
	if m.DeleteFn == nil {
		return nil
	}
	return m.DeleteFn(ids...)
}

func (m *ServiceMock) ContactEmail(ctx context.Context, schoolID string) (mail.Address, error) {
	if m.ContactEmailFn == nil {
		return mail.Address{}, ErrNotFound
	}
	return m.ContactEmailFn(ctx, schoolID)
}

package school

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/cover"
)

type fakeRepo struct {
	schools map[string]School // by id
}

var _ Repository = (*fakeRepo)(nil)

func newFakeRepo() *fakeRepo {
	return &fakeRepo{schools: make(map[string]School)}
}

func (r *fakeRepo) CheckSlugUniqueness(slug string, excl ...School) error {
	for _, sch := range r.schools {
		if sch.Slug != slug {
			continue
		}
		excluded := false
		for _, ex := range excl {
			if ex.ID == sch.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return ErrNameExists
		}
	}
	return nil
}

func (r *fakeRepo) CreateSchool(sch School) (School, error) {
	r.schools[sch.ID] = sch
	return sch, nil
}

func (r *fakeRepo) QueryAllSchools() ([]School, error) {
	out := make([]School, 0, len(r.schools))
	for _, sch := range r.schools {
		out = append(out, sch)
	}
	return out, nil
}

func (r *fakeRepo) GetSchoolByID(id string) (School, error) {
	if sch, ok := r.schools[id]; ok {
		return sch, nil
	}
	return School{}, ErrNotFound
}

func (r *fakeRepo) GetSchoolBySlug(slug string) (School, error) {
	for _, sch := range r.schools {
		if sch.Slug == slug {
			return sch, nil
		}
	}
	return School{}, ErrNotFound
}

func (r *fakeRepo) UpdateSchool(sch School, isActive *bool) (School, error) {
	orig, ok := r.schools[sch.ID]
	if !ok {
		return School{}, ErrNotFound
	}
	orig.Name = sch.Name
	orig.Slug = sch.Slug
	orig.ContactEmail = sch.ContactEmail
	if sch.Branches != nil {
		orig.Branches = sch.Branches
	}
	if sch.EnabledGrades != nil {
		orig.EnabledGrades = sch.EnabledGrades
	}
	if isActive != nil {
		orig.IsActive = *isActive
	}
	orig.UpdatedAt = sch.UpdatedAt
	r.schools[sch.ID] = orig
	return orig, nil
}

func (r *fakeRepo) DeleteSchoolsByID(ids ...string) error {
	for _, id := range ids {
		delete(r.schools, id)
	}
	return nil
}

func newSchool(grades ...cover.Grade) NewSchool {
	if len(grades) == 0 {
		grades = cover.AllGrades
	}
	return NewSchool{
		Name:              "Sunrise Academy",
		ContactEmail:      "head@sunrise.test",
		EnabledGrades:     grades,
		AccessCode:        "bright-mornings-42",
		AccessCodeConfirm: "bright-mornings-42",
	}
}

func TestNewSchool_Validate(t *testing.T) {
	withCode := func(code string) NewSchool {
		ns := newSchool()
		ns.AccessCode = code
		ns.AccessCodeConfirm = code
		return ns
	}

	tests := []struct {
		name    string
		ns      NewSchool
		wantErr bool
	}{
		{name: "ok", ns: newSchool()},
		{name: "missing name", ns: func() NewSchool { ns := newSchool(); ns.Name = ""; return ns }(), wantErr: true},
		{name: "bad email", ns: func() NewSchool { ns := newSchool(); ns.ContactEmail = "nope"; return ns }(), wantErr: true},
		{name: "unknown grade", ns: newSchool("kindergarten"), wantErr: true},
		{name: "code confirm mismatch", ns: func() NewSchool { ns := newSchool(); ns.AccessCodeConfirm = "other-code-42"; return ns }(), wantErr: true},
		{name: "code too short", ns: withCode("short1"), wantErr: true},
		{name: "code all numeric", ns: withCode("1234567890"), wantErr: true},
		{name: "code similar to name", ns: withCode("sunrise-academy"), wantErr: true},
		{name: "strong code", ns: withCode("jacaranda blue 77")},
	}

	svc := NewService(newFakeRepo())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ns.Validate(svc)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestService_Create(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	ns := newSchool(cover.GradeNursery, cover.GradeUKG)
	assert.NoError(t, ns.Validate(svc))
	sch, err := svc.Create(ns)
	assert.NoError(t, err)
	assert.NotEmpty(t, sch.ID)
	assert.Equal(t, "sunrise-academy", sch.Slug)
	assert.True(t, sch.IsActive)
	assert.NoError(t, sch.CheckAccessCode("bright-mornings-42"))
	assert.Error(t, sch.CheckAccessCode("wrong-code-42"))

	// duplicate name rejected at validation time
	dup := newSchool()
	err = dup.Validate(svc)
	assert.Error(t, err)
	var vErr *core.ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestService_Update(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	ns := newSchool()
	assert.NoError(t, ns.Validate(svc))
	sch, err := svc.Create(ns)
	assert.NoError(t, err)

	us := UpdateSchool{Name: "Sunrise International"}
	assert.NoError(t, us.Validate(sch, svc))
	assert.Equal(t, sch.ContactEmail, us.ContactEmail) // backfilled from the original

	updated, err := svc.Update(sch.ID, us)
	assert.NoError(t, err)
	assert.Equal(t, "sunrise-international", updated.Slug)
	assert.Equal(t, sch.EnabledGrades, updated.EnabledGrades) // untouched
}

func TestService_ContactEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)

	ns := newSchool()
	assert.NoError(t, ns.Validate(svc))
	sch, err := svc.Create(ns)
	assert.NoError(t, err)

	addr, err := svc.ContactEmail(context.Background(), sch.ID)
	assert.NoError(t, err)
	assert.Equal(t, "head@sunrise.test", addr.Address)
	assert.Equal(t, "Sunrise Academy", addr.Name)

	_, err = svc.ContactEmail(context.Background(), "missing")
	assert.Equal(t, ErrNotFound, err)
}

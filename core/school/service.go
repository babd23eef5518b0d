package school

import (
	"context"
	"errors"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/cover"
)

var (
	// errors
	ErrNotFound   = errors.New("school not found")
	ErrNameExists = errors.New("a school with this name already exists")
)

type (
	Repository interface {
		CheckSlugUniqueness(slug string, excludedSchools ...School) error
		CreateSchool(sch School) (School, error)
		QueryAllSchools() ([]School, error)
		GetSchoolByID(id string) (School, error)
		GetSchoolBySlug(slug string) (School, error)
		UpdateSchool(sch School, isActive *bool) (School, error)
		DeleteSchoolsByID(ids ...string) error
	}

	ServiceInterface interface {
		CheckUniqueness(slug string, excl ...School) error
		Create(ns NewSchool) (School, error)
		QueryAll() ([]School, error)
		GetByID(id string) (School, error)
		GetBySlug(slug string) (School, error)
		Update(id string, us UpdateSchool) (School, error)
		Delete(ids ...string) error
		ContactEmail(ctx context.Context, schoolID string) (mail.Address, error)
	}

	Service struct {
		repo Repository
	}
)

var (
	_ ServiceInterface       = (*Service)(nil)
	_ cover.ContactDirectory = (*Service)(nil)
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(slug string, excl ...School) error {
	if err := svc.repo.CheckSlugUniqueness(slug, excl...); err != nil {
		if err == ErrNameExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ns NewSchool) (School, error) {
	now := time.Now().UTC()
	sch := School{
		ID:            uuid.NewString(),
		Name:          ns.Name,
		Slug:          core.Slugify(ns.Name),
		ContactEmail:  ns.ContactEmail,
		Branches:      ns.Branches,
		EnabledGrades: ns.EnabledGrades,
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := sch.SetAccessCode(ns.AccessCode); err != nil {
		return School{}, err
	}
	return svc.repo.CreateSchool(sch)
}

func (svc *Service) QueryAll() ([]School, error) {
	return svc.repo.QueryAllSchools()
}

func (svc *Service) GetByID(id string) (School, error) {
	return svc.repo.GetSchoolByID(core.CleanString(id))
}

func (svc *Service) GetBySlug(slug string) (School, error) {
	return svc.repo.GetSchoolBySlug(core.CleanString(slug, true /* lower */))
}

func (svc *Service) Update(id string, us UpdateSchool) (School, error) {
	sch := School{
		ID:            id,
		Name:          us.Name,
		Slug:          core.Slugify(us.Name),
		ContactEmail:  us.ContactEmail,
		Branches:      us.Branches,
		EnabledGrades: us.EnabledGrades,
		UpdatedAt:     time.Now().UTC(),
	}
	return svc.repo.UpdateSchool(sch, us.IsActive)
}

func (svc *Service) Delete(ids ...string) error {
	return svc.repo.DeleteSchoolsByID(ids...)
}

// ContactEmail resolves the school's notification address. Satisfies the
// cover workflow's ContactDirectory.
func (svc *Service) ContactEmail(_ context.Context, schoolID string) (mail.Address, error) {
	sch, err := svc.GetByID(schoolID)
	if err != nil {
		return mail.Address{}, err
	}
	return mail.Address{Name: sch.Name, Address: sch.ContactEmail}, nil
}

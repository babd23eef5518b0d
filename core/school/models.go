package school

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/cover"
)

type (
	// School is an onboarded client of the print-production console. Its
	// access code is the wizard's login secret, stored bcrypt-hashed.
	School struct {
		ID             string        `json:"id"`
		Name           string        `json:"name"`
		Slug           string        `json:"slug"`
		ContactEmail   string        `json:"contact_email"`
		Branches       []Branch      `json:"branches"`
		EnabledGrades  []cover.Grade `json:"enabled_grades"`
		AccessCodeHash []byte        `json:"-"`
		IsActive       bool          `json:"is_active"`
		CreatedAt      time.Time     `json:"created_at"` // UTC
		UpdatedAt      time.Time     `json:"updated_at"` // UTC
	}

	// Branch is a campus of a school. Branches share the school's cover
	// selections; they only matter for delivery.
	Branch struct {
		Name    string `json:"name"`
		City    string `json:"city,omitempty"`
		Address string `json:"address,omitempty"`
	}
)

func (s *School) SetAccessCode(code string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	s.AccessCodeHash = hash
	return nil
}

func (s *School) CheckAccessCode(code string) error {
	return bcrypt.CompareHashAndPassword(s.AccessCodeHash, []byte(code))
}

// NewSchool contains information needed to onboard a new School.
type NewSchool struct {
	Name              string        `json:"name" validate:"required"`
	ContactEmail      string        `json:"contact_email" validate:"required,email"`
	Branches          []Branch      `json:"branches"`
	EnabledGrades     []cover.Grade `json:"enabled_grades" validate:"required,gradekeys"`
	AccessCode        string        `json:"access_code" validate:"required"`
	AccessCodeConfirm string        `json:"access_code_confirm" validate:"required,eqfield=AccessCode"`
}

func (ns *NewSchool) Validate(svc ServiceInterface) error {
	ns.Name = core.CleanString(ns.Name)
	ns.ContactEmail = core.CleanString(ns.ContactEmail, true /* lower */)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(core.Slugify(ns.Name))
}

// UpdateSchool defines what information may be provided to modify an existing School.
type UpdateSchool struct {
	Name          string        `json:"name"`
	ContactEmail  string        `json:"contact_email" validate:"omitempty,email"`
	Branches      []Branch      `json:"branches"`
	EnabledGrades []cover.Grade `json:"enabled_grades" validate:"omitempty,gradekeys"`
	IsActive      *bool         `json:"is_active"`
}

func (us *UpdateSchool) Validate(orig School, svc ServiceInterface) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = orig.Name
	}

	email := core.CleanString(us.ContactEmail, true /* lower */)
	if email != "" {
		us.ContactEmail = email
	} else {
		us.ContactEmail = orig.ContactEmail
	}

	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	if slug := core.Slugify(us.Name); slug != orig.Slug {
		return svc.CheckUniqueness(slug)
	}
	return nil
}

package cover

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kitabu/core"
)

var (
	gradeKeyTag  = "gradekey"
	gradeKeyText = "invalid grade"

	gradeKeysTag  = "gradekeys"
	gradeKeysText = "invalid grades"

	statusTag  = "coverstatus"
	statusText = "invalid workflow status"
)

func init() {
	// register validators
	_ = core.Validate.RegisterValidation(gradeKeyTag, gradeKeyValidation)
	core.RegisterCustomTranslation(gradeKeyTag, gradeKeyText)

	_ = core.Validate.RegisterValidation(gradeKeysTag, gradeKeysValidation)
	core.RegisterCustomTranslation(gradeKeysTag, gradeKeysText)

	_ = core.Validate.RegisterValidation(statusTag, statusValidation)
	core.RegisterCustomTranslation(statusTag, statusText)
}

// gradeKeyValidation checks that the field is one of the known grades.
func gradeKeyValidation(fl validator.FieldLevel) bool {
	return Grade(fl.Field().String()).Valid()
}

// gradeKeysValidation checks that all provided grades are known.
func gradeKeysValidation(fl validator.FieldLevel) bool {
	grades, ok := fl.Field().Interface().([]Grade)
	if !ok {
		return false
	}
	for _, g := range grades {
		if !g.Valid() {
			return false
		}
	}
	return true
}

// statusValidation checks that the field is one of the four workflow statuses.
func statusValidation(fl validator.FieldLevel) bool {
	return Status(fl.Field().Int()).Valid()
}

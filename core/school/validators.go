package school

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/trezcool/kitabu/core"
)

// access-code policy
var (
	codeMinLen     = 8
	codeMinLenTag  = "codeminlen"
	codeMinLenText = fmt.Sprintf("access code must contain at least %d characters", codeMinLen)

	codeNotAllNumTag  = "codenotallnum"
	codeNotAllNumText = "access code cannot be entirely numeric"

	codeMaxSim      = .7
	codeAttrSimTag  = "codetoosim"
	codeAttrSimText = "access code cannot be similar to the school name"
)

func init() {
	core.Validate.RegisterStructValidation(schoolStructValidation, NewSchool{})
	core.RegisterCustomTranslation(codeMinLenTag, codeMinLenText)
	core.RegisterCustomTranslation(codeNotAllNumTag, codeNotAllNumText)
	core.RegisterCustomTranslation(codeAttrSimTag, codeAttrSimText)
}

// schoolStructValidation applies the access-code policy to NewSchool:
// - minLen: 8
// - not all numeric
// - no similarity to the school's name or slug
func schoolStructValidation(sl validator.StructLevel) {
	ns, ok := sl.Current().Interface().(NewSchool)
	if !ok {
		return
	}
	validateAccessCode(ns.AccessCode, ns.Name, sl)
}

func validateAccessCode(code, name string, sl validator.StructLevel) {
	reportErr := func(tag string) {
		sl.ReportError(code, "access_code", "AccessCode", tag, "")
	}

	if len(code) < codeMinLen {
		reportErr(codeMinLenTag)
		return
	}

	digitCount := 0
	for _, char := range code {
		if unicode.IsDigit(char) {
			digitCount++
		}
	}
	if digitCount == len(code) {
		reportErr(codeNotAllNumTag)
		return
	}

	getRatio := func(pass, attr string) float64 {
		if attr == "" {
			return 0
		}
		return difflib.NewMatcher(strings.Split(pass, ""), strings.Split(attr, "")).QuickRatio()
	}
	lcode := strings.ToLower(code)
	if getRatio(lcode, strings.ToLower(name)) >= codeMaxSim ||
		getRatio(lcode, core.Slugify(name)) >= codeMaxSim {
		reportErr(codeAttrSimTag)
	}
}

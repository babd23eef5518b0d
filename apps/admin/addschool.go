package main

import (
	"fmt"
	"strings"

	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
)

// addSchool onboards a new school.School with the given enabled grades.
func (cli *commandLine) addSchool(name, email, gradesCSV, accessCode string) error {
	grades := make([]cover.Grade, 0, 4)
	for _, g := range strings.Split(gradesCSV, ",") {
		if g = strings.TrimSpace(g); g != "" {
			grades = append(grades, cover.Grade(strings.ToLower(g)))
		}
	}

	ns := school.NewSchool{
		Name:              name,
		ContactEmail:      email,
		EnabledGrades:     grades,
		AccessCode:        accessCode,
		AccessCodeConfirm: accessCode,
	}
	if err := ns.Validate(cli.schoolSvc); err != nil {
		return err
	}

	sch, err := cli.schoolSvc.Create(ns)
	if err != nil {
		return err
	}
	fmt.Printf("school %q created: id=%s slug=%s\n", sch.Name, sch.ID, sch.Slug)
	return nil
}

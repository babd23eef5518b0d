package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
)

// setStatus overrides a school's workflow status as an admin.
func (cli *commandLine) setStatus(schoolID string, target cover.Status) error {
	ctx := context.Background()

	grades := cover.AllGrades
	if sch, err := cli.schoolSvc.GetByID(schoolID); err == nil {
		grades = sch.EnabledGrades
	} else if errors.Cause(err) != school.ErrNotFound {
		return err
	}

	w, _, err := cli.coverSvc.Open(ctx, schoolID, grades)
	if err != nil {
		return err
	}
	snap, err := cli.coverSvc.OverrideStatus(ctx, w, cover.RoleAdmin, target)
	if err != nil {
		return err
	}
	fmt.Printf("school %s status set to %s\n", schoolID, snap.Status)
	return nil
}

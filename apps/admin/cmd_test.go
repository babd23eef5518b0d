package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"testing"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kitabu/core"
	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
	inmemdb "github.com/trezcool/kitabu/storage/database/inmem"
	"github.com/trezcool/kitabu/storage/sessioncache"
)

var (
	schoolSvc school.ServiceInterface
	coverRepo cover.Repository
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func setup(t *testing.T) *commandLine {
	t.Helper()

	db, err := inmemdb.Open()
	if err != nil {
		t.Fatalf("inmemdb.Open(): %v", err)
	}
	coverRepo = inmemdb.NewCoverRepository(db)
	schoolSvc = school.NewService(inmemdb.NewSchoolRepository(db))
	coverSvc := cover.NewService(coverRepo, sessioncache.NewMemoryCache(), nil, schoolSvc, nil, nopLogger{})

	return &commandLine{
		schoolSvc: schoolSvc,
		coverSvc:  coverSvc,
	}
}

type cliTest struct {
	name       string
	args       []string // without program name
	wantErr    error
	wantErrStr string
	extra      interface{}
}

func Test_commandLine_migrate(t *testing.T) {
	cli := setup(t)

	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to":
			if len(args) == 0 {
				return fmt.Errorf("up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		case "down-to":
			if len(args) == 0 {
				return fmt.Errorf("down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION")
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		return nil
	}

	tests := []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: no args", args: []string{"migrate", "down-to"}, wantErrStr: "down-to must be of form: goose [OPTIONS] DRIVER DBSTRING down-to VERSION"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-by-one", args: []string{"migrate", "up-by-one"}},
		{name: "up-to", args: []string{"migrate", "up-to", "2"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "down-to", args: []string{"migrate", "down-to", "1"}},
		{name: "redo", args: []string{"migrate", "redo"}},
		{name: "reset", args: []string{"migrate", "reset"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "version", args: []string{"migrate", "version"}},
		{name: "create", args: []string{"migrate", "create", "cover_upload", "sql"}},
		{name: "fix", args: []string{"migrate", "fix"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != nil {
				if tt.wantErr != nil {
					if err != tt.wantErr {
						t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
					}
				} else if tt.wantErrStr != "" {
					if err.Error() != tt.wantErrStr {
						t.Errorf("cli.run() error.Error() = %s, wantErrStr %s", err.Error(), tt.wantErrStr)
					}
				} else {
					t.Errorf("cli.run() unexpected error = %v", err)
				}
			}
		})
	}
}

func Test_commandLine_addSchool(t *testing.T) {
	cli := setup(t)

	addArgs := []string{
		"addschool",
		"-name", "Sunrise Academy",
		"-email", "head@sunrise.test",
		"-grades", "nursery, lkg",
	}

	type extra struct {
		code string
	}
	tests := []cliTest{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "no flags", args: []string{"addschool"}, wantErr: errHelp},
		{name: "name but no email", args: []string{"addschool", "-name", "Sunrise Academy"}, wantErr: errHelp},
		{name: "no access code", args: addArgs, wantErr: errHelp},
		{name: "access code too weak", args: addArgs, extra: extra{code: "1234"}},
		{name: "access code too similar to name", args: addArgs, extra: extra{code: "sunrise-academy"}},
		{name: "unknown grade", args: []string{"addschool", "-name", "Hilltop Prep", "-email", "office@hilltop.test", "-grades", "kindergarten"},
			extra: extra{code: "jacaranda blue 77"}},
		{name: "ok", args: addArgs, extra: extra{code: "jacaranda blue 77"}},
		{name: "duplicate name", args: addArgs, extra: extra{code: "mango orchard 19"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		readPasswordFunc = func(fd int) ([]byte, error) {
			if extra, ok := tt.extra.(extra); ok {
				return []byte(extra.code), nil
			}
			return nil, nil
		}

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)

			switch tt.name {
			case "ok":
				if err != nil {
					t.Fatalf("cli.run() unexpected error = %v", err)
				}
				sch, err := schoolSvc.GetBySlug("sunrise-academy")
				if err != nil {
					t.Fatalf("GetBySlug(): %v", err)
				}
				if err := sch.CheckAccessCode("jacaranda blue 77"); err != nil {
					t.Error("access code does not match")
				}
				if len(sch.EnabledGrades) != 2 {
					t.Errorf("EnabledGrades = %v; want [nursery lkg]", sch.EnabledGrades)
				}
				if !sch.IsActive {
					t.Error("expected a new school to be active")
				}
			case "access code too weak", "access code too similar to name", "unknown grade":
				var vErrs validator.ValidationErrors
				if !errors.As(err, &vErrs) {
					t.Errorf("cli.run() error = %v, want validator.ValidationErrors", err)
				}
			case "duplicate name":
				var vErr *core.ValidationError
				if !errors.As(err, &vErr) {
					t.Errorf("cli.run() error = %v, want *core.ValidationError", err)
				}
			default:
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
			}
		})
	}
}

func Test_commandLine_setStatus(t *testing.T) {
	cli := setup(t)

	sch, err := schoolSvc.Create(school.NewSchool{
		Name:          "Hilltop Prep",
		ContactEmail:  "office@hilltop.test",
		EnabledGrades: []cover.Grade{cover.GradeNursery},
		AccessCode:    "jacaranda blue 77",
	})
	if err != nil {
		t.Fatalf("creating school: %v", err)
	}

	tests := []cliTest{
		{name: "no flags", args: []string{"setstatus"}, wantErr: errHelp},
		{name: "school but no status", args: []string{"setstatus", "-school", sch.ID}, wantErr: errHelp},
		{name: "frozen is never an admin target", args: []string{"setstatus", "-school", sch.ID, "-status", "4"},
			wantErr: cover.ErrTransitionNotAllowed},
		{name: "invalid status", args: []string{"setstatus", "-school", sch.ID, "-status", "9"},
			wantErr: cover.ErrTransitionNotAllowed},
		{name: "publish for review", args: []string{"setstatus", "-school", sch.ID, "-status", "3"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := cli.run(args)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("cli.run() unexpected error = %v", err)
			}

			status, ok, err := coverRepo.GetStatus(context.Background(), sch.ID)
			if err != nil {
				t.Fatalf("GetStatus(): %v", err)
			}
			if !ok {
				t.Fatal("expected a status document")
			}
			if status != cover.StatusView {
				t.Errorf("status = %v; want view", status)
			}
		})
	}
}

func Test_commandLine_adminToken(t *testing.T) {
	cli := setup(t)

	if err := cli.run([]string{"admin", "admintoken"}); err != nil {
		t.Errorf("cli.run() unexpected error = %v", err)
	}
}

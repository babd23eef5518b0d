package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/trezcool/kitabu/core/cover"
	"github.com/trezcool/kitabu/core/school"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db        *sql.DB
	schoolSvc school.ServiceInterface
	coverSvc  cover.ServiceInterface
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate COMMAND [ARGS] - run database migrations (up, down, status, ...)")
	fmt.Println("  addschool -name NAME -email EMAIL -grades GRADES - onboard a school; the access code is prompted next")
	fmt.Println("  setstatus -school ID -status N - override a school's workflow status (1=explore, 2=preparing, 3=view)")
	fmt.Println("  admintoken [-subject NAME] - print a signed admin API token")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addSchoolCmd := flag.NewFlagSet("addschool", flag.ExitOnError)
	addSchoolName := addSchoolCmd.String("name", "", "The school's name.")
	addSchoolEmail := addSchoolCmd.String("email", "", "The school's contact email.")
	addSchoolGrades := addSchoolCmd.String("grades", "",
		"Comma-separated enabled grades (playgroup,nursery,lkg,ukg). The access code will be prompted next.")

	setStatusCmd := flag.NewFlagSet("setstatus", flag.ExitOnError)
	setStatusSchool := setStatusCmd.String("school", "", "The school's ID.")
	setStatusTarget := setStatusCmd.Int("status", 0, "The target workflow status.")

	tokenCmd := flag.NewFlagSet("admintoken", flag.ExitOnError)
	tokenSubject := tokenCmd.String("subject", "ops", "The token subject.")

	switch args[1] {
	case "migrate":
		if len(args) < 3 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(args[2:])

	case "addschool":
		if err := addSchoolCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addSchoolName == "" || *addSchoolEmail == "" || *addSchoolGrades == "" {
			addSchoolCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter access code:")
		code, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(code) == 0 {
			addSchoolCmd.Usage()
			return errHelp
		}
		return cli.addSchool(*addSchoolName, *addSchoolEmail, *addSchoolGrades, string(code))

	case "setstatus":
		if err := setStatusCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *setStatusSchool == "" || *setStatusTarget == 0 {
			setStatusCmd.Usage()
			return errHelp
		}
		return cli.setStatus(*setStatusSchool, cover.Status(*setStatusTarget))

	case "admintoken":
		if err := tokenCmd.Parse(args[2:]); err != nil {
			return err
		}
		return cli.printAdminToken(*tokenSubject)

	default:
		cli.printUsage()
		return errHelp
	}
}

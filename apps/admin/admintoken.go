package main

import (
	"fmt"

	echoapi "github.com/trezcool/kitabu/apps/api/echo"
)

// printAdminToken prints a signed admin JWT for API access.
func (cli *commandLine) printAdminToken(subject string) error {
	token, err := echoapi.GenerateToken(echoapi.GetAdminClaims(subject))
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}

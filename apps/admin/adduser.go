package main

import (
	"context"
	"fmt"

	"github.com/trezcool/kokulite/core/unit"
	"github.com/trezcool/kokulite/core/user"
)

func unitCategory(s string) unit.Category {
	if s == "" {
		return ""
	}
	return unit.ParseCategory(s, "")
}

// addUser registers a user the way the public registration does.
func (cli *commandLine) addUser(nu user.NewUser) error {
	ctx := context.Background()
	if err := nu.Validate(ctx, cli.validate, cli.usrSvc); err != nil {
		return err
	}
	usr, err := cli.usrSvc.Register(ctx, nu)
	if err != nil {
		return err
	}
	fmt.Printf("registered %s as %s of school %s\n", usr.Email, usr.Role, usr.SchoolID)
	return nil
}

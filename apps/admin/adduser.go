package main

import (
	"context"

	"github.com/trezcool/scola/core"
	"github.com/trezcool/scola/core/user"
)

// addUser creates a user, or reactivates and updates the one with the same email.
func (cli *commandLine) addUser(name, email, pwd, role, grade string) error {
	ctx := context.Background()

	usr, err := cli.usrSvc.GetByEmail(ctx, email)
	if err != nil {
		if !core.IsNotFound(err) {
			return err
		}
		_, err = cli.usrSvc.Create(ctx, user.NewUser{
			Name:            name,
			Email:           email,
			Password:        pwd,
			PasswordConfirm: pwd,
			Role:            role,
			Grade:           grade,
		})
		return err
	}

	active := true
	uu := user.UpdateUser{
		Name:            name,
		IsActive:        &active,
		Role:            role,
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if grade != "" {
		uu.Grade = &grade
	}
	_, err = cli.usrSvc.Update(ctx, usr, uu)
	return err
}

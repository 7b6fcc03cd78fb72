package main

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/user"
)

func (cli *commandLine) addUserCmd() *cobra.Command {
	var uname, email string
	var isAdmin bool

	cmd := &cobra.Command{
		Use:   "adduser",
		Short: "Create a user, or update the user holding the username or email. The password is prompted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" || email == "" {
				_ = cmd.Usage()
				return errHelp
			}
			pwd, err := cli.readPassword(cmd)
			if err != nil {
				return err
			}
			usr, err := cli.addUser(uname, email, pwd, isAdmin)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cli.out, "user %s (%s) saved with role %s\n", usr.Username, usr.Email, usr.Role)
			return nil
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "the user's username")
	cmd.Flags().StringVar(&email, "email", "", "the user's email")
	cmd.Flags().BoolVar(&isAdmin, "admin", false, "give the user the administrator role")
	return cmd
}

func (cli *commandLine) findUser(ctx context.Context, uname, email string) (user.User, error) {
	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Username: uname})
	if errors.Cause(err) != user.ErrNotFound {
		return usr, err
	}
	return cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
}

// addUser updates or creates a user.User
func (cli *commandLine) addUser(uname, email, pwd string, isAdmin bool) (user.User, error) {
	ctx := context.Background()
	nu := user.NewUser{
		Username:        core.CleanString(uname, true /* lower */),
		Email:           core.CleanString(email, true /* lower */),
		Password:        pwd,
		PasswordConfirm: pwd,
	}
	if err := cli.validate.Struct(nu); err != nil {
		return user.User{}, cli.validationError(err)
	}

	usr, err := cli.findUser(ctx, nu.Username, nu.Email)
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return user.User{}, err
		}
		usr = user.User{Role: user.DefaultRole, CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
	}
	usr.Username = nu.Username
	usr.Email = nu.Email
	if isAdmin {
		usr.Role = user.RoleAdministrator
	}
	usr.IsActive = true
	usr.UpdatedAt = time.Now().UTC().Truncate(time.Microsecond)
	if err = usr.SetPassword(pwd); err != nil {
		return user.User{}, errors.Wrap(err, "setting password")
	}
	return cli.usrRepo.UpdateOrCreateUser(ctx, usr)
}

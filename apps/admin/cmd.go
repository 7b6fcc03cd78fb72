package main

import (
	"database/sql"
	"fmt"
	"io"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/course"
	"github.com/QinlinChen/StuHub/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	db         *sql.DB
	driver     string
	usrRepo    user.Repository
	crsSvc     course.Service
	validate   *validator.Validate
	translator ut.Translator
	out        io.Writer
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "StuHub administration commands",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetOut(cli.out)
	root.SetErr(cli.out)
	root.AddCommand(
		cli.migrateCmd(),
		cli.addUserCmd(),
		cli.resetPasswordCmd(),
		cli.importCmd(),
		cli.statsCmd(),
	)
	return root
}

// run executes the command line args (program name included).
func (cli *commandLine) run(args []string) error {
	root := cli.rootCmd()
	if len(args) < 2 {
		_ = root.Usage()
		return errHelp
	}
	if _, _, err := root.Find(args[1:]); err != nil {
		_ = root.Usage()
		return errHelp
	}
	root.SetArgs(args[1:])
	return root.Execute()
}

// readPassword prompts for a password. An empty password prints the usage of cmd.
func (cli *commandLine) readPassword(cmd *cobra.Command) (string, error) {
	_, _ = fmt.Fprint(cli.out, "Enter password:")
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	_, _ = fmt.Fprintln(cli.out)
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	if len(pwd) == 0 {
		_ = cmd.Usage()
		return "", errHelp
	}
	return string(pwd), nil
}

// validationError joins the translated validation messages into one error.
func (cli *commandLine) validationError(err error) error {
	vErrs, ok := errors.Cause(err).(validator.ValidationErrors)
	if !ok {
		return err
	}
	msg := ""
	for fld, text := range core.TranslateValidationErrors(vErrs, cli.translator) {
		if msg != "" {
			msg += "; "
		}
		msg += fld + ": " + text
	}
	return errors.New(msg)
}

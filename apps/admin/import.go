package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/QinlinChen/StuHub/core"
	"github.com/QinlinChen/StuHub/core/user"
)

func (cli *commandLine) importCmd() *cobra.Command {
	var uname string
	var term int

	cmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import the courses of an exported transcript page into a user's term",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" || len(args) != 1 {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.importTranscript(uname, term, args[0])
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "the user's username or email")
	cmd.Flags().IntVar(&term, "term", 0, "the term (1 to 8) the courses were taken in")
	return cmd
}

func (cli *commandLine) contextUser(ctx context.Context, uname string) (user.User, error) {
	return cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: core.CleanString(uname, true /* lower */)})
}

func (cli *commandLine) importTranscript(uname string, term int, path string) error {
	ctx := context.Background()
	usr, err := cli.contextUser(ctx, uname)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return errors.Wrap(err, "opening transcript")
	}
	defer f.Close()

	res, err := cli.crsSvc.ImportTranscript(ctx, usr.ID, term, f)
	if err != nil {
		if vErr, ok := errors.Cause(err).(*core.ValidationError); ok {
			return errors.New(vErr.Error())
		}
		return err
	}

	_, _ = fmt.Fprintf(cli.out, "imported %d courses into term %d\n", len(res.Imported), term)
	if len(res.Unclassified) > 0 {
		_, _ = fmt.Fprintf(cli.out, "%d courses could not be classified:\n", len(res.Unclassified))
		w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
		for _, row := range res.Unclassified {
			_, _ = fmt.Fprintf(w, "  %s\t%s\t%d\t%g\n", row.Name, row.Label, row.Credit, row.Score)
		}
		_ = w.Flush()
	}
	return nil
}

package main

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/QinlinChen/StuHub/core/course"
)

func (cli *commandLine) statsCmd() *cobra.Command {
	var uname, format string
	var tr course.TermRange

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print the GPA and credit statistics of a user",
		RunE: func(cmd *cobra.Command, args []string) error {
			if uname == "" {
				_ = cmd.Usage()
				return errHelp
			}
			return cli.stats(uname, tr, format)
		},
	}
	cmd.Flags().StringVar(&uname, "username", "", "the user's username or email")
	cmd.Flags().IntVar(&tr.From, "term-from", 0, "first term included")
	cmd.Flags().IntVar(&tr.To, "term-to", 0, "last term included")
	cmd.Flags().StringVar(&format, "format", "yaml", "output format: yaml or json")
	return cmd
}

func (cli *commandLine) stats(uname string, tr course.TermRange, format string) error {
	if format != "yaml" && format != "json" {
		return errors.Errorf("unknown format %q", format)
	}
	if err := tr.Validate(cli.validate); err != nil {
		return cli.validationError(err)
	}

	ctx := context.Background()
	usr, err := cli.contextUser(ctx, uname)
	if err != nil {
		return err
	}
	stats, err := cli.crsSvc.Statistics(ctx, usr.ID, tr)
	if err != nil {
		return err
	}

	if format == "json" {
		enc := json.NewEncoder(cli.out)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(stats), "encoding statistics")
	}
	enc := yaml.NewEncoder(cli.out)
	enc.SetIndent(2)
	if err = enc.Encode(stats); err != nil {
		return errors.Wrap(err, "encoding statistics")
	}
	return errors.Wrap(enc.Close(), "encoding statistics")
}

package main

import (
	"github.com/spf13/cobra"

	"github.com/QinlinChen/StuHub/storage/database"
)

var gooseRunFunc = database.RunMigration // mockable

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a migration command (up, up-by-one, up-to, down, down-to, redo, reset, status, version)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				_ = cmd.Usage()
				return errHelp
			}
			return gooseRunFunc(args[0], cli.db, cli.driver, args[1:]...)
		},
	}
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import workspaces from a pre-2.0 installation",
	Long: `Import the workspace list written by sidstack releases before 2.0.
Each legacy workspace path is opened as a project. The migration runs
once; later invocations are no-ops.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		migrated, err := s.Migrate(cmd.Context())
		if err != nil {
			return err
		}
		if migrated == 0 {
			fmt.Println("Nothing to migrate.")
			return nil
		}
		fmt.Printf("Migrated %d workspace(s)\n", migrated)
		return nil
	},
}

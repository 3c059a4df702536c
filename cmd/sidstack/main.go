package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "sidstack",
	Short: "Manage projects, git worktrees and their port allocations",
	Long: `Sidstack tracks the projects you work on, discovers their git
worktrees, and assigns each worktree a stable set of dev, api and
preview ports. State survives restarts.`,
}

func init() {
	rootCmd.AddCommand(projectCmd)
	rootCmd.AddCommand(worktreeCmd)
	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sidstack version %s\n", version)
	},
}

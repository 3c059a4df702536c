package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var worktreeCmd = &cobra.Command{
	Use:   "worktree",
	Short: "Manage worktrees",
	Long:  "Add, remove, switch and list worktrees of tracked projects",
}

func init() {
	worktreeCmd.AddCommand(worktreeAddCmd)
	worktreeCmd.AddCommand(worktreeRemoveCmd)
	worktreeCmd.AddCommand(worktreeSwitchCmd)
	worktreeCmd.AddCommand(worktreeListCmd)
}

var worktreeAddProject string

var worktreeAddCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Track a worktree path",
	Long: `Track a worktree folder under a project. The branch is read from
the folder's git checkout; the worktree gets its own port set.

Defaults to the active project unless --project is given.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		absPath, err := filepath.Abs(args[0])
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}

		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		projectID := worktreeAddProject
		if projectID == "" {
			projectID = s.ActiveProjectID()
		}
		if projectID == "" {
			return fmt.Errorf("no active project; pass --project")
		}

		wt, err := s.AddWorktree(cmd.Context(), projectID, absPath)
		if err != nil {
			return err
		}
		fmt.Printf("Added worktree '%s' (branch %s)\n", wt.ID, wt.Branch)
		fmt.Printf("  Ports: dev:%d api:%d preview:%d\n", wt.Ports.Dev, wt.Ports.API, wt.Ports.Preview)
		return nil
	},
}

var worktreeRemoveProject string

var worktreeRemoveCmd = &cobra.Command{
	Use:   "remove <worktree-id>",
	Short: "Stop tracking a worktree and free its ports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		projectID := worktreeRemoveProject
		if projectID == "" {
			projectID = s.ActiveProjectID()
		}
		if projectID == "" {
			return fmt.Errorf("no active project; pass --project")
		}

		if err := s.RemoveWorktree(projectID, args[0]); err != nil {
			return err
		}
		fmt.Printf("Removed worktree %s\n", args[0])
		return nil
	},
}

var worktreeSwitchCmd = &cobra.Command{
	Use:   "switch <worktree-id>",
	Short: "Make a worktree active",
	Long: `Make a worktree active. The search spans every project; switching
to a worktree of another project also makes that project active.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.SwitchWorktree(args[0]); err != nil {
			return err
		}
		wt := s.ActiveWorktree()
		fmt.Printf("Switched to worktree '%s' (%s)\n", wt.ID, wt.Path)
		return nil
	},
}

var worktreeListCmd = &cobra.Command{
	Use:   "list",
	Short: "List worktrees across all projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		projects := s.Projects()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, " \tPROJECT\tWORKTREE\tBRANCH\tPATH")
		for _, p := range projects {
			for _, wt := range p.Worktrees {
				marker := " "
				if wt.IsActive && p.ID == s.ActiveProjectID() {
					marker = color.GreenString("*")
				}
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					marker, p.Name, wt.ID, wt.Branch, wt.Path)
			}
		}
		_ = w.Flush()
		return nil
	},
}

func init() {
	worktreeAddCmd.Flags().StringVar(&worktreeAddProject, "project", "", "project id (defaults to active project)")
	worktreeRemoveCmd.Flags().StringVar(&worktreeRemoveProject, "project", "", "project id (defaults to active project)")
}

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
	Long:  "Open, close, switch and list tracked projects",
}

func init() {
	projectCmd.AddCommand(projectOpenCmd)
	projectCmd.AddCommand(projectCloseCmd)
	projectCmd.AddCommand(projectSwitchCmd)
	projectCmd.AddCommand(projectListCmd)
}

var projectOpenCmd = &cobra.Command{
	Use:   "open [path]",
	Short: "Open a project folder",
	Long: `Open a folder as a project. Defaults to the current directory.

If the folder is a git repository, its worktrees are discovered and
each gets a dev, api and preview port. Opening an already-tracked
folder just makes its project active.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}
		absPath, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("invalid path: %w", err)
		}

		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		p, err := s.OpenProject(cmd.Context(), absPath)
		if err != nil {
			return err
		}

		fmt.Printf("Opened project '%s' (%s)\n", p.Name, p.ID)
		for _, wt := range p.Worktrees {
			marker := " "
			if wt.IsActive {
				marker = color.GreenString("*")
			}
			fmt.Printf("  %s %s  %s  dev:%d api:%d preview:%d\n",
				marker, wt.ID, wt.Path, wt.Ports.Dev, wt.Ports.API, wt.Ports.Preview)
		}
		return nil
	},
}

var projectCloseCmd = &cobra.Command{
	Use:   "close <project-id>",
	Short: "Close a project and free its ports",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.CloseProject(args[0]); err != nil {
			return err
		}
		fmt.Printf("Closed project %s\n", args[0])
		return nil
	},
}

var projectSwitchCmd = &cobra.Command{
	Use:   "switch <project-id>",
	Short: "Make a project active",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.SwitchProject(args[0]); err != nil {
			return err
		}
		p := s.ActiveProject()
		fmt.Printf("Switched to project '%s'\n", p.Name)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		projects := s.Projects()
		if len(projects) == 0 {
			fmt.Println("No projects tracked. Run 'sidstack project open' in a repository.")
			return nil
		}

		activeID := s.ActiveProjectID()
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, " \tID\tNAME\tWORKTREES\tREMOTE")
		for _, p := range projects {
			marker := " "
			if p.ID == activeID {
				marker = color.GreenString("*")
			}
			remote := p.GitRemote
			if remote == "" {
				remote = "-"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				marker, p.ID, p.Name, len(p.Worktrees), remote)
		}
		_ = w.Flush()
		return nil
	},
}

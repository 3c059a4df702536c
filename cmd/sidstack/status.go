package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the active project and worktree",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		p := s.ActiveProject()
		if p == nil {
			fmt.Println("No active project.")
			return nil
		}

		fmt.Printf("Project:  %s (%s)\n", color.CyanString(p.Name), p.ID)
		if p.GitRemote != "" {
			fmt.Printf("Remote:   %s\n", p.GitRemote)
		}
		fmt.Printf("Context:  %s\n", p.SharedContextPath)

		wt := s.ActiveWorktree()
		if wt == nil {
			fmt.Println("Worktree: none")
			return nil
		}
		fmt.Printf("Worktree: %s (branch %s)\n", color.CyanString(wt.ID), wt.Branch)
		fmt.Printf("Path:     %s\n", wt.Path)
		fmt.Printf("Ports:    dev:%d api:%d preview:%d\n", wt.Ports.Dev, wt.Ports.API, wt.Ports.Preview)

		if saveErr := s.LastSaveError(); saveErr != nil {
			color.Yellow("warning: last save failed: %v", saveErr.Err)
		}
		return nil
	},
}

package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Inspect port allocations",
	Long:  "List and release the ports worktrees hold",
}

func init() {
	portsCmd.AddCommand(portsListCmd)
	portsCmd.AddCommand(portsReleaseCmd)
}

var portsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List allocated ports across all projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "PROJECT\tWORKTREE\tDEV\tAPI\tPREVIEW")
		rows := 0
		for _, p := range s.Projects() {
			for _, wt := range p.Worktrees {
				_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
					p.Name, wt.ID,
					formatPort(wt.Ports.Dev),
					formatPort(wt.Ports.API),
					formatPort(wt.Ports.Preview))
				rows++
			}
		}
		if rows == 0 {
			fmt.Println("No ports allocated.")
			return nil
		}
		_ = w.Flush()
		return nil
	},
}

var portsReleaseCmd = &cobra.Command{
	Use:   "release <project-id> <worktree-id>",
	Short: "Release a worktree's ports without removing it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, cleanup, err := openStore()
		if err != nil {
			return err
		}
		defer cleanup()

		if err := s.ReleasePorts(args[0], args[1]); err != nil {
			return err
		}
		fmt.Printf("Released ports of %s/%s\n", args[0], args[1])
		return nil
	},
}

func formatPort(port int) string {
	if port == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", port)
}

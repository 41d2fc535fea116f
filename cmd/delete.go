package cmd

import (
	"errors"
	"fmt"

	"github.com/ChristianPRO1982/audio-splitter/internal"
	"github.com/spf13/cobra"
)

var (
	deleteAll bool
)

var deleteCmd = &cobra.Command{
	Use:   "delete [project-id]",
	Short: "Delete a project or all projects",
	Long: `Delete a project's upload, exports and cached waveform from the backend.

Examples:
  audio-splitter delete 0190b6a0-7c1e-7d4c-9d7e-3b1f0e5a2c11
  audio-splitter delete --all`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if deleteAll == (len(args) == 1) {
			return errors.New("pass either a project id or --all")
		}

		client := newClient()
		printer := internal.NewPrinter(cmd.OutOrStdout(), cmd.ErrOrStderr())
		if deleteAll {
			if err := client.DeleteAllProjects(cmd.Context()); err != nil {
				return fmt.Errorf("failed to delete projects: %w", err)
			}
			printer.Success("All projects deleted")
			return nil
		}

		if err := client.DeleteProject(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		printer.Success(fmt.Sprintf("Deleted project %s", args[0]))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete every project")
}

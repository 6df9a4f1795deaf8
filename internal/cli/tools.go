package cli

import (
	"github.com/spf13/cobra"

	"cmkit/internal/tools"
)

func newToolsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Inspect the build toolchain",
	}

	cmd.AddCommand(newToolsListCmd())
	return cmd
}

func newToolsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List detected build tools and their versions",
		RunE:  runToolsList,
	}
}

func runToolsList(cmd *cobra.Command, _ []string) error {
	statuses, err := tools.Detect(commandContext(cmd))
	if err != nil {
		return err
	}

	if outputJSON {
		return writeJSON(cmd, statuses)
	}

	printStatusTable(cmd, statuses)
	return nil
}

func printStatusTable(cmd *cobra.Command, statuses []tools.Status) {
	if len(statuses) == 0 {
		cmd.Println("(no tool statuses)")
		return
	}

	cmd.Printf("%-8s %-12s %-7s %s\n", "Tool", "Version", "OK", "Path")
	for _, st := range statuses {
		ok := "no"
		if st.Satisfied {
			ok = "yes"
		}
		path := st.Path
		if path == "" {
			path = "(missing)"
		}
		cmd.Printf("%-8s %-12s %-7s %s\n", st.Tool, st.Version, ok, path)
		if st.Error != "" {
			cmd.Printf("  error: %s\n", st.Error)
		}
	}
}

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"cmkit/internal/compdb"
)

var compdbFile string

func newCompdbCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compdb",
		Short: "Query the compilation database",
	}

	cmd.PersistentFlags().StringVar(&compdbFile, "db", "", "Read this compile_commands.json instead of the workspace one")
	cmd.AddCommand(newCompdbLookupCmd())
	cmd.AddCommand(newCompdbListCmd())
	return cmd
}

func newCompdbLookupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lookup SOURCE",
		Short: "Print the compile command recorded for a source file",
		Args:  cobra.ExactArgs(1),
		RunE:  runCompdbLookup,
	}
}

func newCompdbListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List indexed source files",
		Args:  cobra.NoArgs,
		RunE:  runCompdbList,
	}
}

// loadCompdb returns the index and the directory relative sources resolve against.
func loadCompdb(cmd *cobra.Command) (*compdb.Index, string, error) {
	if compdbFile != "" {
		idx, err := compdb.Load(compdbFile)
		if err != nil {
			return nil, "", err
		}
		root, err := filepath.Abs(".")
		if err != nil {
			return nil, "", err
		}
		return idx, root, nil
	}

	s, err := openSession(cmd)
	if err != nil {
		return nil, "", err
	}
	defer s.Close()

	idx, err := s.ws.CompilationDatabase()
	if err != nil {
		return nil, "", err
	}
	s.logger.Info().Str("path", idx.Path).Int("sources", idx.Len()).Msg("compilation database loaded")
	return idx, s.ws.Paths.Root, nil
}

func runCompdbLookup(cmd *cobra.Command, args []string) error {
	idx, root, err := loadCompdb(cmd)
	if err != nil {
		return err
	}

	source := args[0]
	if !filepath.IsAbs(source) {
		source = filepath.Join(root, source)
	}

	info, ok := idx.Lookup(source)
	if !ok {
		return fmt.Errorf("no compile command for %s", source)
	}

	if outputJSON {
		return writeJSON(cmd, info)
	}
	fmt.Fprintln(cmd.OutOrStdout(), info.Command)
	fmt.Fprintln(cmd.ErrOrStderr(), faintStyle.Render("# in "+info.Directory))
	return nil
}

func runCompdbList(cmd *cobra.Command, _ []string) error {
	idx, _, err := loadCompdb(cmd)
	if err != nil {
		return err
	}

	files := idx.Files()
	if outputJSON {
		if files == nil {
			files = []string{}
		}
		return writeJSON(cmd, files)
	}
	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}

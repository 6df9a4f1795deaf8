package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"cmkit/internal/cmakecache"
)

var (
	cacheFile         string
	cacheShowAdvanced bool
	cacheFilter       string
)

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect the CMake configure cache",
	}

	cmd.PersistentFlags().StringVar(&cacheFile, "file", "", "Read this CMakeCache.txt instead of the workspace cache")
	cmd.AddCommand(newCacheListCmd())
	cmd.AddCommand(newCacheGetCmd())
	return cmd
}

func newCacheListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cache entries",
		Args:  cobra.NoArgs,
		RunE:  runCacheList,
	}
	cmd.Flags().BoolVar(&cacheShowAdvanced, "advanced", false, "Include entries marked advanced")
	cmd.Flags().StringVar(&cacheFilter, "filter", "", "Only list keys containing this text (case-insensitive)")
	return cmd
}

func newCacheGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the value of one cache entry",
		Args:  cobra.ExactArgs(1),
		RunE:  runCacheGet,
	}
}

func loadCache(cmd *cobra.Command) (*cmakecache.Cache, error) {
	if cacheFile != "" {
		return cmakecache.LoadFromPath(cacheFile)
	}

	s, err := openSession(cmd)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	cache, err := s.ws.Cache(commandContext(cmd))
	if err != nil {
		return nil, fmt.Errorf("load workspace cache %s: %w", s.ws.Paths.CacheFile, err)
	}
	return cache, nil
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	cache, err := loadCache(cmd)
	if err != nil {
		return err
	}

	filter := strings.ToLower(cacheFilter)
	entries := make([]cmakecache.Entry, 0, cache.Len())
	for _, key := range cache.Keys() {
		entry, _ := cache.Get(key)
		if entry.Advanced && !cacheShowAdvanced {
			continue
		}
		if filter != "" && !strings.Contains(strings.ToLower(key), filter) {
			continue
		}
		entries = append(entries, entry)
	}

	if outputJSON {
		return writeJSON(cmd, struct {
			Path    string             `json:"path"`
			Entries []cmakecache.Entry `json:"entries"`
		}{Path: cache.Path, Entries: entries})
	}

	writeCacheTable(cmd, entries)
	return nil
}

func writeCacheTable(cmd *cobra.Command, entries []cmakecache.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "(no cache entries)")
		return
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("KEY")+"\t"+headerStyle.Render("TYPE")+"\t"+headerStyle.Render("VALUE"))
	for _, entry := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Key, entry.Type, entry.String())
	}
	w.Flush()
}

func runCacheGet(cmd *cobra.Command, args []string) error {
	cache, err := loadCache(cmd)
	if err != nil {
		return err
	}

	entry, ok := cache.Get(args[0])
	if !ok {
		return fmt.Errorf("cache entry not found: %s", args[0])
	}

	if outputJSON {
		return writeJSON(cmd, entry)
	}
	fmt.Fprintln(cmd.OutOrStdout(), entry.String())
	if entry.Doc != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), faintStyle.Render("// "+entry.Doc))
	}
	return nil
}

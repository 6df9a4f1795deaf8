package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"cmkit/internal/expand"
)

var expandEnv []string

func newExpandCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "expand TEMPLATE...",
		Short: "Expand ${namespace:name} placeholders against the workspace",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runExpand,
	}
	cmd.Flags().StringArrayVar(&expandEnv, "env", nil, "Override an environment variable for ${env:...} (KEY=VALUE, repeatable)")
	return cmd
}

func parseEnvAssignments(values []string) (map[string]string, error) {
	env := make(map[string]string, len(values))
	for _, v := range values {
		key, value, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("invalid --env value %q: want KEY=VALUE", v)
		}
		env[key] = value
	}
	return env, nil
}

type expansion struct {
	Template string `json:"template"`
	Value    string `json:"value"`
}

func runExpand(cmd *cobra.Command, args []string) error {
	overrides, err := parseEnvAssignments(expandEnv)
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.Close()

	opts := s.ws.Options()
	for k, v := range overrides {
		opts.EnvOverride[k] = v
	}

	ctx := commandContext(cmd)
	results := make([]expansion, 0, len(args))
	for _, tmpl := range args {
		value, err := expand.Expand(ctx, tmpl, opts)
		if err != nil {
			return err
		}
		s.logger.Debug().Str("template", tmpl).Str("value", value).Msg("expanded")
		results = append(results, expansion{Template: tmpl, Value: value})
	}

	if outputJSON {
		return writeJSON(cmd, results)
	}
	for _, r := range results {
		fmt.Fprintln(cmd.OutOrStdout(), r.Value)
	}
	return nil
}

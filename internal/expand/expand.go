// Package expand substitutes ${namespace:name} and ${namespace:name:default}
// placeholders in configuration strings.
//
// Namespaces resolve in this order: caller-supplied static contexts, the
// process environment ("env"), then the active configure cache of the
// workspace ("cmake"). Placeholders without a namespace, such as
// ${workspaceFolder}, read Options.Vars. A placeholder that cannot be
// resolved becomes its default, or <undefined:name> when no default is given.
// Substituted values are never scanned again.
package expand

import (
	"context"
	"os"
	"strings"

	"golang.org/x/sync/errgroup"

	"cmkit/internal/cmakecache"
	"cmkit/internal/driver"
)

const (
	NamespaceEnv   = "env"
	NamespaceCMake = "cmake"
)

// Options is the context snapshot one expansion runs against.
type Options struct {
	// Vars holds workspace and kit variables addressed without a namespace.
	Vars map[string]string
	// Contexts maps additional namespaces to their variables.
	Contexts map[string]map[string]string
	// EnvOverride takes precedence over the process environment.
	EnvOverride map[string]string
	// LookupEnv defaults to os.LookupEnv.
	LookupEnv func(string) (string, bool)
	// Registry and Workspace locate the driver backing the cmake namespace.
	Registry  *driver.Registry
	Workspace string
}

// Undefined returns the text substituted for an unresolvable variable.
func Undefined(name string) string {
	return "<undefined:" + name + ">"
}

// Expand resolves every placeholder in template. Unknown variables never
// cause an error; the only error is cancellation of ctx.
func Expand(ctx context.Context, template string, opts Options) (string, error) {
	segments := scan(template)

	values := make([]string, len(segments))
	g, gctx := errgroup.WithContext(ctx)
	for i, seg := range segments {
		i, seg := i, seg
		if seg.ref == nil {
			values[i] = seg.text
			continue
		}
		g.Go(func() error {
			value, err := resolve(gctx, *seg.ref, opts)
			if err != nil {
				return err
			}
			values[i] = value
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}
	return strings.Join(values, ""), nil
}

// ExpandMap expands every value of m against the same snapshot.
func ExpandMap(ctx context.Context, m map[string]string, opts Options) (map[string]string, error) {
	out := make(map[string]string, len(m))
	for k, v := range m {
		expanded, err := Expand(ctx, v, opts)
		if err != nil {
			return nil, err
		}
		out[k] = expanded
	}
	return out, nil
}

func resolve(ctx context.Context, ref reference, opts Options) (string, error) {
	value, ok, err := lookup(ctx, ref, opts)
	if err != nil {
		return "", err
	}
	switch {
	case ok:
		return value, nil
	case ref.hasDefault:
		return ref.defaultValue, nil
	default:
		return Undefined(ref.name), nil
	}
}

func lookup(ctx context.Context, ref reference, opts Options) (string, bool, error) {
	if ref.namespace == "" {
		v, ok := opts.Vars[ref.name]
		return v, ok, nil
	}
	if vars, ok := opts.Contexts[ref.namespace]; ok {
		v, found := vars[ref.name]
		return v, found, nil
	}

	switch ref.namespace {
	case NamespaceEnv:
		if v, ok := opts.EnvOverride[ref.name]; ok {
			return v, true, nil
		}
		lookupEnv := opts.LookupEnv
		if lookupEnv == nil {
			lookupEnv = os.LookupEnv
		}
		v, ok := lookupEnv(ref.name)
		return v, ok, nil
	case NamespaceCMake:
		return lookupCache(ctx, ref.name, opts)
	}
	return "", false, nil
}

func lookupCache(ctx context.Context, name string, opts Options) (string, bool, error) {
	drv, ok := opts.Registry.Get(opts.Workspace)
	if !ok || drv == nil {
		return "", false, nil
	}
	cache, err := drv.Cache(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", false, ctxErr
		}
		return "", false, nil
	}
	entry, ok := cache.Get(name)
	if !ok {
		return "", false, nil
	}
	return cmakecache.Stringify(entry.Value), true, nil
}

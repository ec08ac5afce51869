package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/codec"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/observability"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/schema"
)

// errInvalid is returned by commands whose input was read but rejected.
// main maps it to exit status 1 without printing it.
var errInvalid = errors.New("filter is invalid")

// app holds the global flags and the state derived from them.
type app struct {
	schemaPath string
	schemaDir  string
	schemaName string
	logLevel   string

	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "filterctl",
		Short:         "Validate, normalize and encode filter expressions",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setupLogger(cmd.ErrOrStderr())
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.schemaPath, "schema", "", "schema document (.yaml, .yml or .json)")
	flags.StringVar(&a.schemaDir, "schema-dir", "", "directory of schema documents")
	flags.StringVar(&a.schemaName, "name", "", "schema name within --schema-dir")
	flags.StringVar(&a.logLevel, "log-level", "warn", "log level: debug, info, warn or error")

	cmd.AddCommand(
		newValidateCmd(a),
		newNormalizeCmd(),
		newQueryCmd(),
		newServeCmd(a),
	)
	return cmd
}

func (a *app) setupLogger(w io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}
	a.logger = slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	return nil
}

// loadSchema resolves the schema named by the global flags. It returns the
// schema and the name it is known by.
func (a *app) loadSchema() (*schema.Config, string, error) {
	switch {
	case a.schemaPath != "":
		cfg, err := schema.FromFile(a.schemaPath)
		if err != nil {
			return nil, "", err
		}
		name := a.schemaName
		if name == "" {
			base := filepath.Base(a.schemaPath)
			name = strings.TrimSuffix(base, filepath.Ext(base))
		}
		observability.LogSchemaLoaded(a.logger, name, len(cfg.Fields))
		return cfg, name, nil

	case a.schemaDir != "":
		catalog := schema.NewCatalog()
		if err := catalog.LoadDir(a.schemaDir); err != nil {
			return nil, "", err
		}
		name := a.schemaName
		if name == "" {
			names := catalog.Names()
			if len(names) != 1 {
				return nil, "", fmt.Errorf("--name is required: %s holds %d schemas", a.schemaDir, len(names))
			}
			name = names[0]
		}
		cfg, ok := catalog.Get(name)
		if !ok {
			return nil, "", fmt.Errorf("schema %q not found in %s (have: %s)",
				name, a.schemaDir, strings.Join(catalog.Names(), ", "))
		}
		observability.LogSchemaLoaded(a.logger, name, len(cfg.Fields))
		return cfg, name, nil

	default:
		return nil, "", errors.New("one of --schema or --schema-dir is required")
	}
}

// newBuilder opens a session over the configured schema with f loaded.
func (a *app) newBuilder(f codec.Filter, opts ...filterbuilder.Option) (*filterbuilder.Builder, error) {
	cfg, name, err := a.loadSchema()
	if err != nil {
		return nil, err
	}
	base := []filterbuilder.Option{
		filterbuilder.WithSchemaName(name),
		filterbuilder.WithLogger(a.logger),
		filterbuilder.WithInitialFilter(f),
	}
	return filterbuilder.New(cfg, append(base, opts...)...)
}

// readInput returns the contents of the file named by args[0], or stdin
// when there is no argument or it is "-".
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read filter: %w", err)
	}
	return data, nil
}

func readFilter(cmd *cobra.Command, args []string) (codec.Filter, error) {
	data, err := readInput(cmd, args)
	if err != nil {
		return codec.Filter{}, err
	}
	var f codec.Filter
	if err := json.Unmarshal(data, &f); err != nil {
		return codec.Filter{}, fmt.Errorf("parse filter: %w", err)
	}
	return f, nil
}

func writeJSON(w io.Writer, v any, indent bool) error {
	var (
		data []byte
		err  error
	)
	if indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

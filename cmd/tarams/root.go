package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	tarams "github.com/bluzky/tarams"
	"github.com/bluzky/tarams/i18n"
	"github.com/bluzky/tarams/internal/logging"
	"github.com/bluzky/tarams/schemafile"
	"github.com/bluzky/tarams/types"
)

// errRejected reports that the input failed the schema. The field errors
// have already been written to stdout.
var errRejected = errors.New("input rejected")

type options struct {
	schema  string
	format  string
	lang    string
	verbose bool
	debug   bool
	scrub   bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "tarams",
		Short:         "Cast and validate documents against a schema",
		Long:          `tarams reads a JSON or YAML document, casts it against a YAML schema file and prints the result or the field errors as JSON.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if opts.lang != "" {
				i18n.SetLanguage(opts.lang)
			}
			return types.Register()
		},
	}
	pf := root.PersistentFlags()
	pf.StringVarP(&opts.schema, "schema", "s", "", "YAML schema file")
	pf.StringVarP(&opts.format, "format", "f", "", "input format: json or yaml (default: from the file extension)")
	pf.StringVar(&opts.lang, "lang", "", "message language (en, ja)")
	pf.BoolVarP(&opts.verbose, "verbose", "v", false, "log field failures to stderr")

	root.AddCommand(
		newRunCmd(opts, "cast", "Cast a document and print the result", runCast),
		newRunCmd(opts, "validate", "Validate a document without producing output", runValidate),
		newRunCmd(opts, "transform", "Apply defaults, renames and into hooks without coercion", runTransform),
		newJSONSchemaCmd(opts),
		newVersionCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		if !errors.Is(err, errRejected) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}

func (o *options) loadSchema() (*tarams.Canonical, error) {
	if o.schema == "" {
		return nil, errors.New("--schema is required")
	}
	s, err := schemafile.LoadFile(o.schema)
	if err != nil {
		return nil, err
	}
	return tarams.Normalize(s)
}

func (o *options) context(cmd *cobra.Command) context.Context {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if o.verbose {
		ctx = tarams.WithLogger(ctx, logging.New(cmd.ErrOrStderr(), slog.LevelDebug))
	}
	return ctx
}

func closeQuietly(c io.Closer) { _ = c.Close() }

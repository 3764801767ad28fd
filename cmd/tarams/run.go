package main

import (
	"context"
	"io"
	"os"

	"github.com/davecgh/go-spew/spew"
	j "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	tarams "github.com/bluzky/tarams"
	"github.com/bluzky/tarams/scrub"
	"github.com/bluzky/tarams/source"
)

type runFunc func(ctx context.Context, c *tarams.Canonical, in map[string]any) (any, error)

func newRunCmd(opts *options, use, short string, run runFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use + " [file]",
		Short: short,
		Long:  short + ". The document is read from file, or from stdin when file is omitted or \"-\".",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadSchema()
			if err != nil {
				return err
			}
			in, err := readInput(cmd, opts, args)
			if err != nil {
				return err
			}
			if opts.scrub {
				in = scrub.Record(in)
			}
			out, err := run(opts.context(cmd), c, in)
			if opts.debug {
				spew.Fdump(cmd.ErrOrStderr(), out)
			}
			if errs, ok := tarams.AsErrors(err); ok {
				if werr := writeJSON(cmd.OutOrStdout(), map[string]any{"errors": errs}); werr != nil {
					return werr
				}
				return errRejected
			}
			if err != nil {
				return err
			}
			if out == nil {
				_, err := io.WriteString(cmd.OutOrStdout(), "ok\n")
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "dump the Go value of the result to stderr")
	cmd.Flags().BoolVar(&opts.scrub, "scrub", false, "treat blank strings as missing values")
	return cmd
}

func runCast(ctx context.Context, c *tarams.Canonical, in map[string]any) (any, error) {
	out, err := c.Cast(ctx, in)
	if out == nil {
		return nil, err
	}
	return out, err
}

func runValidate(ctx context.Context, c *tarams.Canonical, in map[string]any) (any, error) {
	return nil, c.Validate(ctx, in)
}

func runTransform(ctx context.Context, c *tarams.Canonical, in map[string]any) (any, error) {
	out, err := c.Transform(ctx, in)
	if out == nil {
		return nil, err
	}
	return out, err
}

func readInput(cmd *cobra.Command, opts *options, args []string) (map[string]any, error) {
	var (
		r    io.Reader = cmd.InOrStdin()
		path string
	)
	if len(args) == 1 && args[0] != "-" {
		path = args[0]
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer closeQuietly(f)
		r = f
	}
	format := source.Format(opts.format)
	if format == "" {
		format = source.FormatOf(path)
	}
	return source.Decode(format, r)
}

func writeJSON(w io.Writer, v any) error {
	enc := j.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

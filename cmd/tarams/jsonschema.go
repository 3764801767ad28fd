package main

import "github.com/spf13/cobra"

func newJSONSchemaCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "jsonschema",
		Short: "Print the JSON Schema describing the accepted input",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.loadSchema()
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), c.JSONSchema())
		},
	}
}

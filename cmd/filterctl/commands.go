package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/codec"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/query"
	"github.com/anantsangtani/filterbuilder/pkg/filterbuilder/validate"
)

func newValidateCmd(a *app) *cobra.Command {
	var (
		opts   validate.Options
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "validate [file|-]",
		Short: "Check a filter against the schema",
		Long: `Check a filter document against the schema and print every error and
warning. The exit status is 1 when the filter has errors.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFilter(cmd, args)
			if err != nil {
				return err
			}
			b, err := a.newBuilder(f, filterbuilder.WithValidationOptions(opts))
			if err != nil {
				return err
			}

			res := b.Validate(cmd.Context())
			out := cmd.OutOrStdout()
			if asJSON {
				if err := writeJSON(out, res, true); err != nil {
					return err
				}
			} else {
				for _, issue := range res.Issues {
					fmt.Fprintf(out, "%-7s %s\n", issue.Severity, issue)
				}
				fmt.Fprintf(out, "valid: %t (%d errors, %d warnings)\n",
					res.IsValid, len(res.Errors), len(res.Warnings))
			}

			if !res.IsValid {
				return errInvalid
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.AllowEmptyGroups, "allow-empty-groups", false, "report empty groups as warnings")
	cmd.Flags().BoolVar(&opts.AllowIncompleteConditions, "allow-incomplete", false, "report a missing field, operator or value as a warning")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the result as JSON")
	return cmd
}

func newNormalizeCmd() *cobra.Command {
	var indent bool
	cmd := &cobra.Command{
		Use:   "normalize [file|-]",
		Short: "Print the canonical form of a filter",
		Long: `Print the canonical form of a filter document: incomplete conditions and
empty groups are dropped and keys are written in a fixed order.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := readFilter(cmd, args)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), codec.Serialize(codec.Deserialize(f)), indent)
		},
	}
	cmd.Flags().BoolVar(&indent, "indent", false, "indent the output")
	return cmd
}

func newQueryCmd() *cobra.Command {
	var decode bool
	cmd := &cobra.Command{
		Use:   "query [file|query-string|-]",
		Short: "Encode a filter as a query string, or decode one",
		Long: `Encode a filter document as the cond[i].field/op/value query string sent by
GET transports. With --decode, parse such a query string back into a filter;
grouping is not recoverable and the result is a single AND group.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if decode {
				var qs string
				if len(args) == 1 && args[0] != "-" {
					qs = args[0]
				} else {
					data, err := readInput(cmd, nil)
					if err != nil {
						return err
					}
					qs = string(data)
				}
				f, err := query.ParseQueryString(strings.TrimSpace(qs))
				if err != nil {
					return err
				}
				return writeJSON(cmd.OutOrStdout(), f, false)
			}

			f, err := readFilter(cmd, args)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), query.GenerateQueryString(codec.Serialize(codec.Deserialize(f))))
			return err
		},
	}
	cmd.Flags().BoolVar(&decode, "decode", false, "parse a query string into a filter")
	return cmd
}

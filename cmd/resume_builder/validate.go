package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/record"
	"github.com/jonathan/resume-builder/internal/schemas"
	"github.com/jonathan/resume-builder/internal/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a resume record",
	Long:  "Checks a resume record against the record schema and the field rules an export requires.",
	RunE:  runValidate,
}

var (
	validateRecordFile string
	validateSchemaFile string
)

func init() {
	validateCmd.Flags().StringVarP(&validateRecordFile, "record", "r", "", "Path to resume record JSON file (required)")
	validateCmd.Flags().StringVar(&validateSchemaFile, "schema", "", "Additional JSON Schema file the record must satisfy, e.g. a stricter house schema")

	if err := validateCmd.MarkFlagRequired("record"); err != nil {
		panic(fmt.Sprintf("failed to mark record flag as required: %v", err))
	}

	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, _ []string) error {
	if validateSchemaFile != "" {
		if err := validateAgainstSchema(cmd.OutOrStdout(), validateSchemaFile, validateRecordFile); err != nil {
			return err
		}
	}
	return validateRecord(cmd.OutOrStdout(), validateRecordFile)
}

// errInvalidRecord is returned after the field problems have been printed.
var errInvalidRecord = errors.New("record is invalid")

func validateRecord(out io.Writer, path string) error {
	_, err := record.LoadRecord(path)
	printer := observability.NewPrinter(out)

	fields := fieldErrors(err)
	if err != nil && fields == nil {
		return err
	}
	printer.PrintValidationErrors(fields)
	if fields != nil {
		return errInvalidRecord
	}
	return nil
}

// validateAgainstSchema checks the record file against an extra schema. Relative schema
// paths are also looked up from the parent directories.
func validateAgainstSchema(out io.Writer, schemaPath, recordPath string) error {
	if resolved := schemas.ResolveSchemaPath(schemaPath); resolved != "" {
		schemaPath = resolved
	}
	err := schemas.ValidateJSON(schemaPath, recordPath)
	if fields := fieldErrors(err); fields != nil {
		observability.NewPrinter(out).PrintValidationErrors(fields)
		return errInvalidRecord
	}
	return err
}

// fieldErrors flattens schema and field validation failures. It returns nil for other errors.
func fieldErrors(err error) []types.FieldError {
	var fieldErrs *types.ValidationError
	if errors.As(err, &fieldErrs) {
		return fieldErrs.Errors
	}
	var schemaErrs *schemas.ValidationError
	if errors.As(err, &schemaErrs) {
		out := make([]types.FieldError, 0, len(schemaErrs.Errors))
		for _, fe := range schemaErrs.Errors {
			out = append(out, types.FieldError{Field: fe.Field, Message: fe.Message})
		}
		return out
	}
	return nil
}

// loadRecord loads and validates a record file. Field problems are printed to out and
// reported as errInvalidRecord.
func loadRecord(out io.Writer, path string) (*types.ResumeRecord, error) {
	rec, err := record.LoadRecord(path)
	if err != nil {
		if fields := fieldErrors(err); fields != nil {
			observability.NewPrinter(out).PrintValidationErrors(fields)
			return nil, errInvalidRecord
		}
		return nil, err
	}
	return rec, nil
}

package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/syto/internal/compiler"
	"github.com/roach88/syto/internal/engine"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Output string // output file path
}

// CompilationResult holds the normalized entities.
type CompilationResult struct {
	Entities []EntitySummary `json:"entities"`
}

// EntitySummary is the normalized form of one compiled entity.
type EntitySummary struct {
	Name       string             `json:"name"`
	Table      string             `json:"table"`
	Filter     string             `json:"filter"`
	Columns    map[string]string  `json:"columns,omitempty"`
	Rules      []RuleSummary      `json:"rules"`
	Thresholds []ThresholdSummary `json:"thresholds,omitempty"`
}

// RuleSummary is one normalized attribute map rule.
type RuleSummary struct {
	Kind            string `json:"kind"`
	Field           string `json:"field"`
	Param           string `json:"param,omitempty"`
	From            string `json:"from,omitempty"`
	To              string `json:"to,omitempty"`
	CaseInsensitive bool   `json:"case_insensitive,omitempty"`
	Level           string `json:"level"` // "entity" | "filter"
}

// ThresholdSummary is one threshold comparison of the filter extension.
type ThresholdSummary struct {
	Param string `json:"param"`
	Field string `json:"field"`
	Op    string `json:"op"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <specs-dir>",
		Short: "Compile CUE entity specs to normalized attribute maps",
		Long: `Compile CUE entity and filter declarations to normalized attribute maps.

Every shorthand entry is expanded: the parameter key, target field, rule
kind and range bound keys are printed in evaluation order, entity rules
first. Use --output to write the normalized form as JSON.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file path")

	return cmd
}

func runCompile(opts *CompileOptions, specsDir string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}

	loadResult, loadErrors := compiler.LoadSpecs(specsDir, compiler.LoadModeCollectAll)

	// Handle load errors (directory not found, no files, etc.)
	if loadResult == nil && len(loadErrors) > 0 {
		code, message := parseCompileError(loadErrors[0])
		return outputCompileError(formatter, code, message, nil)
	}

	formatter.VerboseLog("Found %d CUE file(s) in %s", loadResult.FileCount, specsDir)
	for _, ent := range loadResult.Entities {
		formatter.VerboseLog("Compiled entity: %s", ent.Name)
	}

	if len(loadErrors) > 0 {
		return outputCompileErrors(formatter, loadErrors)
	}

	result := &CompilationResult{Entities: make([]EntitySummary, 0, len(loadResult.Entities))}
	for _, ent := range loadResult.Entities {
		result.Entities = append(result.Entities, summarizeEntity(ent))
	}

	if opts.Output != "" {
		if err := writeResultToFile(result, opts.Output); err != nil {
			return outputCompileError(formatter, compiler.ErrCodeGeneric, fmt.Sprintf("writing output file: %v", err), nil)
		}
	}

	return outputCompileSuccess(formatter, result, opts.Output)
}

// summarizeEntity flattens an entity into its normalized rules.
func summarizeEntity(ent *engine.Entity) EntitySummary {
	s := EntitySummary{
		Name:   ent.Name,
		Table:  ent.Table,
		Filter: ent.FilterName(),
		Rules:  []RuleSummary{},
	}

	if len(ent.Columns) > 0 {
		s.Columns = make(map[string]string, len(ent.Columns))
		for col, typ := range ent.Columns {
			s.Columns[col] = string(typ)
		}
	}

	entityRules := ent.Attrs.Len()
	for i, rule := range ent.AttributeMap().Rules() {
		level := "entity"
		if i >= entityRules {
			level = "filter"
		}
		s.Rules = append(s.Rules, RuleSummary{
			Kind:            rule.Kind().String(),
			Field:           rule.Target(),
			Param:           rule.ParamKey(),
			From:            rule.FromKey(),
			To:              rule.ToKey(),
			CaseInsensitive: rule.CaseInsensitive(),
			Level:           level,
		})
	}

	if th, ok := ent.Extension().(engine.Thresholds); ok {
		for _, t := range th.Rules {
			s.Thresholds = append(s.Thresholds, ThresholdSummary{Param: t.Param, Field: t.Field, Op: string(t.Op)})
		}
	}

	return s
}

// outputCompileSuccess outputs successful compilation results.
func outputCompileSuccess(formatter *OutputFormatter, result *CompilationResult, outputFile string) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %d entity(ies)\n\n", len(result.Entities))

	for _, ent := range result.Entities {
		fmt.Fprintf(w, "%s (table %s, filter %s)\n", ent.Name, ent.Table, ent.Filter)
		if len(ent.Rules) == 0 && len(ent.Thresholds) == 0 {
			fmt.Fprintln(w, "  no filters defined")
		}
		for _, r := range ent.Rules {
			fmt.Fprintf(w, "  %-6s %s\n", r.Level, describeRule(r))
		}
		for _, t := range ent.Thresholds {
			fmt.Fprintf(w, "  %-6s threshold %s %s <- %s\n", "filter", t.Field, t.Op, t.Param)
		}
		fmt.Fprintln(w)
	}

	if outputFile != "" {
		fmt.Fprintf(w, "Wrote normalized entities to %s\n", outputFile)
	}

	return nil
}

func describeRule(r RuleSummary) string {
	switch {
	case r.Kind == "range":
		return fmt.Sprintf("range %s <- %s..%s", r.Field, r.From, r.To)
	case r.CaseInsensitive:
		return fmt.Sprintf("%s %s <- %s (case-insensitive)", r.Kind, r.Field, r.Param)
	default:
		return fmt.Sprintf("%s %s <- %s", r.Kind, r.Field, r.Param)
	}
}

// outputCompileError outputs a single compilation error.
func outputCompileError(formatter *OutputFormatter, code, message string, details interface{}) error {
	_ = formatter.Error(code, message, details)
	// Compilation errors are command-level errors (exit code 2)
	return WrapExitError(ExitCommandError, fmt.Sprintf("%s: %s", code, message), nil)
}

// outputCompileErrors outputs multiple compilation errors.
func outputCompileErrors(formatter *OutputFormatter, errs []error) error {
	if formatter.Format == "json" {
		cliErrors := make([]CLIError, len(errs))
		for i, err := range errs {
			code, message := parseCompileError(err)
			cliErrors[i] = CLIError{
				Code:    code,
				Message: message,
			}
		}

		response := CLIResponse{
			Status: "error",
			Error:  &cliErrors[0],
			Data:   cliErrors, // Include all errors in data
		}

		encoder := json.NewEncoder(formatter.Writer)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(response); err != nil {
			return err
		}

		return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
	}

	fmt.Fprintln(formatter.Writer, "✗ Compilation failed")
	fmt.Fprintln(formatter.Writer)

	for _, err := range errs {
		code, message := parseCompileError(err)
		var loadErr *compiler.LoadError
		if errors.As(err, &loadErr) && loadErr.Pos.IsValid() {
			fmt.Fprintf(formatter.Writer, "%s:%d:%d\n",
				loadErr.Pos.Filename(),
				loadErr.Pos.Line(),
				loadErr.Pos.Column())
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n\n", code, message)
	}

	return NewExitError(ExitCommandError, fmt.Sprintf("compilation failed with %d error(s)", len(errs)))
}

// parseCompileError extracts error code and message from an error.
func parseCompileError(err error) (string, string) {
	var loadErr *compiler.LoadError
	if errors.As(err, &loadErr) {
		return loadErr.Code, loadErr.Message
	}
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return compiler.MapFieldToErrorCode(compileErr.Field), compileErr.Message
	}
	return compiler.ErrCodeGeneric, err.Error()
}

// writeResultToFile writes the normalized entities as indented JSON.
func writeResultToFile(result *CompilationResult, filename string) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling entities: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/radixrunner/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid   bool             `json:"valid"`
	Path    string           `json:"path"`
	Error   *ValidationError `json:"error,omitempty"`
	Policy  string           `json:"policy,omitempty"`
	Shadows []config.Shadow  `json:"shadows,omitempty"`
}

// ValidationError locates a config problem.
type ValidationError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config>",
		Short: "Validate a config file",
		Long: `Load a YAML, CUE or JSON config file and check it without starting
the clock.

CUE and JSON files are unified with the built-in schema; YAML files are
decoded strictly, so misspelled keys are errors.

Exit codes:
  0 - Config is valid
  1 - Config parsed but is invalid
  2 - File missing, unreadable or of unknown format`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	formatter.VerboseLog("Loading %s", path)
	cfg, err := config.Load(path)
	if err != nil {
		return outputValidationError(formatter, path, err)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{
			Valid:   true,
			Path:    path,
			Policy:  cfg.Policy().String(),
			Shadows: cfg.Shadows,
		})
	}

	fmt.Fprintf(formatter.Writer, "✓ %s valid: policy %s, %d shadow slot(s)\n", path, cfg.Policy(), len(cfg.Shadows))
	return nil
}

// outputValidationError reports a load failure. Files that parsed but are
// invalid exit 1; anything else is a command error.
func outputValidationError(formatter *OutputFormatter, path string, err error) error {
	verr := &ValidationError{Code: ErrCodeGeneric, Message: err.Error()}
	exitCode := ExitCommandError

	var le *config.LoadError
	if errors.As(err, &le) {
		verr.Code = string(le.Code)
		verr.Message = le.Message
		if le.Pos.IsValid() {
			verr.Line = le.Pos.Line()
		}
		if le.Code == config.ErrCodeSchemaViolation || le.Code == config.ErrCodeParseFailed {
			exitCode = ExitFailure
		}
	}

	if formatter.Format == "json" {
		resp := CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, Path: path, Error: verr},
			Error:  &CLIError{Code: verr.Code, Message: verr.Message},
		}
		if encErr := formatter.encode(resp); encErr != nil {
			return encErr
		}
	} else {
		fmt.Fprintln(formatter.Writer, "✗ Validation failed")
		if verr.Line > 0 {
			fmt.Fprintf(formatter.Writer, "line %d\n", verr.Line)
		}
		fmt.Fprintf(formatter.Writer, "  %s: %s\n", verr.Code, verr.Message)
	}

	return WrapExitError(exitCode, "validation failed", err)
}

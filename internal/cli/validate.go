package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dimu/internal/classify"
	"github.com/roach88/dimu/internal/config"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid      bool     `json:"valid"`
	File       string   `json:"file"`
	Digest     string   `json:"digest,omitempty"`
	Triggers   int      `json:"triggers,omitempty"`
	Thresholds string   `json:"thresholds,omitempty"`
	AllowList  string   `json:"allow_list,omitempty"`
	Errors     []string `json:"errors,omitempty"`
}

func (r ValidationResult) String() string {
	return fmt.Sprintf("✓ %s valid\n  digest %s\n  triggers %d, tracklet thresholds %s, allow list %s",
		r.File, shortDigest(r.Digest), r.Triggers, r.Thresholds, r.AllowList)
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate an analysis config",
		Long: `Validate an analysis config without processing events.

YAML configs are decoded strictly: unknown fields are errors. CUE configs
are compiled and must be concrete. The first invalid field is reported
with its position when available.

Exit codes:
  0 - Config is valid
  1 - Config is invalid
  2 - Command error (file not found)`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, rootOpts, args[0])
		},
	}

	return cmd
}

func runValidate(cmd *cobra.Command, opts *RootOptions, path string) error {
	out := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if _, err := os.Stat(path); err != nil {
		return out.Fail(ExitCommandError, ErrCodeNotFound, "config file not found: "+path, nil)
	}
	out.VerboseLog("Validating %s", path)

	cfg, err := config.Load(path)
	if err != nil {
		return outputValidationError(out, path, err)
	}
	digest, err := cfg.Digest()
	if err != nil {
		return outputValidationError(out, path, err)
	}

	thresholds := cfg.NormalizedThresholds()
	allow := classify.ParseAllowList(cfg.AllowList)
	return out.Success(ValidationResult{
		Valid:      true,
		File:       path,
		Digest:     digest,
		Triggers:   len(cfg.Triggers),
		Thresholds: thresholds.String(),
		AllowList:  allow.String(),
	})
}

func outputValidationError(out *OutputFormatter, path string, err error) error {
	var cfgErr *config.Error
	field := ""
	if errors.As(err, &cfgErr) {
		field = cfgErr.Field
	}

	if out.JSON() {
		_ = out.encode(CLIResponse{
			Status: "error",
			Data:   ValidationResult{Valid: false, File: path, Errors: []string{err.Error()}},
			Error:  &CLIError{Code: ErrCodeConfig, Message: err.Error(), Details: field},
		})
	} else {
		fmt.Fprintf(out.Writer, "✗ %s invalid\n  %v\n", path, err)
	}
	// Invalid content is a validation failure, exit code 1.
	return WrapExitError(ExitFailure, "validation failed", err)
}

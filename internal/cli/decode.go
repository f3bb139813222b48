package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/radixrunner/internal/ir"
	"github.com/roach88/radixrunner/internal/radix"
)

// DecodeResult is the digit breakdown of one counter value.
type DecodeResult struct {
	Raw    string                   `json:"raw"`
	Digits map[string]uint32        `json:"digits"`
	Fields [radix.DigitCount]uint32 `json:"fields"`
}

func (r DecodeResult) String() string {
	var b strings.Builder
	b.WriteString(r.Raw)
	for d := radix.P5; ; d-- {
		fmt.Fprintf(&b, "\n  %s = %4d  (bits %2d..%2d)", d, r.Fields[d], d.Shift(), d.Shift()+d.Bits()-1)
		if d == radix.P0 {
			break
		}
	}
	return b.String()
}

// NewDecodeCommand creates the decode command.
func NewDecodeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode <value>",
		Short: "Decode a raw counter value into digits",
		Long: `Decode a 64-bit counter value into its six radix digits.

The value may be decimal or prefixed with 0x, 0o or 0b.

Examples:
  radixrunner decode 0x3000
  radixrunner decode 18446744073709551615 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecode(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runDecode(opts *RootOptions, value string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	raw, err := ir.ParseRaw(value)
	if err != nil {
		if outErr := formatter.Error(ErrCodeDecode, err.Error(), nil); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitCommandError, "invalid value", err)
	}

	return formatter.Success(Decode(raw))
}

// Decode breaks raw into its digits.
func Decode(raw uint64) DecodeResult {
	fields := radix.DecodeAll(raw)
	digits := make(map[string]uint32, radix.DigitCount)
	for d := radix.P0; d <= radix.P5; d++ {
		digits[d.String()] = fields[d]
	}
	return DecodeResult{
		Raw:    ir.FormatRaw(raw),
		Digits: digits,
		Fields: fields,
	}
}

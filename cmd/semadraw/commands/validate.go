package commands

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/semadraw/semadraw/pkg/sdcs"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file.sdcs>",
	Short: "Validate an SDCS command stream file offline",
	Long: `Validate walks an SDCS container without executing any command,
reporting the first structural or contract violation found.

Examples:
  semadraw validate scene.sdcs`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read %s: %w", args[0], err)
	}

	if err := sdcs.Validate(data); err != nil {
		var verr *sdcs.ValidationError
		if errors.As(err, &verr) {
			cmd.PrintErrf("invalid: %s\n", verr.Error())
			os.Exit(1)
		}
		return err
	}

	fmt.Printf("%s: valid (%d bytes)\n", args[0], len(data))
	return nil
}

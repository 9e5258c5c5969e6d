package commands

import (
	"github.com/spf13/cobra"
)

// CommandBuilder helps create standardized commands
type CommandBuilder struct {
	Use          string
	Short        string
	Long         string
	MinArgs      int
	MaxArgs      int
	ExampleUsage []string
}

// BuildCommand creates a cobra command with common patterns
func (cb *CommandBuilder) BuildCommand(runFunc func(cobraCmd *cobra.Command, args []string) error) *cobra.Command {
	cobraCmd := &cobra.Command{
		Use:          cb.Use,
		Short:        cb.Short,
		Long:         cb.Long,
		Args:         cobra.RangeArgs(cb.MinArgs, cb.MaxArgs),
		SilenceUsage: true,
		RunE:         runFunc,
	}

	// Add examples if provided
	if len(cb.ExampleUsage) > 0 {
		examples := "\nExamples:\n"
		for _, example := range cb.ExampleUsage {
			examples += "  " + example + "\n"
		}
		cobraCmd.Long += examples
	}

	return cobraCmd
}

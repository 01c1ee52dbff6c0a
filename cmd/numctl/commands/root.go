package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type rootOptions struct {
	json bool
}

// Execute runs the numctl command tree against os.Args.
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "numctl",
		Short:         "Numerology and sidereal chart toolkit",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().BoolVar(&opts.json, "json", false, "print JSON instead of text")

	root.AddCommand(
		profileCmd(opts),
		compatCmd(opts),
		chartCmd(opts),
		datagenCmd(),
		ingestCmd(),
	)
	return root
}

// emit writes v as indented JSON when --json is set and calls text otherwise.
func (o *rootOptions) emit(w io.Writer, v any, text func(io.Writer)) error {
	if o.json {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	text(w)
	return nil
}

func requireFlag(cmd *cobra.Command, name string) (string, error) {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", err
	}
	if v == "" {
		return "", fmt.Errorf("--%s is required", name)
	}
	return v, nil
}

package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vanshika/astronum/backend/internal/compatibility"
	"github.com/vanshika/astronum/backend/internal/numerology"
)

func compatCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compat",
		Short: "Score numerology compatibility between two people",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := personFromFlags(cmd, "a")
			if err != nil {
				return err
			}
			b, err := personFromFlags(cmd, "b")
			if err != nil {
				return err
			}
			result := compatibility.Score(a, b)
			return opts.emit(cmd.OutOrStdout(), result, func(w io.Writer) {
				fmt.Fprintf(w, "%s & %s: %d/100 (%s)\n", a.Name, b.Name, result.Score, result.Category)
				for _, f := range result.Factors {
					fmt.Fprintf(w, "  %-12s %5.2f x %.2f  %s\n", f.Name, f.Value, f.Weight, f.Detail)
				}
				fmt.Fprintln(w, result.Narrative)
			})
		},
	}
	for _, side := range []string{"a", "b"} {
		cmd.Flags().String(side+"-name", "", "full name of person "+side)
		cmd.Flags().String(side+"-date", "", "birth date of person "+side+" (YYYY-MM-DD)")
	}
	return cmd
}

func personFromFlags(cmd *cobra.Command, side string) (compatibility.Person, error) {
	name, err := requireFlag(cmd, side+"-name")
	if err != nil {
		return compatibility.Person{}, err
	}
	raw, err := requireFlag(cmd, side+"-date")
	if err != nil {
		return compatibility.Person{}, err
	}
	date, err := numerology.ParseBirthDate(raw)
	if err != nil {
		return compatibility.Person{}, err
	}
	if err := date.Validate(); err != nil {
		return compatibility.Person{}, err
	}
	return compatibility.NewPerson(name, date), nil
}

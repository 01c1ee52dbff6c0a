package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/astronum/backend/internal/numerology"
)

type profileOutput struct {
	Name         string             `json:"name"`
	BirthDate    string             `json:"birthDate"`
	Year         int                `json:"year"`
	PersonalYear int                `json:"personalYear"`
	Profile      numerology.Profile `json:"profile"`
}

func profileCmd(opts *rootOptions) *cobra.Command {
	var (
		date string
		year int
	)
	cmd := &cobra.Command{
		Use:   "profile NAME",
		Short: "Print the numerology profile for a name and birth date",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := strings.Join(args, " ")
			if numerology.NormalizeName(name) == "" {
				return fmt.Errorf("name %q has no Latin letters", name)
			}
			bd, err := numerology.ParseBirthDate(date)
			if err != nil {
				return err
			}
			if err := bd.Validate(); err != nil {
				return err
			}
			if year == 0 {
				year = time.Now().Year()
			}
			out := profileOutput{
				Name:         name,
				BirthDate:    bd.String(),
				Year:         year,
				PersonalYear: numerology.PersonalYear(bd, year),
				Profile:      numerology.Calculate(name, bd),
			}
			return opts.emit(cmd.OutOrStdout(), out, func(w io.Writer) { printProfile(w, out) })
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&year, "year", 0, "year for the personal year number (default current year)")
	_ = cmd.MarkFlagRequired("date")
	return cmd
}

func printProfile(w io.Writer, out profileOutput) {
	p := out.Profile
	fmt.Fprintf(w, "%s, born %s\n", out.Name, out.BirthDate)
	fmt.Fprintf(w, "  Life Path:      %d\n", p.LifePath)
	fmt.Fprintf(w, "  Expression:     %d\n", p.Expression)
	fmt.Fprintf(w, "  Soul Urge:      %d\n", p.SoulUrge)
	fmt.Fprintf(w, "  Personality:    %d\n", p.Personality)
	fmt.Fprintf(w, "  Birthday:       %d\n", p.Birthday)
	fmt.Fprintf(w, "  Maturity:       %d\n", p.Maturity)
	fmt.Fprintf(w, "  Hidden Passion: %d\n", p.HiddenPassion)
	fmt.Fprintf(w, "  Pinnacles:      %v\n", p.Pinnacles)
	fmt.Fprintf(w, "  Challenges:     %v\n", p.Challenges)
	fmt.Fprintf(w, "  Missing:        %v\n", p.MissingNumbers)
	fmt.Fprintf(w, "  Personal Year %d: %d\n", out.Year, out.PersonalYear)
}

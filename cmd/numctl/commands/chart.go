package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/vanshika/astronum/backend/internal/ephemeris"
	"github.com/vanshika/astronum/backend/internal/numerology"
)

func chartCmd(opts *rootOptions) *cobra.Command {
	var (
		date, clock, zone string
		offset, lat, lon  float64
	)
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Compute an approximate sidereal natal chart",
		RunE: func(cmd *cobra.Command, args []string) error {
			bd, err := numerology.ParseBirthDate(date)
			if err != nil {
				return err
			}
			if zone == "" && !cmd.Flags().Changed("offset") {
				return fmt.Errorf("one of --zone or --offset is required")
			}
			chart, err := ephemeris.Generate(ephemeris.BirthMoment{
				Year:      bd.Year,
				Month:     bd.Month,
				Day:       bd.Day,
				Time:      clock,
				Zone:      zone,
				TZOffset:  offset,
				Latitude:  lat,
				Longitude: lon,
			}, time.Now())
			if err != nil {
				return err
			}
			return opts.emit(cmd.OutOrStdout(), chart, func(w io.Writer) { printChart(w, chart) })
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&clock, "time", "", "local birth time (HH:MM)")
	cmd.Flags().StringVar(&zone, "zone", "", "IANA time zone of the birthplace")
	cmd.Flags().Float64Var(&offset, "offset", 0, "UTC offset in hours, used when --zone is empty")
	cmd.Flags().Float64Var(&lat, "lat", 0, "latitude in degrees, north positive")
	cmd.Flags().Float64Var(&lon, "lon", 0, "longitude in degrees, east positive")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("time")
	return cmd
}

func printChart(w io.Writer, c ephemeris.Chart) {
	fmt.Fprintf(w, "Ascendant  %-12s %6.2f°  %s pada %d\n", c.Ascendant.SignName, c.Ascendant.Degree, c.Ascendant.NakshatraName, c.Ascendant.Pada)
	for _, p := range ephemeris.AllPlanets {
		pos := c.Planets[p]
		retro := ""
		if pos.Retrograde {
			retro = " (R)"
		}
		fmt.Fprintf(w, "%-10s %-12s %6.2f°  %s pada %d%s\n", p, pos.SignName, pos.Degree, pos.NakshatraName, pos.Pada, retro)
	}
	if cur := c.Dasha.Current; cur != nil {
		fmt.Fprintf(w, "Dasha      %s / %s until %s\n", cur.Maha, cur.Sub, cur.SubEnd.Format(time.DateOnly))
	}
}

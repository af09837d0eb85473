package main

import (
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/danngalann/astroweather/internal/astro"
	"github.com/danngalann/astroweather/internal/logging"
	"github.com/danngalann/astroweather/internal/modules/weather/types"
	"github.com/danngalann/astroweather/internal/modules/weather/upstream"
	"github.com/danngalann/astroweather/internal/modules/weather/views"
)

func inspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <slug>",
		Short: "Print the day/night classification of a location",
		Long:  "Fetch one location from the weather backend, bypassing the cache, and print how each day and hour is classified",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(cfg, version, appName)

			client := upstream.NewClient(cfg.APIURL, cfg.UpstreamTimeout, cfg.UpstreamRPS, cfg.UpstreamBurst)
			data, err := client.FetchLocation(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("fetch %s: %w", args[0], err)
			}
			return writeInspection(cmd.OutOrStdout(), data, logger)
		},
	}
}

func writeInspection(out io.Writer, data types.WeatherData, logger *slog.Logger) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "%s\t%s, %s\tBortle %d\tgood tonight: %t\n",
		data.Location.Name, data.Location.Region, data.Location.Country,
		data.Location.Bortle, data.Location.IsGoodPlaceTonight)

	for _, fd := range data.Forecast.ForecastDay {
		night := views.NightCloudCover(fd, logger)
		moon := astro.ClassifyMoonIllumination(fd.Astro.MoonIllumination)

		fmt.Fprintln(tw)
		fmt.Fprintf(tw, "%s\tsunrise %s\tsunset %s\n", fd.Date, fd.Astro.Sunrise, fd.Astro.Sunset)
		fmt.Fprintf(tw, "night cloud\t%d%%\t%s\n", night, astro.ClassifyCloudCover(float64(night)).Hint.Text())
		fmt.Fprintf(tw, "moon\t%g%%\t%s\t%s\n", fd.Astro.MoonIllumination, moon.Hint.Text(), fd.Astro.MoonPhase)
		fmt.Fprintln(tw, "time\tperiod\tcloud\tintensity")

		for _, h := range fd.Hour {
			period := "?"
			if isDay, err := astro.IsDaytime(h.Time, fd.Astro.Sunrise, fd.Astro.Sunset); err == nil {
				period = "night"
				if isDay {
					period = "day"
				}
			}
			fmt.Fprintf(tw, "%s\t%s\t%g%%\t%s\n", views.ClockLabel(h.Time), period, h.Cloud, astro.HourlyCloudIntensity(h.Cloud))
		}
	}
	return tw.Flush()
}

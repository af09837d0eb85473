// Package weathertest provides weather backend payloads for tests.
package weathertest

import (
	"encoding/json"
	"fmt"

	"github.com/danngalann/astroweather/internal/modules/weather/types"
)

// Location returns a one-day forecast for slug with sunrise 07:56 AM and
// sunset 06:12 PM. Hours 00:00-07:00 and 19:00-23:00 are night and cycle
// through nightCloud; day hours are 80% cloudy.
func Location(slug string, good bool) types.WeatherData {
	hours := make([]types.Hour, 24)
	for h := range hours {
		cloud := 80.0
		if h < 8 || h > 18 {
			cloud = nightCloud[h%len(nightCloud)]
		}
		hours[h] = types.Hour{
			Time:         fmt.Sprintf("2025-03-10 %02d:00", h),
			TempC:        8.6 + float64(h)/2,
			Humidity:     70,
			WindKph:      12.4,
			Cloud:        cloud,
			ChanceOfRain: rainChance(h),
			Condition: types.Condition{
				Text: "Clear",
				Icon: "//cdn.weatherapi.com/weather/64x64/night/113.png",
				Code: 1000,
			},
		}
	}

	return types.WeatherData{
		Location: types.Location{
			Name:               "Teide " + slug,
			Slug:               slug,
			Region:             "Canarias",
			Country:            "Spain",
			TZID:               "Atlantic/Canary",
			Bortle:             2,
			IsGoodPlaceTonight: good,
		},
		Current: types.Current{
			TempC:    14.2,
			Humidity: 55,
			WindKph:  9.7,
			UV:       3,
			Condition: types.Condition{
				Text: "Sunny",
				Icon: "//cdn.weatherapi.com/weather/64x64/day/113.png",
			},
		},
		Forecast: types.Forecast{ForecastDay: []types.ForecastDay{{
			Date: "2025-03-10",
			Day: types.Day{
				MinTempC:    6.1,
				MaxTempC:    17.9,
				AvgHumidity: 64,
				Condition:   types.Condition{Text: "Partly cloudy", Icon: "//cdn.weatherapi.com/weather/64x64/day/116.png"},
			},
			Astro: types.Astro{
				Sunrise:          "07:56 AM",
				Sunset:           "06:12 PM",
				Moonrise:         "10:14 PM",
				Moonset:          "09:30 AM",
				MoonPhase:        "Waning Crescent",
				MoonIllumination: 12,
			},
			Hour: hours,
		}}},
	}
}

// Cloud cover of the night hours, cycled by hour index.
var nightCloud = []float64{10, 20, 30, 40}

// NightCloud is the rounded average cloud cover of the night hours of
// Location: hours 0-7 and 19-23.
func NightCloud() int {
	sum := 0.0
	n := 0
	for h := 0; h < 24; h++ {
		if h < 8 || h > 18 {
			sum += nightCloud[h%len(nightCloud)]
			n++
		}
	}
	return int(sum/float64(n) + 0.5)
}

func rainChance(h int) float64 {
	if h == 3 {
		return 35
	}
	return 0
}

// LocationJSON is Location encoded as the backend would send it.
func LocationJSON(slug string, good bool) []byte {
	b, err := json.Marshal(Location(slug, good))
	if err != nil {
		panic(err)
	}
	return b
}

// OverviewJSON encodes the locations for the given slugs as a JSON array.
func OverviewJSON(slugs ...string) []byte {
	all := make([]types.WeatherData, 0, len(slugs))
	for i, s := range slugs {
		all = append(all, Location(s, i == 0))
	}
	b, err := json.Marshal(all)
	if err != nil {
		panic(err)
	}
	return b
}

package views

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/danngalann/astroweather/internal/modules/weather/types"
	"github.com/danngalann/astroweather/internal/modules/weather/weathertest"
)

func day(sunrise, sunset string, hours ...types.Hour) types.ForecastDay {
	return types.ForecastDay{
		Date:  "2025-03-10",
		Astro: types.Astro{Sunrise: sunrise, Sunset: sunset},
		Hour:  hours,
	}
}

func hour(ts string, cloud float64) types.Hour {
	return types.Hour{Time: ts, Cloud: cloud}
}

func TestNightCloudCover(t *testing.T) {
	tests := []struct {
		name string
		day  types.ForecastDay
		want int
	}{
		{
			name: "fixture day",
			day:  weathertest.Location("teide", false).Forecast.ForecastDay[0],
			want: weathertest.NightCloud(),
		},
		{
			name: "no hours",
			day:  day("07:00 AM", "07:00 PM"),
			want: 0,
		},
		{
			name: "only daytime hours",
			day:  day("07:00 AM", "07:00 PM", hour("2025-03-10 12:00", 90), hour("2025-03-10 19:00", 90)),
			want: 0,
		},
		{
			name: "sunrise and sunset are daytime",
			day: day("07:00 AM", "07:00 PM",
				hour("2025-03-10 07:00", 100),
				hour("2025-03-10 19:00", 100),
				hour("2025-03-10 06:59", 20),
			),
			want: 20,
		},
		{
			name: "half rounds up",
			day: day("07:00 AM", "07:00 PM",
				hour("2025-03-10 01:00", 10),
				hour("2025-03-10 23:00", 11),
			),
			want: 11,
		},
		{
			name: "malformed hour excluded",
			day: day("07:00 AM", "07:00 PM",
				hour("2025-03-10 01:00", 40),
				hour("yesterday", 0),
				hour("2025-03-10 23:00", 60),
			),
			want: 50,
		},
		{
			name: "bad sunrise",
			day:  day("7:00", "07:00 PM", hour("2025-03-10 01:00", 40)),
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NightCloudCover(tt.day, discardLogger()); got != tt.want {
				t.Errorf("NightCloudCover() = %d; want %d", got, tt.want)
			}
		})
	}
}

func TestNightCloudCover_logsSkippedHours(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	NightCloudCover(day("07:00 AM", "07:00 PM", hour("not-a-time", 10)), logger)

	if !strings.Contains(buf.String(), "skipping hour with bad timestamp") {
		t.Errorf("expected warning, got: %s", buf.String())
	}
}

func TestBuildDetail_hourCards(t *testing.T) {
	fd := day("07:00 AM", "07:00 PM",
		types.Hour{Time: "2025-03-10 03:00", Cloud: 10, TempC: 4.5, WindKph: 2.49, ChanceOfRain: 0, Condition: types.Condition{Icon: "//x/night.png"}},
		types.Hour{Time: "2025-03-10 12:00", Cloud: 45, TempC: -0.4, WindKph: 20.5, ChanceOfRain: 80},
		types.Hour{Time: "garbage", Cloud: 70},
	)
	page := BuildDetail(types.WeatherData{Forecast: types.Forecast{ForecastDay: []types.ForecastDay{fd}}}, discardLogger())
	hours := page.Days[0].Hours

	want := []HourCard{
		{Time: "03:00", Class: "hour-night", Cloud: 10, CloudClass: "cloud-low", IconURL: "http://x/night.png", TempC: 5, WindKph: 2},
		{Time: "12:00", Class: "hour-day", Cloud: 45, CloudClass: "cloud-mid", TempC: 0, WindKph: 21, ChanceOfRain: 80},
		{Time: "garbage", Class: hourUnknownClass, Cloud: 70, CloudClass: "cloud-high"},
	}
	if len(hours) != len(want) {
		t.Fatalf("hours = %d; want %d", len(hours), len(want))
	}
	for i := range want {
		if hours[i] != want[i] {
			t.Errorf("hour %d = %+v; want %+v", i, hours[i], want[i])
		}
	}
	if hours[0].ShowRain() || !hours[1].ShowRain() {
		t.Error("ShowRain should only be true for a wet hour")
	}
}

func TestBuildDetail_metrics(t *testing.T) {
	data := weathertest.Location("teide", true)
	data.Forecast.ForecastDay[0].Astro.MoonIllumination = 50

	page := BuildDetail(data, discardLogger())
	d := page.Days[0]

	if d.NightCloud != weathertest.NightCloud() {
		t.Errorf("NightCloud = %d; want %d", d.NightCloud, weathertest.NightCloud())
	}
	if d.NightCloudHint.Class != "metric-excellent" {
		t.Errorf("NightCloudHint = %+v", d.NightCloudHint)
	}
	if d.MoonHint.Class != "metric-bright" {
		t.Errorf("MoonHint = %+v; want metric-bright at 50%%", d.MoonHint)
	}
	if page.Location.Class != "location-good" {
		t.Errorf("header class = %q", page.Location.Class)
	}
	if !page.Location.Current.ShowUV {
		t.Error("detail header should show UV")
	}
	if page.Title != "Teide teide · AstroWeather" {
		t.Errorf("Title = %q", page.Title)
	}
}

func TestDates(t *testing.T) {
	tests := []struct {
		in, short, long string
	}{
		{"2025-03-10", "10/3/2025", "Lunes, 10 de marzo de 2025"},
		{"2026-10-18", "18/10/2026", "Domingo, 18 de octubre de 2026"},
		{"2024-02-29", "29/2/2024", "Jueves, 29 de febrero de 2024"},
		{"2025-01-04", "4/1/2025", "Sábado, 4 de enero de 2025"},
		{"not a date", "not a date", "not a date"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ShortDate(tt.in); got != tt.short {
				t.Errorf("ShortDate(%q) = %q; want %q", tt.in, got, tt.short)
			}
			if got := LongDate(tt.in); got != tt.long {
				t.Errorf("LongDate(%q) = %q; want %q", tt.in, got, tt.long)
			}
		})
	}
}

func TestHoursRange(t *testing.T) {
	if got := HoursRange(nil); got != "-" {
		t.Errorf("HoursRange(nil) = %q", got)
	}
	hours := []types.Hour{{Time: "2025-03-10 18:00"}, {Time: "2025-03-10 19:00"}, {Time: "2025-03-11 06:00"}}
	if got := HoursRange(hours); got != "18:00 - 06:00 (3h)" {
		t.Errorf("HoursRange = %q", got)
	}
}

func TestDetailURL(t *testing.T) {
	if got := DetailURL("la palma"); got != "/la%20palma/detail" {
		t.Errorf("DetailURL = %q", got)
	}
}

package views

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/danngalann/astroweather/internal/astro"
	"github.com/danngalann/astroweather/internal/modules/weather/types"
)

const appTitle = "AstroWeather"

// hourUnknownClass styles an hour whose timestamp or sun times could not be parsed.
const hourUnknownClass = "hour-unknown"

type OverviewPage struct {
	Title     string
	Locations []LocationCard
}

// LocationCard is the location header shared by both pages.
type LocationCard struct {
	Name        string
	Slug        string
	Region      string
	Country     string
	Bortle      int
	GoodTonight bool
	Class       string
	DetailURL   string
	Current     CurrentConditions
	Days        []DaySummary
}

type CurrentConditions struct {
	IconURL   string
	Condition string
	TempC     float64
	Humidity  float64
	WindKph   float64
	UV        float64
	ShowUV    bool
}

// DaySummary is one forecast day on the overview card.
type DaySummary struct {
	IconURL     string
	Date        string
	Condition   string
	MinTempC    float64
	MaxTempC    float64
	AvgHumidity float64
	Hours       string
}

type DetailPage struct {
	Title    string
	Location LocationCard
	Days     []DayDetail
}

type DayDetail struct {
	Date             string
	Condition        string
	MinTempC         float64
	MaxTempC         float64
	Sunrise          string
	Sunset           string
	Moonrise         string
	Moonset          string
	NightCloud       int
	NightCloudHint   astro.DisplayHint
	MoonIllumination float64
	MoonHint         astro.DisplayHint
	MoonPhase        string
	Hours            []HourCard
}

type HourCard struct {
	Time         string
	Class        string
	Cloud        float64
	CloudClass   string
	IconURL      string
	Condition    string
	TempC        int
	Humidity     float64
	WindKph      int
	ChanceOfRain float64
}

// ShowRain is false for a dry hour so the template can skip the row.
func (h HourCard) ShowRain() bool { return h.ChanceOfRain > 0 }

type ErrorPage struct {
	Title   string
	Status  int
	Message string
}

func BuildOverview(data []types.WeatherData) *OverviewPage {
	page := &OverviewPage{Title: appTitle, Locations: make([]LocationCard, 0, len(data))}
	for _, d := range data {
		card := buildLocationCard(d)
		for _, fd := range d.Forecast.ForecastDay {
			card.Days = append(card.Days, buildDaySummary(fd))
		}
		page.Locations = append(page.Locations, card)
	}
	return page
}

func BuildDetail(data types.WeatherData, logger *slog.Logger) *DetailPage {
	if logger == nil {
		logger = slog.Default()
	}
	page := &DetailPage{
		Title:    data.Location.Name + " · " + appTitle,
		Location: buildLocationCard(data),
		Days:     make([]DayDetail, 0, len(data.Forecast.ForecastDay)),
	}
	page.Location.Current.ShowUV = true
	for _, fd := range data.Forecast.ForecastDay {
		page.Days = append(page.Days, buildDayDetail(fd, logger))
	}
	return page
}

func buildLocationCard(d types.WeatherData) LocationCard {
	loc := d.Location
	return LocationCard{
		Name:        loc.Name,
		Slug:        loc.Slug,
		Region:      loc.Region,
		Country:     loc.Country,
		Bortle:      loc.Bortle,
		GoodTonight: loc.IsGoodPlaceTonight,
		Class:       astro.LocationQualityStyle(loc.IsGoodPlaceTonight),
		DetailURL:   DetailURL(loc.Slug),
		Current: CurrentConditions{
			IconURL:   astro.NormalizeIconURL(d.Current.Condition.Icon),
			Condition: d.Current.Condition.Text,
			TempC:     d.Current.TempC,
			Humidity:  d.Current.Humidity,
			WindKph:   d.Current.WindKph,
			UV:        d.Current.UV,
		},
	}
}

// DetailURL is the path of the detail page for slug.
func DetailURL(slug string) string {
	return "/" + url.PathEscape(slug) + "/detail"
}

func buildDaySummary(fd types.ForecastDay) DaySummary {
	return DaySummary{
		IconURL:     astro.NormalizeIconURL(fd.Day.Condition.Icon),
		Date:        ShortDate(fd.Date),
		Condition:   fd.Day.Condition.Text,
		MinTempC:    fd.Day.MinTempC,
		MaxTempC:    fd.Day.MaxTempC,
		AvgHumidity: fd.Day.AvgHumidity,
		Hours:       HoursRange(fd.Hour),
	}
}

func buildDayDetail(fd types.ForecastDay, logger *slog.Logger) DayDetail {
	night := NightCloudCover(fd, logger)
	moon := astro.ClassifyMoonIllumination(fd.Astro.MoonIllumination)
	dd := DayDetail{
		Date:             LongDate(fd.Date),
		Condition:        fd.Day.Condition.Text,
		MinTempC:         fd.Day.MinTempC,
		MaxTempC:         fd.Day.MaxTempC,
		Sunrise:          fd.Astro.Sunrise,
		Sunset:           fd.Astro.Sunset,
		Moonrise:         fd.Astro.Moonrise,
		Moonset:          fd.Astro.Moonset,
		NightCloud:       night,
		NightCloudHint:   astro.ClassifyCloudCover(float64(night)).Hint,
		MoonIllumination: fd.Astro.MoonIllumination,
		MoonHint:         moon.Hint,
		MoonPhase:        fd.Astro.MoonPhase,
		Hours:            make([]HourCard, 0, len(fd.Hour)),
	}

	window, windowErr := astro.ParseSunWindow(fd.Astro.Sunrise, fd.Astro.Sunset)
	for _, h := range fd.Hour {
		class := hourUnknownClass
		if windowErr == nil {
			if isDay, err := window.IsDaytime(h.Time); err == nil {
				class = astro.DayNightStyle(isDay)
			}
		}
		dd.Hours = append(dd.Hours, HourCard{
			Time:         ClockLabel(h.Time),
			Class:        class,
			Cloud:        h.Cloud,
			CloudClass:   astro.HourlyCloudIntensity(h.Cloud),
			IconURL:      astro.NormalizeIconURL(h.Condition.Icon),
			Condition:    h.Condition.Text,
			TempC:        roundHalfUp(h.TempC),
			Humidity:     h.Humidity,
			WindKph:      roundHalfUp(h.WindKph),
			ChanceOfRain: h.ChanceOfRain,
		})
	}
	return dd
}

// NightCloudCover averages the cloud cover of the hours outside
// [sunrise, sunset] and rounds it to the nearest integer. Hours that cannot
// be classified are left out; with no night hours the result is 0.
func NightCloudCover(fd types.ForecastDay, logger *slog.Logger) int {
	if logger == nil {
		logger = slog.Default()
	}
	window, err := astro.ParseSunWindow(fd.Astro.Sunrise, fd.Astro.Sunset)
	if err != nil {
		logger.Warn("skipping night cloud cover: bad sun times",
			"date", fd.Date,
			"sunrise", fd.Astro.Sunrise,
			"sunset", fd.Astro.Sunset,
			"error", err,
		)
		return 0
	}

	var sum float64
	n := 0
	for _, h := range fd.Hour {
		isDay, err := window.IsDaytime(h.Time)
		if err != nil {
			logger.Warn("skipping hour with bad timestamp", "date", fd.Date, "time", h.Time, "error", err)
			continue
		}
		logger.Debug("classified hour",
			"time", h.Time,
			"sunrise", window.Sunrise.String(),
			"sunset", window.Sunset.String(),
			"daytime", isDay,
		)
		if !isDay {
			sum += h.Cloud
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return roundHalfUp(sum / float64(n))
}

// roundHalfUp rounds .5 towards +Inf.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ClockLabel formats the wall clock of a forecast timestamp as HH:MM. The
// input is returned unchanged if it does not parse.
func ClockLabel(ts string) string {
	t, err := astro.ParseTimestamp(ts)
	if err != nil {
		return ts
	}
	return t.Format("15:04")
}

// HoursRange describes the span of an hourly forecast, e.g.
// "00:00 - 23:00 (24h)".
func HoursRange(hours []types.Hour) string {
	if len(hours) == 0 {
		return "-"
	}
	first := ClockLabel(hours[0].Time)
	last := ClockLabel(hours[len(hours)-1].Time)
	return fmt.Sprintf("%s - %s (%dh)", first, last, len(hours))
}

var spanishWeekdays = [...]string{"domingo", "lunes", "martes", "miércoles", "jueves", "viernes", "sábado"}

var spanishMonths = [...]string{
	"enero", "febrero", "marzo", "abril", "mayo", "junio",
	"julio", "agosto", "septiembre", "octubre", "noviembre", "diciembre",
}

func parseDate(s string) (time.Time, bool) {
	t, err := time.Parse(time.DateOnly, strings.TrimSpace(s))
	return t, err == nil
}

// ShortDate formats a YYYY-MM-DD date as D/M/YYYY.
func ShortDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// LongDate formats a YYYY-MM-DD date in Spanish, e.g.
// "Lunes, 10 de marzo de 2025".
func LongDate(s string) string {
	t, ok := parseDate(s)
	if !ok {
		return s
	}
	weekday := spanishWeekdays[t.Weekday()]
	weekday = strings.ToUpper(weekday[:1]) + weekday[1:]
	return fmt.Sprintf("%s, %d de %s de %d", weekday, t.Day(), spanishMonths[t.Month()-1], t.Year())
}

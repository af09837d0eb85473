package types

// WeatherData is one location as served by the weather backend, both as an
// element of GET /weather and as the body of GET /weather/{slug}.
type WeatherData struct {
	Location Location `json:"location"`
	Current  Current  `json:"current"`
	Forecast Forecast `json:"forecast"`
}

type Location struct {
	Query          string  `json:"query"`
	Name           string  `json:"name"`
	Slug           string  `json:"slug"`
	Region         string  `json:"region"`
	Country        string  `json:"country"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	TZID           string  `json:"tz_id"`
	LocaltimeEpoch int64   `json:"localtime_epoch"`
	Localtime      string  `json:"localtime"`
	// Bortle is the light-pollution class of the site (1 darkest, 9 city).
	Bortle int `json:"bortle"`
	// IsGoodPlaceTonight is computed by the backend; absent means false.
	IsGoodPlaceTonight bool `json:"isGoodPlaceTonight"`
}

type Condition struct {
	Text string `json:"text"`
	Icon string `json:"icon"`
	Code int    `json:"code"`
}

type AirQuality struct {
	CO           float64 `json:"co"`
	NO2          float64 `json:"no2"`
	O3           float64 `json:"o3"`
	SO2          float64 `json:"so2"`
	PM25         float64 `json:"pm2_5"`
	PM10         float64 `json:"pm10"`
	USEPAIndex   int     `json:"us_epa_index"`
	GBDefraIndex int     `json:"gb_defra_index"`
}

// DataOrigin names the source an observation came from.
type DataOrigin string

const (
	OriginMeteosat   DataOrigin = "meteosat"
	OriginWeatherAPI DataOrigin = "weatherapi"
)

type Current struct {
	LastUpdatedEpoch int64       `json:"last_updated_epoch"`
	LastUpdated      string      `json:"last_updated"`
	TempC            float64     `json:"temp_c"`
	IsDay            int         `json:"is_day"`
	Condition        Condition   `json:"condition"`
	WindKph          float64     `json:"wind_kph"`
	WindDegree       int         `json:"wind_degree"`
	WindDir          string      `json:"wind_dir"`
	PressureMb       float64     `json:"pressure_mb"`
	PrecipMm         float64     `json:"precip_mm"`
	Humidity         float64     `json:"humidity"`
	Cloud            float64     `json:"cloud"`
	FeelslikeC       float64     `json:"feelslike_c"`
	VisKm            float64     `json:"vis_km"`
	UV               float64     `json:"uv"`
	GustKph          float64     `json:"gust_kph"`
	AirQuality       *AirQuality `json:"air_quality,omitempty"`
	DataOrigin       DataOrigin  `json:"data_origin"`
}

type Hour struct {
	TimeEpoch    int64       `json:"time_epoch"`
	Time         string      `json:"time"`
	TempC        float64     `json:"temp_c"`
	IsDay        int         `json:"is_day"`
	Condition    Condition   `json:"condition"`
	WindKph      float64     `json:"wind_kph"`
	WindDegree   int         `json:"wind_degree"`
	WindDir      string      `json:"wind_dir"`
	PressureMb   float64     `json:"pressure_mb"`
	PrecipMm     float64     `json:"precip_mm"`
	Humidity     float64     `json:"humidity"`
	Cloud        float64     `json:"cloud"`
	FeelslikeC   float64     `json:"feelslike_c"`
	DewpointC    float64     `json:"dewpoint_c"`
	WillItRain   int         `json:"will_it_rain"`
	ChanceOfRain float64     `json:"chance_of_rain"`
	WillItSnow   int         `json:"will_it_snow"`
	ChanceOfSnow float64     `json:"chance_of_snow"`
	VisKm        float64     `json:"vis_km"`
	GustKph      float64     `json:"gust_kph"`
	UV           float64     `json:"uv"`
	AirQuality   *AirQuality `json:"air_quality,omitempty"`
	DataOrigin   DataOrigin  `json:"data_origin"`
}

type Day struct {
	MaxTempC          float64     `json:"maxtemp_c"`
	MinTempC          float64     `json:"mintemp_c"`
	AvgTempC          float64     `json:"avgtemp_c"`
	MaxWindKph        float64     `json:"maxwind_kph"`
	TotalPrecipMm     float64     `json:"totalprecip_mm"`
	TotalSnowCm       float64     `json:"totalsnow_cm"`
	AvgVisKm          float64     `json:"avgvis_km"`
	AvgHumidity       float64     `json:"avghumidity"`
	DailyWillItRain   int         `json:"daily_will_it_rain"`
	DailyChanceOfRain float64     `json:"daily_chance_of_rain"`
	DailyWillItSnow   int         `json:"daily_will_it_snow"`
	DailyChanceOfSnow float64     `json:"daily_chance_of_snow"`
	Condition         Condition   `json:"condition"`
	UV                float64     `json:"uv"`
	AirQuality        *AirQuality `json:"air_quality,omitempty"`
}

// Astro times are 12-hour clock strings such as "07:56 AM".
type Astro struct {
	Sunrise          string  `json:"sunrise"`
	Sunset           string  `json:"sunset"`
	Moonrise         string  `json:"moonrise"`
	Moonset          string  `json:"moonset"`
	MoonPhase        string  `json:"moon_phase"`
	MoonIllumination float64 `json:"moon_illumination"`
	IsMoonUp         int     `json:"is_moon_up"`
	IsSunUp          int     `json:"is_sun_up"`
}

type ForecastDay struct {
	Date      string `json:"date"`
	DateEpoch int64  `json:"date_epoch"`
	Day       Day    `json:"day"`
	Astro     Astro  `json:"astro"`
	Hour      []Hour `json:"hour"`
}

type Forecast struct {
	ForecastDay []ForecastDay `json:"forecastday"`
}

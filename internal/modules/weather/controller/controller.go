package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danngalann/astroweather/internal/modules/weather/types"
)

// WeatherService is what the pages need from the weather module.
type WeatherService interface {
	Overview(ctx context.Context) ([]types.WeatherData, error)
	Location(ctx context.Context, slug string) (types.WeatherData, error)
}

type WeatherController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type weatherControllerImpl struct {
	service WeatherService
	logger  *slog.Logger
}

func NewWeatherController(service WeatherService, logger *slog.Logger) WeatherController {
	if logger == nil {
		logger = slog.Default()
	}
	return &weatherControllerImpl{service: service, logger: logger}
}

func (c *weatherControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handleOverview)
	mux.HandleFunc("GET /{slug}/detail", c.handleDetail)
}

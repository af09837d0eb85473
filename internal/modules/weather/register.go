package weather

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/danngalann/astroweather/internal/config"
	"github.com/danngalann/astroweather/internal/modules/weather/controller"
	"github.com/danngalann/astroweather/internal/modules/weather/repository"
	"github.com/danngalann/astroweather/internal/modules/weather/service"
	"github.com/danngalann/astroweather/internal/modules/weather/upstream"
	"github.com/danngalann/astroweather/internal/mqtt"
)

// RegisterFeature wires the weather pages onto mux. subscriber may be nil
// when MQTT is disabled.
func RegisterFeature(mux *http.ServeMux, db *sql.DB, cfg config.Config, subscriber mqtt.RefreshSubscriber, logger *slog.Logger) *service.Service {
	client := upstream.NewClient(cfg.APIURL, cfg.UpstreamTimeout, cfg.UpstreamRPS, cfg.UpstreamBurst)
	weatherRepository := repository.NewRepository(db)
	weatherService := service.NewService(client, weatherRepository, cfg.Revalidate, logger.With("module", "weather"))
	if subscriber != nil {
		weatherService.Register(subscriber)
	}
	weatherController := controller.NewWeatherController(weatherService, logger.With("module", "weather"))
	weatherController.RegisterRoutes(mux)
	return weatherService
}

package controller

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/danngalann/astroweather/internal/modules/weather/upstream"
	"github.com/danngalann/astroweather/internal/modules/weather/views"
	"github.com/danngalann/astroweather/internal/utils"
)

func (c *weatherControllerImpl) handleOverview(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		c.writeErrorPage(w, http.StatusNotFound, "There is nothing at "+r.URL.Path+".")
		return
	}

	data, err := c.service.Overview(r.Context())
	if err != nil {
		c.logger.Error("overview: fetch weather failed", "error", err)
		c.writeFetchError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := views.RenderOverview(&buf, views.BuildOverview(data)); err != nil {
		c.logger.Error("overview template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

func (c *weatherControllerImpl) handleDetail(w http.ResponseWriter, r *http.Request) {
	slug := r.PathValue("slug")
	if slug == "" {
		c.writeErrorPage(w, http.StatusNotFound, "Missing location.")
		return
	}

	data, err := c.service.Location(r.Context(), slug)
	if err != nil {
		c.logger.Error("detail: fetch weather failed", "slug", slug, "error", err)
		c.writeFetchError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := views.RenderDetail(&buf, views.BuildDetail(data, c.logger.With("slug", slug))); err != nil {
		c.logger.Error("detail template render failed", "slug", slug, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

// writeFetchError maps a weather backend failure onto an error page: an
// unknown location is a 404, anything else a 502.
func (c *weatherControllerImpl) writeFetchError(w http.ResponseWriter, err error) {
	if errors.Is(err, upstream.ErrNotFound) {
		c.writeErrorPage(w, http.StatusNotFound, "This location does not exist.")
		return
	}

	msg := "Failed to fetch weather data."
	var se *upstream.StatusError
	if errors.As(err, &se) {
		msg = fmt.Sprintf("Failed to fetch weather data: the weather service answered %d %s.",
			se.StatusCode, http.StatusText(se.StatusCode))
	}
	c.writeErrorPage(w, http.StatusBadGateway, msg)
}

func (c *weatherControllerImpl) writeErrorPage(w http.ResponseWriter, status int, msg string) {
	var buf bytes.Buffer
	page := &views.ErrorPage{Title: http.StatusText(status), Status: status, Message: msg}
	if err := views.RenderError(&buf, page); err != nil {
		c.logger.Error("error template render failed", "status", status, "error", err)
		utils.WriteError(w, status, msg)
		return
	}
	utils.WriteHTML(w, status, buf.Bytes())
}

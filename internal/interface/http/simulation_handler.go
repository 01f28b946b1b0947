package http

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/heliowatt/heliowatt/internal/charts"
	"github.com/heliowatt/heliowatt/internal/domain/export"
	"github.com/heliowatt/heliowatt/internal/domain/location"
	"github.com/heliowatt/heliowatt/internal/domain/simulation"
	apperrors "github.com/heliowatt/heliowatt/pkg/errors"
)

// ResolveLocation turns an address or coordinate pair into a resolved place.
func (h *Handler) ResolveLocation(c *gin.Context) {
	var req location.Query
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	place, err := h.locationSvc.Resolve(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, resolveHTTPError(err))
		return
	}
	h.rememberLocation(c, req)

	c.JSON(http.StatusOK, place)
}

// rememberLocation updates the caller's session record with a freshly resolved
// location, keeping whatever parameters were saved before. Best effort.
func (h *Handler) rememberLocation(c *gin.Context, q location.Query) {
	claims, ok := getClaims(c)
	if !ok || claims.UserID == 0 {
		return
	}
	params := simulation.DefaultSystemConfig()
	if record, found, err := h.sessionSvc.Inputs(c.Request.Context(), claims.UserID); err == nil && found {
		params = record.Params
	}
	if err := h.sessionSvc.Remember(c.Request.Context(), claims.UserID, q, params); err != nil {
		h.logger.Warn("failed to remember inputs", "userId", claims.UserID, "error", err)
	}
}

// SimulationDefaults exposes the starting parameters and their bounds.
func (h *Handler) SimulationDefaults(c *gin.Context) {
	c.JSON(http.StatusOK, h.simulationSvc.Defaults())
}

// RunSimulation executes the full resolve-estimate-render pipeline.
func (h *Handler) RunSimulation(c *gin.Context) {
	req, ok := bindRunRequest(c)
	if !ok {
		return
	}

	report, err := h.simulationSvc.Run(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, simulationHTTPError(err))
		return
	}

	c.JSON(http.StatusOK, report)
}

// MonthlyChart runs a monthly simulation and renders its output as a PNG bar
// chart.
func (h *Handler) MonthlyChart(c *gin.Context) {
	req, ok := bindRunRequest(c)
	if !ok {
		return
	}

	report, err := h.simulationSvc.Run(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, simulationHTTPError(err))
		return
	}
	if len(report.Monthly) == 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "chart requires a monthly simulation", nil))
		return
	}

	var buf bytes.Buffer
	if err := charts.RenderMonthly(&buf, report); err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "chart_failed", errMessage(err), err))
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

// ExportHourly runs an hourly simulation and returns the full series as CSV.
// With ?archive=1 the file is stored in the export archive instead and its
// key returned.
func (h *Handler) ExportHourly(c *gin.Context) {
	req, ok := bindRunRequest(c)
	if !ok {
		return
	}

	report, err := h.simulationSvc.Run(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, simulationHTTPError(err))
		return
	}
	if len(report.Hourly) == 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "export requires an hourly simulation", nil))
		return
	}

	data, err := export.HourlyCSV(report.Hourly)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "export_failed", errMessage(err), err))
		return
	}

	if wantArchive(c) {
		artifact, err := h.exportSvc.Archive(c.Request.Context(), req.UserID, export.KindHourlyCSV, data)
		if err != nil {
			abortWithError(c, archiveHTTPError(err))
			return
		}
		c.JSON(http.StatusOK, artifact)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="hourly_output.csv"`)
	c.Data(http.StatusOK, export.KindHourlyCSV.ContentType(), data)
}

// ExportConfig returns the posted parameter set as a JSON document for later
// reuse. With ?archive=1 the file is stored in the export archive instead.
func (h *Handler) ExportConfig(c *gin.Context) {
	var req struct {
		Params *simulation.SystemConfig `json:"params"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	cfg := simulation.DefaultSystemConfig()
	if req.Params != nil {
		cfg = *req.Params
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	data, err := export.ConfigJSON(cfg)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "export_failed", errMessage(err), err))
		return
	}

	if wantArchive(c) {
		claims, ok := getClaims(c)
		if !ok {
			abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
			return
		}
		artifact, err := h.exportSvc.Archive(c.Request.Context(), claims.UserID, export.KindConfigJSON, data)
		if err != nil {
			abortWithError(c, archiveHTTPError(err))
			return
		}
		c.JSON(http.StatusOK, artifact)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="pvwatts_inputs.json"`)
	c.Data(http.StatusOK, export.KindConfigJSON.ContentType(), data)
}

// SessionInputs returns the caller's last remembered location and parameters.
func (h *Handler) SessionInputs(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	record, found, err := h.sessionSvc.Inputs(c.Request.Context(), claims.UserID)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "session_error", errMessage(err), err))
		return
	}
	if !found {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "no saved inputs", nil))
		return
	}

	c.JSON(http.StatusOK, record)
}

// DownloadExport streams a previously archived export artifact.
func (h *Handler) DownloadExport(c *gin.Context) {
	claims, ok := getClaims(c)
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusUnauthorized, "unauthorized", "missing token", nil))
		return
	}

	key := strings.TrimPrefix(c.Param("key"), "/")
	if key == "" {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "export key is required", nil))
		return
	}

	data, contentType, err := h.exportSvc.Fetch(c.Request.Context(), claims.UserID, key)
	if err != nil {
		status := http.StatusInternalServerError
		code := "export_failed"
		switch {
		case apperrors.IsCode(err, "export_not_found"):
			status = http.StatusNotFound
			code = "export_not_found"
		case apperrors.IsCode(err, "archive_disabled"):
			status = http.StatusConflict
			code = "archive_disabled"
		}
		abortWithError(c, NewHTTPError(status, code, errMessage(err), err))
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

func bindRunRequest(c *gin.Context) (simulation.RunRequest, bool) {
	var req simulation.RunRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return simulation.RunRequest{}, false
	}
	if claims, ok := getClaims(c); ok {
		req.UserID = claims.UserID
	}
	return req, true
}

func resolveHTTPError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "geocode_failed"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "address_not_found"):
		status = http.StatusNotFound
		code = "address_not_found"
	case apperrors.IsCode(err, "geocode_error"), apperrors.IsCode(err, "geocode_decode_error"):
		status = http.StatusBadGateway
		code = apperrors.CodeOf(err)
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func simulationHTTPError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "simulation_failed"
	switch {
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	case apperrors.IsCode(err, "address_not_found"):
		status = http.StatusNotFound
		code = "address_not_found"
	case apperrors.IsCode(err, "geocode_error"),
		apperrors.IsCode(err, "geocode_decode_error"),
		apperrors.IsCode(err, "estimate_error"),
		apperrors.IsCode(err, "no_outputs"),
		apperrors.IsCode(err, "invalid_outputs"):
		status = http.StatusBadGateway
		code = apperrors.CodeOf(err)
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func archiveHTTPError(err error) *HTTPError {
	status := http.StatusInternalServerError
	code := "export_failed"
	switch {
	case apperrors.IsCode(err, "archive_disabled"):
		status = http.StatusConflict
		code = "archive_disabled"
	case apperrors.IsCode(err, "invalid_input"):
		status = http.StatusBadRequest
		code = "invalid_request"
	}
	return NewHTTPError(status, code, errMessage(err), err)
}

func wantArchive(c *gin.Context) bool {
	v := c.Query("archive")
	return v == "1" || strings.EqualFold(v, "true")
}

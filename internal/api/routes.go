package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/satriahrh/snapspeak/domain"
	"github.com/satriahrh/snapspeak/domain/entities"
	"github.com/satriahrh/snapspeak/internal/capture"
	"github.com/satriahrh/snapspeak/internal/metrics"
	"github.com/satriahrh/snapspeak/internal/websocket"
	"github.com/satriahrh/snapspeak/usecase"
)

// Dependencies holds what the routes are served from
type Dependencies struct {
	Hub           *websocket.Hub
	Describer     *usecase.Describer
	MaxFrameBytes int64

	// Metrics and Gatherer are optional. /metrics is served when Gatherer is set.
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
}

// InitRoutes initializes all API routes
func InitRoutes(e *echo.Echo, deps Dependencies, logger *zap.Logger) {
	if deps.MaxFrameBytes <= 0 {
		deps.MaxFrameBytes = capture.DefaultMaxFrameBytes
	}

	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "snapspeak-server",
		})
	})

	if deps.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/describe", func(c echo.Context) error {
		status, err := describe(c, deps, logger)
		if deps.Metrics != nil {
			deps.Metrics.DescribeRequests.WithLabelValues(strconv.Itoa(status)).Inc()
		}
		return err
	})

	v1.GET("/sessions", func(c echo.Context) error {
		sessions := deps.Hub.Sessions()
		return c.JSON(http.StatusOK, SessionsResponse{
			Count:    len(sessions),
			Sessions: sessions,
		})
	})

	// WebSocket endpoint, one capture session per connection
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(deps.Hub, c, logger)
	})
}

// describe runs one capture cycle over an uploaded image without narration
func describe(c echo.Context, deps Dependencies, logger *zap.Logger) (int, error) {
	file, err := c.FormFile("file")
	if err != nil {
		return respondError(c, http.StatusBadRequest, "missing_file", "An image file is required in the 'file' field")
	}

	if file.Size > deps.MaxFrameBytes {
		return respondError(c, http.StatusRequestEntityTooLarge, "file_too_large",
			fmt.Sprintf("Image exceeds %d bytes", deps.MaxFrameBytes))
	}

	src, err := file.Open()
	if err != nil {
		logger.Error("Failed to open uploaded file", zap.Error(err))
		return respondError(c, http.StatusBadRequest, "invalid_file", "Failed to read the uploaded file")
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, deps.MaxFrameBytes+1))
	if err != nil {
		logger.Error("Failed to read uploaded file", zap.Error(err))
		return respondError(c, http.StatusBadRequest, "invalid_file", "Failed to read the uploaded file")
	}

	img, format, err := capture.DecodeFrame(data, deps.MaxFrameBytes)
	if err != nil {
		logger.Warn("Rejected uploaded image",
			zap.String("filename", file.Filename),
			zap.Int("size", len(data)),
			zap.Error(err))
		return respondError(c, http.StatusBadRequest, "invalid_image", err.Error())
	}

	result, err := deps.Describer.DescribeImage(c.Request().Context(), img)
	if err != nil {
		if errors.Is(err, domain.ErrAnalysisFailed) {
			logger.Error("Describe request failed", zap.String("format", format), zap.Error(err))
			return respondError(c, http.StatusBadGateway, domain.ErrorCode(err), entities.AnalysisFailedText)
		}
		logger.Error("Describe request errored", zap.String("format", format), zap.Error(err))
		return respondError(c, http.StatusInternalServerError, "internal_error", "Failed to describe the image")
	}

	response := DescribeResponse{
		Description: entities.NoDescriptionText,
		Found:       result.Found,
		Model:       result.Model,
		ElapsedMs:   result.Elapsed.Milliseconds(),
	}
	if result.Found {
		response.Description = result.Text
		response.Confidence = result.Confidence
	}
	if debug, _ := strconv.ParseBool(c.QueryParam("debug")); debug && json.Valid(result.Raw) {
		response.Raw = result.Raw
	}

	logger.Info("Described uploaded image",
		zap.String("format", format),
		zap.Bool("found", result.Found),
		zap.Duration("elapsed", result.Elapsed))

	return http.StatusOK, c.JSON(http.StatusOK, response)
}

func respondError(c echo.Context, status int, code, message string) (int, error) {
	return status, c.JSON(status, ErrorResponse{
		Error:   code,
		Message: message,
	})
}

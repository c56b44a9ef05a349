package middleware

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/projecthub-api/internal/observability"
)

const unmatchedRoute = "unmatched"

// Observability counts, times and logs every /api request.
func Observability(logger zerolog.Logger) fiber.Handler {
	observability.RegisterMetrics()

	return func(c *fiber.Ctx) error {
		if !strings.HasPrefix(c.Path(), "/api") {
			return c.Next()
		}

		start := time.Now()
		err := c.Next()
		elapsed := time.Since(start)

		status := responseStatus(c, err)
		route := routeLabel(c, status)
		code := strconv.Itoa(status)

		observability.HTTPRequests().WithLabelValues(c.Method(), route, code).Inc()
		observability.HTTPLatency().WithLabelValues(c.Method(), route).Observe(elapsed.Seconds())
		if status >= fiber.StatusBadRequest {
			observability.HTTPErrors().WithLabelValues(c.Method(), route, code).Inc()
		}

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = logger.Error().Err(err)
		case status >= fiber.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Debug()
		}
		event.
			Str("correlation_id", GetCorrelationID(c)).
			Str("method", c.Method()).
			Str("route", route).
			Int("status", status).
			Uint("user_id", IdentityFromContext(c).ID).
			Dur("latency", elapsed).
			Msg("request handled")

		return err
	}
}

// responseStatus reports the status the client will see. Errors returned up
// the chain are only written by the app's ErrorHandler after this returns.
func responseStatus(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// routeLabel keeps metric cardinality bounded: unknown paths share one label.
func routeLabel(c *fiber.Ctx, status int) string {
	if status == fiber.StatusNotFound || status == fiber.StatusMethodNotAllowed {
		if route := c.Route(); route == nil || route.Path == "/" || strings.Contains(route.Path, "*") {
			return unmatchedRoute
		}
	}
	if route := c.Route(); route != nil && route.Path != "" {
		return route.Path
	}
	return unmatchedRoute
}

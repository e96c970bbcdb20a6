package middleware

import (
	"time"

	"lexcase_api_go/logger"
	"lexcase_api_go/services"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestMeta copies the client IP and user agent into the request context so
// activity entries written during the request carry them
func RequestMeta() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			ctx := services.WithRequestMeta(req.Context(), services.RequestMeta{
				IPAddress: c.RealIP(),
				UserAgent: req.UserAgent(),
			})
			c.SetRequest(req.WithContext(ctx))
			return next(c)
		}
	}
}

// RequestLogger writes one structured line per request
func RequestLogger() echo.MiddlewareFunc {
	log := logger.Component("http")
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// let the error handler write the status before we read it
				c.Error(err)
			}

			fields := logrus.Fields{
				"method":     c.Request().Method,
				"path":       c.Path(),
				"status":     c.Response().Status,
				"latency_ms": time.Since(start).Milliseconds(),
				"ip":         c.RealIP(),
			}
			if user := GetCurrentUser(c); user != nil {
				fields["user_id"] = user.ID
			}
			entry := log.WithFields(fields)
			switch {
			case c.Response().Status >= 500:
				entry.Error("request failed")
			case c.Response().Status >= 400:
				entry.Warn("request rejected")
			default:
				entry.Debug("request")
			}
			return nil
		}
	}
}

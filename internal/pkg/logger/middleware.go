package logger

import (
	"time"

	"github.com/labstack/echo/v4"
)

// EchoMiddleware logs every HTTP request with latency and status using the
// given logger.
func EchoMiddleware(zl *ZapLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			latency := time.Since(start)

			fields := []Field{
				String("method", req.Method),
				String("path", req.URL.Path),
				String("client_ip", c.RealIP()),
				Int("status", res.Status),
				Duration("latency", latency),
			}
			if requestID := res.Header().Get(echo.HeaderXRequestID); requestID != "" {
				fields = append(fields, String("request_id", requestID))
			}

			switch {
			case res.Status >= 500:
				if err != nil {
					fields = append(fields, Err(err))
				}
				zl.Error("Server error", fields...)
			case res.Status >= 400:
				zl.Warn("Client error", fields...)
			default:
				zl.Info("Request processed", fields...)
			}

			return nil
		}
	}
}

package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/tripwise-ai/tripwise/pkg/infra/prometheus"
)

type metricsMiddleware struct {
	logger *logrus.Logger
}

func NewMetricsMiddleware(logger *logrus.Logger) Middleware {
	return &metricsMiddleware{logger: logger}
}

func (m *metricsMiddleware) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		status := c.Response().StatusCode()
		prometheus.RequestTotal.WithLabelValues(c.Method(), statusClass(status)).Inc()
		prometheus.RequestLatency.WithLabelValues(c.Route().Path).
			Observe(float64(time.Since(start).Milliseconds()))

		return err
	}
}

func statusClass(status int) string {
	return strconv.Itoa(status/100) + "xx"
}

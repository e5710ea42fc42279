package store

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type PoolStats struct {
	TotalConns      int32  `json:"totalConns"`
	IdleConns       int32  `json:"idleConns"`
	AcquiredConns   int32  `json:"acquiredConns"`
	MaxConns        int32  `json:"maxConns"`
	AcquireCount    int64  `json:"acquireCount"`
	AcquireDuration string `json:"acquireDuration"`
}

func (s *Store) Stats() PoolStats {
	st := s.pool.Stat()
	return PoolStats{
		TotalConns:      st.TotalConns(),
		IdleConns:       st.IdleConns(),
		AcquiredConns:   st.AcquiredConns(),
		MaxConns:        st.MaxConns(),
		AcquireCount:    st.AcquireCount(),
		AcquireDuration: st.AcquireDuration().String(),
	}
}

// HealthHandler pings the database and reports pool statistics; 503 when
// the ping fails.
func (s *Store) HealthHandler() echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		now := time.Now().UTC().Format(time.RFC3339)
		if err := s.pool.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": now,
				"pool":      s.Stats(),
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status":    "ok",
			"timestamp": now,
			"pool":      s.Stats(),
		})
	}
}

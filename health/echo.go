package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Response is the body of the detailed endpoints.
type Response struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Checks    []CheckResponse `json:"checks,omitempty"`
}

// CheckResponse is one check in a Response.
type CheckResponse struct {
	Name     string         `json:"name"`
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Register mounts the health endpoints on e:
//
//	GET /healthz        liveness, always 200
//	GET /readyz         200 unless a check is unhealthy
//	GET /health         detailed JSON for every check
//	GET /health/:name   detailed JSON for one check
func Register(e *echo.Echo, agg *Aggregator) {
	e.GET("/healthz", Liveness)
	e.GET("/readyz", Readiness(agg))
	e.GET("/health", Detailed(agg))
	e.GET("/health/:name", Single(agg))
}

// Liveness reports that the process is serving.
func Liveness(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Readiness runs every check and answers with the overall status.
func Readiness(agg *Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		status := Overall(agg.CheckAll(c.Request().Context()))
		switch status {
		case StatusHealthy:
			return c.String(http.StatusOK, "OK")
		case StatusDegraded:
			return c.String(http.StatusOK, "DEGRADED")
		default:
			return c.String(http.StatusServiceUnavailable, "UNHEALTHY")
		}
	}
}

// Detailed runs every check and answers with a Response.
func Detailed(agg *Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		results := agg.CheckAll(c.Request().Context())
		status := Overall(results)

		resp := Response{
			Status:    status.String(),
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Checks:    make([]CheckResponse, len(results)),
		}
		for i, r := range results {
			resp.Checks[i] = toCheckResponse(r)
		}
		return c.JSON(httpStatus(status), resp)
	}
}

// Single runs the check named by the :name path parameter.
func Single(agg *Aggregator) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), DefaultTimeout)
		defer cancel()

		r, err := agg.Check(ctx, c.Param("name"))
		if err != nil {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return c.JSON(httpStatus(r.Status), toCheckResponse(r))
	}
}

func toCheckResponse(r Result) CheckResponse {
	cr := CheckResponse{
		Name:     r.Name,
		Status:   r.Status.String(),
		Message:  r.Message,
		Duration: r.Duration.String(),
		Details:  r.Details,
	}
	if r.Err != nil {
		cr.Error = r.Err.Error()
	}
	return cr
}

func httpStatus(s Status) int {
	if s == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

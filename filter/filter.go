package filter

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jonwraymond/logaspect/aspect"
	"github.com/jonwraymond/logaspect/loggable"
	"github.com/jonwraymond/logaspect/observe"
)

// ErrNilAspect indicates New was given a nil aspect.
var ErrNilAspect = errors.New("filter: aspect is nil")

// Filter routes echo requests through an aspect.
type Filter struct {
	aspect  *aspect.Aspect
	service string
}

// New creates a Filter. service, when set, replaces the package path as the
// assembly name in records.
func New(a *aspect.Aspect, service string) (*Filter, error) {
	if a == nil {
		return nil, ErrNilAspect
	}
	return &Filter{aspect: a, service: service}, nil
}

// Request summarizes an inbound request.
type Request struct {
	loggable.Marker
	ID        string
	RemoteIP  string
	URI       string
	UserAgent string `log:"omit"`
}

// Response summarizes a completed response.
type Response struct {
	loggable.Marker
	Status int
	Size   int64
}

// Handle adapts fn to an echo handler. The request body is bound into Req
// and logged as parameter state; the returned Resp is logged as result state
// and written as JSON. A bind failure answers 400 without invoking fn.
// Errors from fn are returned to echo unchanged.
func Handle[Req, Resp any](f *Filter, fn func(context.Context, Req) (Resp, error)) echo.HandlerFunc {
	meta, idErr := aspect.Identify(fn)
	if f.service != "" {
		meta.Assembly = f.service
	}

	return func(c echo.Context) error {
		if idErr != nil {
			return idErr
		}

		var req Req
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}

		out, err := f.aspect.InvokeMeta(c.Request().Context(), meta, []any{req}, func(ctx context.Context) (any, error) {
			return fn(ctx, req)
		})
		if err != nil {
			return err
		}
		resp, _ := out.(Resp)
		return c.JSON(http.StatusOK, resp)
	}
}

// Middleware returns echo middleware that runs every request through the
// aspect. The downstream handler receives the method scope in its request
// context.
func (f *Filter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			meta := observe.MethodMeta{
				Assembly: f.service,
				Class:    r.Method,
				Method:   routePath(c),
			}
			req := Request{
				ID:        c.Response().Header().Get(echo.HeaderXRequestID),
				RemoteIP:  c.RealIP(),
				URI:       r.RequestURI,
				UserAgent: r.UserAgent(),
			}

			_, err := f.aspect.InvokeMeta(r.Context(), meta, []any{req}, func(ctx context.Context) (any, error) {
				c.SetRequest(r.WithContext(ctx))
				defer c.SetRequest(r)
				if err := next(c); err != nil {
					return nil, err
				}
				res := c.Response()
				return Response{Status: res.Status, Size: res.Size}, nil
			})
			return err
		}
	}
}

// routePath returns the matched route, or the raw path for unmatched
// requests.
func routePath(c echo.Context) string {
	if p := c.Path(); p != "" {
		return p
	}
	return c.Request().URL.Path
}

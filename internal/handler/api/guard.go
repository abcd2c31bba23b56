package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"FinLevels/internal/service/metrics"
	"FinLevels/internal/service/ratelimit"
	"FinLevels/pkg/cache"
	xhttp "FinLevels/pkg/http"
	applogger "FinLevels/pkg/logger"

	"github.com/labstack/echo/v4"
)

// guard rate limits GET endpoints per remote address and caches their encoded responses.
type guard struct {
	rl    *ratelimit.Limiter // optional
	cache cache.Service      // optional
	ttl   time.Duration
	l     *applogger.Logger
}

// serve answers a GET from cache or computes it with fn. Only successful responses are cached.
func (g *guard) serve(c echo.Context, endpoint string, fn func() (interface{}, error)) error {
	start := time.Now()
	var err error
	defer func() { metrics.Observe(endpoint, start, err) }()

	if g.rl != nil && !g.rl.Allow(c.RealIP()+":"+endpoint) {
		g.l.Warn("api."+endpoint+" rate_limited", applogger.String("remote", c.RealIP()))
		err = xhttp.TooManyRequestsError("rate limited")
		return xhttp.AppErrorResponse(c, err)
	}

	key := cache.GenerateKey("resp", c.Request().URL.RequestURI())
	if g.cache != nil {
		var b []byte
		if cerr := g.cache.Get(c.Request().Context(), key, &b); cerr == nil {
			c.Response().Header().Set("X-Cache", "HIT")
			return c.JSONBlob(http.StatusOK, b)
		} else if !errors.Is(cerr, cache.ErrCacheMiss) {
			g.l.Warn("api."+endpoint+" cache_get_error", applogger.Error(cerr))
		}
	}

	var res interface{}
	res, err = fn()
	if err != nil {
		return fail(c, g.l, endpoint, err)
	}
	b, merr := json.Marshal(xhttp.APIResponse{Status: http.StatusOK, Message: http.StatusText(http.StatusOK), Data: res})
	if merr != nil {
		err = merr
		g.l.Error("api."+endpoint+" marshal_error", applogger.Error(merr))
		return xhttp.InternalServerErrorResponse(c)
	}
	if g.cache != nil && g.ttl > 0 {
		if cerr := g.cache.Set(c.Request().Context(), key, b, g.ttl); cerr != nil {
			g.l.Warn("api."+endpoint+" cache_set_error", applogger.Error(cerr))
		}
	}
	c.Response().Header().Set("X-Cache", "MISS")
	return c.JSONBlob(http.StatusOK, b)
}

// fail logs err and writes it as an application error.
func fail(c echo.Context, l *applogger.Logger, endpoint string, err error) error {
	appErr := toAppError(err)
	if appErr.Status >= http.StatusInternalServerError {
		l.Error("api."+endpoint+" error", applogger.Error(err))
	} else {
		l.Warn("api."+endpoint+" rejected", applogger.Error(err))
	}
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps a usecase failure to the HTTP error a client sees.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if xhttp.IsStatus(err, http.StatusNotFound) {
		return xhttp.NotFoundError("symbol not found").WithError(err)
	}
	return xhttp.UpstreamError("upstream data unavailable").WithError(err)
}

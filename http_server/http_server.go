package http_server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"

	"github.com/danthegoodman1/pqbridge/datastore"
	"github.com/danthegoodman1/pqbridge/gologger"
	"github.com/danthegoodman1/pqbridge/metastore"
	"github.com/danthegoodman1/pqbridge/utils"
)

var logger = gologger.NewLogger()

type HTTPServer struct {
	Echo  *echo.Echo
	Store datastore.DataStore
	// Meta is nil when the catalog is disabled.
	Meta    metastore.MetaStore
	Metrics *Metrics
}

type CustomValidator struct {
	validator *validator.Validate
}

// NewHTTPServer registers every route without listening.
func NewHTTPServer(store datastore.DataStore, meta metastore.MetaStore) *HTTPServer {
	reg := prometheus.NewRegistry()
	s := &HTTPServer{
		Echo:    echo.New(),
		Store:   store,
		Meta:    meta,
		Metrics: NewMetrics(reg),
	}
	s.Echo.HideBanner = true
	s.Echo.HidePort = true
	s.Echo.JSONSerializer = &utils.NoEscapeJSONSerializer{}

	s.Echo.Use(CreateReqContext)
	s.Echo.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(metricsKey, s.Metrics)
			return next(c)
		}
	})
	s.Echo.Use(LoggerMiddleware)
	s.Echo.Use(middleware.CORS())
	s.Echo.Use(middleware.BodyLimit(utils.MAX_BODY_BYTES))
	s.Echo.Validator = &CustomValidator{validator: validator.New()}

	// technical - no auth
	s.Echo.GET("/hc", s.HealthCheck)
	s.Echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))

	s.Echo.POST("/from_parquet", ccHandler(s.FromParquetHandler))
	s.Echo.POST("/to_parquet", ccHandler(s.ToParquetHandler))

	s.Echo.POST("/files", ccHandler(s.InsertHandler))
	s.Echo.GET("/files/*", ccHandler(s.GetFileHandler))
	s.Echo.POST("/merge", ccHandler(s.MergeHandler))

	s.Echo.GET("/namespaces/:ns/files", ccHandler(s.ListFilesHandler))
	s.Echo.GET("/namespaces/:ns/columns", ccHandler(s.ListColumnsHandler))

	return s
}

func StartHTTPServer(store datastore.DataStore, meta metastore.MetaStore) *HTTPServer {
	listener, err := net.Listen("tcp", fmt.Sprintf(":%s", utils.HTTP_PORT))
	if err != nil {
		logger.Error().Err(err).Msg("error creating tcp listener, exiting")
		os.Exit(1)
	}
	s := NewHTTPServer(store, meta)

	s.Echo.Listener = listener
	go func() {
		logger.Info().Msg("starting h2c server on " + listener.Addr().String())
		err := s.Echo.StartH2CServer("", &http2.Server{})
		// stop the broker
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("failed to start h2c server, exiting")
			os.Exit(1)
		}
	}()

	return s
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func ValidateRequest(c echo.Context, s interface{}) error {
	if err := c.Bind(s); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := c.Validate(s); err != nil {
		return err
	}
	return nil
}

func (*HTTPServer) HealthCheck(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	err := s.Echo.Shutdown(ctx)
	if serr := s.Store.Shutdown(ctx); serr != nil && err == nil {
		err = serr
	}
	if s.Meta != nil {
		if merr := s.Meta.Shutdown(ctx); merr != nil && err == nil {
			err = merr
		}
	}
	return err
}

func LoggerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			// default handler
			c.Error(err)
		}
		stop := time.Since(start)
		// Log otherwise
		logger := zerolog.Ctx(c.Request().Context())
		req := c.Request()
		res := c.Response()

		p := req.URL.Path
		if p == "" {
			p = "/"
		}

		cl := req.Header.Get(echo.HeaderContentLength)
		if cl == "" {
			cl = "0"
		}
		logger.Debug().Str("method", req.Method).Str("remote_ip", c.RealIP()).Str("req_uri", req.RequestURI).Str("handler_path", c.Path()).Str("path", p).Int("status", res.Status).Int64("latency_ns", int64(stop)).Str("protocol", req.Proto).Str("bytes_in", cl).Int64("bytes_out", res.Size).Msg("req recived")
		return nil
	}
}

package webserver

import (
	"context"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/agritech/agrimarket/config"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Server wraps the echo instance serving the storefront.
type Server struct {
	root     *echo.Echo
	cfg      config.WebConfig
	listener net.Listener
}

// NewServer builds the echo instance with the shared middleware chain.
// templates holds the page files; the upload directory is served under /uploads.
func NewServer(cfg *config.AppConfig, templates fs.FS) (*Server, error) {
	renderer, err := NewRenderer(templates)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.Validator = NewValidator()
	e.HTTPErrorHandler = ErrorHandler

	// the override getter parses the form, so the limit has to come first
	if cfg.Web.BodyLimit != "" {
		e.Pre(middleware.BodyLimit(cfg.Web.BodyLimit))
	}
	e.Pre(middleware.MethodOverrideWithConfig(middleware.MethodOverrideConfig{
		Getter: middleware.MethodFromForm("_method"),
	}))
	e.Use(middleware.Recover())
	e.Use(requestLogger())

	store := sessions.NewCookieStore([]byte(cfg.Web.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Web.SessionAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	e.Use(session.Middleware(store))
	e.Use(ViewerMiddleware)

	e.Static("/uploads", cfg.GetUploadDir())

	return &Server{root: e, cfg: cfg.Web}, nil
}

func (s *Server) Echo() *echo.Echo {
	return s.root
}

func (s *Server) GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.GET(path, h, m...)
}

func (s *Server) POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.POST(path, h, m...)
}

func (s *Server) DELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	s.root.DELETE(path, h, m...)
}

// Listen binds the configured port, moving to the next one while the address is in use.
func (s *Server) Listen() (net.Listener, error) {
	ln, err := listenWithRetry(s.cfg.Host, s.cfg.Port, s.cfg.PortRetries)
	if err != nil {
		return nil, err
	}
	s.listener = ln
	return ln, nil
}

// Start serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	if s.listener == nil {
		if _, err := s.Listen(); err != nil {
			return err
		}
	}
	s.root.Listener = s.listener
	zap.S().Infof("Start web server at http://%s", s.listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.root.Start("")
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.root.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "web server shutdown")
		}
		zap.S().Info("web server stopped")
		return nil
	}
}

func listenWithRetry(host string, port, retries int) (net.Listener, error) {
	var lastErr error
	for i := 0; i <= retries; i++ {
		addr := net.JoinHostPort(host, fmt.Sprint(port+i))
		ln, err := net.Listen("tcp", addr)
		if err == nil {
			if i > 0 {
				zap.S().Warnf("port %d in use, listening on %d", port, port+i)
			}
			return ln, nil
		}
		if !isAddrInUse(err) {
			return nil, errors.Wrapf(err, "listen %s", addr)
		}
		lastErr = err
	}
	return nil, errors.Wrapf(lastErr, "no free port in %d-%d", port, port+retries)
}

package webserver

import (
	"net/http"
	"syscall"

	"github.com/agritech/agrimarket/internal/domain"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

const (
	SessionName = "agrimarket_session"
	viewerKey   = "viewer"
)

func isAddrInUse(err error) bool {
	return errors.Is(err, syscall.EADDRINUSE)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				fields = append(fields, zap.Error(v.Error))
			}
			zap.L().Debug("request", fields...)
			return nil
		},
	})
}

// ViewerMiddleware loads the session identity into the request context.
func ViewerMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		var viewer domain.Viewer
		if sess, err := session.Get(SessionName, c); err == nil {
			viewer = domain.Viewer{
				UserID: cast.ToInt64(sess.Values["user_id"]),
				Name:   cast.ToString(sess.Values["name"]),
				Role:   cast.ToString(sess.Values["role"]),
			}
		}
		c.Set(viewerKey, viewer)
		return next(c)
	}
}

// GetViewer returns the identity of the current request; anonymous when no one is logged in.
func GetViewer(c echo.Context) domain.Viewer {
	if v, ok := c.Get(viewerKey).(domain.Viewer); ok {
		return v
	}
	return domain.Viewer{}
}

// Login writes the user into the session cookie.
func Login(c echo.Context, user *domain.User) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	sess.Values["user_id"] = user.ID
	sess.Values["name"] = user.Name
	sess.Values["role"] = user.Role
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return errors.Wrap(err, "save session")
	}
	c.Set(viewerKey, domain.Viewer{UserID: user.ID, Name: user.Name, Role: user.Role})
	return nil
}

func Logout(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1, HttpOnly: true}
	sess.Values = map[interface{}]interface{}{}
	if err := sess.Save(c.Request(), c.Response()); err != nil {
		return errors.Wrap(err, "save session")
	}
	c.Set(viewerKey, domain.Viewer{})
	return nil
}

// RequireRole sends anonymous users to /login and rejects other roles with 403.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			viewer := GetViewer(c)
			if !viewer.Authenticated() {
				return c.Redirect(http.StatusFound, "/login")
			}
			if viewer.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, "Access denied")
			}
			return next(c)
		}
	}
}

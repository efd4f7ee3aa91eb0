package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/teamcuriosity/collective/internal/api/handler"
	"github.com/teamcuriosity/collective/internal/api/middleware"
	"github.com/teamcuriosity/collective/internal/api/ws"
	"github.com/teamcuriosity/collective/internal/core/ports"
	"github.com/teamcuriosity/collective/internal/infrastructure/http/handlers"
)

// Deps is everything the HTTP surface needs from the composition root.
type Deps struct {
	Auth          ports.AuthService
	Invites       ports.InviteService
	Notifications ports.NotificationService
	Messages      ports.MessageStore
	Users         middleware.UserLookup
	Hub           ws.Hub
	Upgrader      *websocket.Upgrader

	// AuthLimiter throttles /auth routes per client IP; nil disables it.
	AuthLimiter middleware.Limiter
	// HTTPMetrics records request metrics; nil disables it.
	HTTPMetrics   echo.MiddlewareFunc
	MetricsRoute  echo.HandlerFunc
	HealthChecks  map[string]handlers.Check
	Sessions      handlers.SessionCounter
	JWTSecret     string
	EnableSwagger bool
	Now           func() time.Time
	Log           zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(d.Log))
	if d.HTTPMetrics != nil {
		e.Use(d.HTTPMetrics)
	}

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(d.Auth)
	userHandler := handler.NewUserHandler(d.Auth)
	inviteHandler := handler.NewInviteHandler(d.Invites, d.Now)
	notificationHandler := handler.NewNotificationHandler(d.Notifications)
	chatHandler := handler.NewChatHandler(d.Hub, d.Messages, d.Upgrader, d.Log)
	healthHandler := handlers.NewHealthHandler(d.HealthChecks, d.Sessions)

	// --- Public routes ---
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", healthHandler.Readiness)
	if d.MetricsRoute != nil {
		e.GET("/metrics", d.MetricsRoute)
	}
	if d.EnableSwagger {
		e.GET("/swagger/*", echoSwagger.WrapHandler)
	}

	auth := e.Group("/auth")
	if d.AuthLimiter != nil {
		auth.Use(middleware.RateLimit(d.AuthLimiter, "auth", d.Log))
	}
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// --- Authenticated routes ---
	v1 := e.Group("/v1", middleware.Auth(d.JWTSecret))

	chat := v1.Group("/chat", middleware.RequireApproved(d.Users))
	chat.GET("/ws", chatHandler.Connect)
	chat.GET("/history", chatHandler.History)

	invites := v1.Group("/invites", middleware.Privileged())
	invites.POST("", inviteHandler.Issue)
	invites.GET("", inviteHandler.List)
	invites.DELETE("/:token", inviteHandler.Revoke)

	v1.POST("/users/:id/approve", userHandler.Approve, middleware.Privileged())

	v1.POST("/notifications", notificationHandler.Send)
	v1.GET("/notifications", notificationHandler.List)
	v1.POST("/notifications/:id/read", notificationHandler.MarkRead)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogURI:       true,
		LogMethod:    true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}

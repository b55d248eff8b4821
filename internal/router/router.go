package router

import (
	"net"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"taskapi/internal/config"
	"taskapi/internal/handler"
	"taskapi/internal/logger"
	"taskapi/internal/middleware"
	"taskapi/internal/ratelimit"
	"taskapi/internal/validation"
)

// Policies returns the api, login and signup rate-limit policies.
func Policies(cfg *config.Config) (api, login, signup ratelimit.Policy) {
	api = ratelimit.Policy{
		Name:    "api",
		Window:  cfg.APIRateLimit.Window,
		Max:     cfg.APIRateLimit.Max,
		Message: "Too many requests from this IP, please try again later",
	}
	login = ratelimit.Policy{
		Name:    "login",
		Window:  cfg.LoginRateLimit.Window,
		Max:     cfg.LoginRateLimit.Max,
		Message: "Too many login attempts, please try again later",
	}
	signup = ratelimit.Policy{
		Name:    "signup",
		Window:  cfg.SignupRateLimit.Window,
		Max:     cfg.SignupRateLimit.Max,
		Message: "Too many accounts created from this IP, please try again later",
	}
	return api, login, signup
}

// ClientIPExtractor decides which address identifies a client for rate
// limiting. Without trusted proxies it is the socket address, so forwarding
// headers sent by the client are ignored. With them, X-Forwarded-For is
// walked from the right and only hops from a trusted range are skipped.
func ClientIPExtractor(trustedProxies []string) echo.IPExtractor {
	if len(trustedProxies) == 0 {
		return echo.ExtractIPDirect()
	}

	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, entry := range trustedProxies {
		ipNet, err := parseTrustedRange(entry)
		if err != nil {
			logger.HTTP().Warnf("ignoring trusted proxy %q: %v", entry, err)
			continue
		}
		opts = append(opts, echo.TrustIPRange(ipNet))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}

// parseTrustedRange accepts a CIDR range or a single address.
func parseTrustedRange(entry string) (*net.IPNet, error) {
	if strings.Contains(entry, "/") {
		_, ipNet, err := net.ParseCIDR(entry)
		return ipNet, err
	}
	ip := net.ParseIP(entry)
	if ip == nil {
		return nil, &net.ParseError{Type: "IP address", Text: entry}
	}
	bits := 128
	if v4 := ip.To4(); v4 != nil {
		ip, bits = v4, 32
	}
	return &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)}, nil
}

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	limiter *ratelimit.Limiter,
	authCfg middleware.AuthConfig,
	healthHandler *handler.HealthHandler,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	taskHandler *handler.TaskHandler,
) {
	e.HTTPErrorHandler = handler.HTTPErrorHandler
	e.IPExtractor = ClientIPExtractor(cfg.TrustedProxies)
	e.Validator = validation.New()

	e.Use(echomw.RequestID())
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.Secure())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderContentType, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))
	e.Use(echomw.BodyLimit("10K"))
	e.Use(echomw.Gzip())

	apiPolicy, loginPolicy, signupPolicy := Policies(cfg)
	requireAuth := middleware.RequireAuth(authCfg)

	e.GET("/healthz", healthHandler.Liveness)
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api", middleware.RateLimit(limiter, apiPolicy))
	api.GET("", healthHandler.Info, middleware.OptionalAuth(authCfg))
	api.GET("/health", healthHandler.Health)

	// Public auth routes carry their own, stricter policies
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup, middleware.RateLimit(limiter, signupPolicy))
	authGroup.POST("/login", authHandler.Login, middleware.RateLimit(limiter, loginPolicy))
	authGroup.GET("/me", authHandler.Me, requireAuth)
	authGroup.POST("/refresh", authHandler.Refresh, requireAuth)
	authGroup.POST("/logout", authHandler.Logout, requireAuth)

	user := api.Group("/user", requireAuth)
	user.GET("/profile", userHandler.GetProfile)
	user.PUT("/profile", userHandler.UpdateProfile)
	user.PUT("/password", userHandler.ChangePassword)
	user.DELETE("/account", userHandler.DeleteAccount)

	tasks := api.Group("/tasks", requireAuth)
	tasks.GET("", taskHandler.ListTasks)
	tasks.GET("/stats", taskHandler.Stats)
	tasks.POST("", taskHandler.CreateTask)
	tasks.DELETE("", taskHandler.ClearCompleted)
	tasks.GET("/:id", taskHandler.GetTask)
	tasks.PUT("/:id", taskHandler.UpdateTask)
	tasks.PATCH("/:id/status", taskHandler.UpdateStatus)
	tasks.DELETE("/:id", taskHandler.DeleteTask)
}

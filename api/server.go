package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"finboard.app/cache"
	"finboard.app/config"
	apperrors "finboard.app/errors"
	"finboard.app/models"
	"finboard.app/service"
)

const requestIDHeader = "X-Request-ID"

// symbolPattern accepts exchange tickers like SPY, BRK.B or TLT-X.
var symbolPattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9.-]{0,11}$`)

// Server represents the HTTP server and API handler
type Server struct {
	router    *gin.Engine
	config    *config.Config
	dashboard service.DashboardServiceInterface
}

// NewServer creates and configures a new HTTP server
func NewServer(config *config.Config, dashboard service.DashboardServiceInterface) *Server {
	router := gin.Default()

	server := &Server{
		router:    router,
		config:    config,
		dashboard: dashboard,
	}

	server.registerValidators()
	server.setupMiddleware()
	server.setupRoutes()
	return server
}

func (s *Server) registerValidators() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("symbol", func(fl validator.FieldLevel) bool {
			return symbolPattern.MatchString(fl.Field().String())
		})
	}
}

func (s *Server) setupMiddleware() {
	s.router.Use(requestID())

	corsConfig := cors.DefaultConfig()
	origins := s.config.CORS.AllowedOrigins
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
	}
	s.router.Use(cors.New(corsConfig))
}

// requestID tags every response with an identifier so browser-side errors
// can be matched against server logs.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	{
		api.GET("/dashboard", s.getDashboard)
		api.GET("/yields", s.getYieldCurve)
		api.GET("/sentiment", s.getSentiment)
		api.GET("/volatility", s.getVolatility)
		api.GET("/quotes", s.getQuote)
		api.GET("/news", s.getNews)
		api.GET("/earnings", s.getEarnings)
		api.GET("/predictions", s.getPredictions)

		cacheAdmin := api.Group("/cache")
		{
			cacheAdmin.GET("/stats", s.getCacheStats)
			cacheAdmin.DELETE("", s.clearCache)
			cacheAdmin.DELETE("/keys/:key", s.invalidateCacheKey)
		}
	}

	s.router.GET("/healthz", s.healthz)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	s.ServeStaticFiles()
}

// Start begins the HTTP server
func (s *Server) Start() error {
	return s.router.Run(fmt.Sprintf(":%d", s.config.Server.Port))
}

// GetRouter returns the router for testing purposes
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// refreshOptions reads the ?refresh flag shared by every panel endpoint.
func refreshOptions(c *gin.Context) cache.FetchOptions {
	refresh := c.Query("refresh")
	return cache.FetchOptions{ForceRefresh: refresh == "true" || refresh == "1"}
}

func splitSymbols(raw string) []string {
	if raw == "" {
		return nil
	}

	var symbols []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			symbols = append(symbols, trimmed)
		}
	}
	return symbols
}

func (s *Server) getDashboard(c *gin.Context) {
	symbols := splitSymbols(c.Query("symbols"))

	slog.Debug("Assembling dashboard snapshot", "symbols", symbols)
	snapshot, err := s.dashboard.Snapshot(c.Request.Context(), symbols, refreshOptions(c))
	if err != nil {
		slog.Error("Snapshot error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, snapshot)
}

func (s *Server) getYieldCurve(c *gin.Context) {
	curve, err := s.dashboard.YieldCurve(c.Request.Context(), refreshOptions(c))
	if err != nil {
		slog.Error("Yield curve error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, curve)
}

func (s *Server) getSentiment(c *gin.Context) {
	sentiment, err := s.dashboard.Sentiment(c.Request.Context(), refreshOptions(c))
	if err != nil {
		slog.Error("Sentiment error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, sentiment)
}

func (s *Server) getVolatility(c *gin.Context) {
	volatility, err := s.dashboard.Volatility(c.Request.Context(), refreshOptions(c))
	if err != nil {
		slog.Error("Volatility error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, volatility)
}

func (s *Server) getQuote(c *gin.Context) {
	var req models.QuoteRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		slog.Error("Quote request binding error", "error", err)
		s.handleError(c, apperrors.NewValidationError("a valid symbol parameter is required"))
		return
	}

	slog.Debug("Getting quote", "symbol", req.Symbol)
	quote, err := s.dashboard.Quote(c.Request.Context(), req.Symbol, refreshOptions(c))
	if err != nil {
		slog.Error("Quote error", "error", err, "symbol", req.Symbol)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, quote)
}

func (s *Server) getNews(c *gin.Context) {
	var req models.NewsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		slog.Error("News request binding error", "error", err)
		s.handleError(c, apperrors.NewValidationError("unsupported news category"))
		return
	}

	feed, err := s.dashboard.News(c.Request.Context(), req.Category, refreshOptions(c))
	if err != nil {
		slog.Error("News error", "error", err, "category", req.Category)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, feed)
}

func (s *Server) getEarnings(c *gin.Context) {
	calendar, err := s.dashboard.Earnings(c.Request.Context(), refreshOptions(c))
	if err != nil {
		slog.Error("Earnings error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, calendar)
}

func (s *Server) getPredictions(c *gin.Context) {
	board, err := s.dashboard.Predictions(c.Request.Context(), refreshOptions(c))
	if err != nil {
		slog.Error("Predictions error", "error", err)
		s.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, board)
}

func (s *Server) getCacheStats(c *gin.Context) {
	c.JSON(http.StatusOK, s.dashboard.CacheStats(c.Request.Context()))
}

func (s *Server) clearCache(c *gin.Context) {
	removed := s.dashboard.ClearCache(c.Request.Context())

	slog.Info("Cache cleared via API", "removed", removed)
	c.JSON(http.StatusOK, gin.H{"message": "Cache cleared", "removed": removed})
}

func (s *Server) invalidateCacheKey(c *gin.Context) {
	key := c.Param("key")
	if key == "" {
		s.handleError(c, apperrors.NewValidationError("key parameter is required"))
		return
	}

	s.dashboard.InvalidateKey(c.Request.Context(), key)

	slog.Debug("Cache key invalidated via API", "key", key)
	c.JSON(http.StatusOK, gin.H{"message": "Cache key invalidated", "key": key})
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":        "ok",
		"cache_backend": s.config.Cache.Backend.String(),
	})
}

// handleError handles different types of application errors
func (s *Server) handleError(c *gin.Context, err error) {
	var appErr *apperrors.AppError
	var statusCode int
	var message string

	if errors.As(err, &appErr) {
		switch appErr.Type {
		case apperrors.ValidationError:
			statusCode = http.StatusBadRequest
			message = appErr.Message
		case apperrors.NotFoundError:
			statusCode = http.StatusNotFound
			message = appErr.Message
		case apperrors.ExternalAPIError:
			statusCode = http.StatusServiceUnavailable
			message = "External data source unavailable"
		case apperrors.CacheError, apperrors.DatabaseError:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		default:
			statusCode = http.StatusInternalServerError
			message = "Internal server error"
		}
	} else {
		statusCode = http.StatusInternalServerError
		message = "Internal server error"
	}

	c.JSON(statusCode, models.ErrorResponse{Error: message})
}

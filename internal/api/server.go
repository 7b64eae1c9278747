// Package api provides the HTTP API server for wallet analytics.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/eferbarn/solfolio/internal/adapter"
	"github.com/eferbarn/solfolio/internal/logging"
	"github.com/eferbarn/solfolio/internal/service"
	"github.com/eferbarn/solfolio/internal/types"
)

// InsightsProvider defines the analytics operations the server exposes
type InsightsProvider interface {
	GetInsights(ctx context.Context, address string) (*service.InsightsView, error)
	GetRealizedPnL(ctx context.Context, address, chainID string) (service.RealizedPnL, error)
	ClearCache(ctx context.Context, address string) error
}

// LedgerProvider defines the pass-through reads proxied from the ledger API
type LedgerProvider interface {
	GetTransactions(ctx context.Context, p adapter.TransactionParams) ([]types.Transaction, error)
	GetPositions(ctx context.Context, walletAddress, chainID string) ([]adapter.Position, error)
	GetPortfolio(ctx context.Context, walletAddress string) (*adapter.WalletPortfolio, error)
	GetFungibleChart(ctx context.Context, fungibleID, period string) ([]adapter.ChartPoint, error)
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host              string
	Port              string
	ReadTimeout       time.Duration
	WriteTimeout      time.Duration
	IdleTimeout       time.Duration
	ShutdownTimeout   time.Duration
	RequestsPerSecond int
	Burst             int
}

// Server is the HTTP API server
type Server struct {
	router     *mux.Router
	httpServer *http.Server
	insights   InsightsProvider
	ledger     LedgerProvider
	config     *ServerConfig
	logger     *logging.Logger
}

// NewServer creates a new API server instance
func NewServer(config *ServerConfig, insights InsightsProvider, ledger LedgerProvider, logger *logging.Logger) *Server {
	s := &Server{
		router:   mux.NewRouter(),
		insights: insights,
		ledger:   ledger,
		config:   config,
		logger:   logger,
	}

	s.setupRouter()
	return s
}

// setupRouter configures middleware and routes. Middleware order matters:
// recovery must wrap everything, rate limiting runs after CORS so preflight
// requests are never throttled.
func (s *Server) setupRouter() {
	limiter := NewRateLimiter(s.config.RequestsPerSecond, s.config.Burst)

	s.router.Use(RecoveryMiddleware(s.logger))
	s.router.Use(RequestIDMiddleware)
	s.router.Use(LoggingMiddleware(s.logger))
	s.router.Use(CORSMiddleware)
	s.router.Use(RateLimitMiddleware(limiter))
	s.router.Use(CompressionMiddleware)

	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	v1 := s.router.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/wallets/{address}/pnl", s.handleRealizedPnL).Methods(http.MethodGet)
	v1.HandleFunc("/wallets/{address}/insights", s.handleInsights).Methods(http.MethodGet)
	v1.HandleFunc("/wallets/{address}/insights/cache", s.handleClearInsightsCache).Methods(http.MethodDelete)
	v1.HandleFunc("/wallets/{address}/transactions", s.handleTransactions).Methods(http.MethodGet)
	v1.HandleFunc("/wallets/{address}/portfolio", s.handlePortfolio).Methods(http.MethodGet)
	v1.HandleFunc("/wallets/{address}/positions", s.handlePositions).Methods(http.MethodGet)
	v1.HandleFunc("/charts/{fungibleID}", s.handleChart).Methods(http.MethodGet)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%s", s.config.Host, s.config.Port),
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
		IdleTimeout:  s.config.IdleTimeout,
	}
}

// Router exposes the configured router, for tests
func (s *Server) Router() http.Handler {
	return s.router
}

// Start runs the HTTP server until it fails or is shut down
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("API server listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

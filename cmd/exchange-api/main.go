package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"carbon-market/credit-exchange/exchange-backend/internal/audit"
	"carbon-market/credit-exchange/exchange-backend/internal/auth"
	"carbon-market/credit-exchange/exchange-backend/internal/bank"
	"carbon-market/credit-exchange/exchange-backend/internal/chain"
	"carbon-market/credit-exchange/exchange-backend/internal/config"
	"carbon-market/credit-exchange/exchange-backend/internal/exchange"
	"carbon-market/credit-exchange/exchange-backend/internal/feed"
	"carbon-market/credit-exchange/exchange-backend/internal/ledger"
	"carbon-market/credit-exchange/exchange-backend/internal/market"
	"carbon-market/credit-exchange/exchange-backend/internal/platform"
	"carbon-market/credit-exchange/exchange-backend/internal/projects"
	"carbon-market/credit-exchange/exchange-backend/internal/retirement"
	"carbon-market/credit-exchange/exchange-backend/internal/verifiers"
	"carbon-market/credit-exchange/exchange-backend/pkg/pdf"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	// Load configuration
	_ = godotenv.Load()
	cfg, err := config.LoadConfig("config.json")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	owner := resolveAccount(cfg.Platform.OwnerAccount, "credit-exchange/owner")
	escrow := resolveAccount(cfg.Platform.EscrowAccount, "credit-exchange/escrow")
	logger.Info("Platform accounts",
		zap.String("owner", owner.String()),
		zap.String("escrow", escrow.String()))

	// The in-memory bank stands in for the chain's native transfer primitive.
	moneyBank := bank.NewInMemory()
	clock := chain.NewTicker(cfg.Platform.HeightInterval)
	defer clock.Stop()

	state := ledger.NewState()
	hub := feed.NewHub(logger)
	defer hub.Stop()

	sinks := audit.Fanout{hub}

	// Audit archive (optional; the in-memory log is authoritative)
	var certArchive retirement.Repository
	if db, err := sqlx.Connect("postgres", cfg.Database.GetDatabaseURL()); err != nil {
		logger.Warn("Audit archive unavailable, running without persistence", zap.Error(err))
	} else {
		defer db.Close()
		db.SetMaxOpenConns(cfg.Database.MaxConnections)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)

		archive, err := audit.NewPostgresArchive(db, logger)
		if err != nil {
			logger.Fatal("Failed to initialize transaction archive", zap.Error(err))
		}
		sinks = append(sinks, archive)

		gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: db.DB}), &gorm.Config{})
		if err != nil {
			logger.Fatal("Failed to open certificate archive", zap.Error(err))
		}
		certArchive, err = retirement.NewGormRepository(gormDB, logger)
		if err != nil {
			logger.Fatal("Failed to migrate certificate archive", zap.Error(err))
		}
	}

	engine := exchange.New(exchange.Options{
		State:            state,
		Bank:             moneyBank,
		Clock:            clock,
		Owner:            owner,
		Escrow:           escrow,
		MinVerifierStake: cfg.Platform.MinVerifierStake,
		MinProjectStake:  cfg.Platform.MinProjectStake,
		FeeBasisPoints:   cfg.Platform.FeeBasisPoints,
		RetirementFee:    cfg.Platform.RetirementFee,
		Sink:             sinks,
		CertArchive:      certArchive,
		Logger:           logger,
	})

	// Setup Router
	router := gin.Default()

	// CORS Middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Authorization, Accept, Origin")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	open := router.Group("/api/v1")
	{
		auth.NewHandler(cfg.Security.JWTSecret, cfg.Security.TokenTTL).RegisterRoutes(open)
		open.GET("/feed", hub.ServeWS)

		// Dev faucet for the in-memory bank; a real deployment replaces the
		// bank with the chain's transfer primitive and drops this.
		open.POST("/faucet", func(c *gin.Context) {
			var req struct {
				Account string `json:"account" binding:"required"`
				Amount  uint64 `json:"amount" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			account, err := uuid.Parse(req.Account)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "account must be a UUID"})
				return
			}
			moneyBank.Mint(account, req.Amount)
			c.JSON(http.StatusOK, gin.H{"account": account, "balance": moneyBank.Balance(account)})
		})
	}

	authed := router.Group("/api/v1")
	authed.Use(auth.Middleware(cfg.Security.JWTSecret))
	{
		verifiers.NewHandler(engine.Verifiers, logger).RegisterRoutes(authed)
		projects.NewHandler(engine.Projects, logger).RegisterRoutes(authed)
		market.NewHandler(engine.Market, logger).RegisterRoutes(authed)
		retirement.NewHandler(engine.Retirement, pdf.NewGenerator(), logger).RegisterRoutes(authed)
		platform.NewHandler(engine.Platform, logger).RegisterRoutes(authed)
		audit.NewHandler(engine.Audit, logger).RegisterRoutes(authed)
	}

	// Health Check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status": "healthy",
			"height": clock.Height(),
		})
	})

	// Periodic stats snapshot; expired open orders keep their escrow until
	// cancelled, so the sweep only reports them.
	scheduler := cron.New()
	if _, err := scheduler.AddFunc("@every 1m", func() {
		stats := engine.Platform.Stats()
		logger.Info("Platform snapshot",
			zap.Uint64("height", clock.Height()),
			zap.Uint64("total_issued", stats.TotalIssued),
			zap.Uint64("total_retired", stats.TotalRetired),
			zap.Uint64("fee_balance", stats.FeeBalance),
			zap.Bool("trading_enabled", stats.TradingEnabled),
			zap.Uint64("expired_open_orders", engine.Market.CountExpiredOpen()))
	}); err != nil {
		logger.Fatal("Failed to schedule stats snapshot", zap.Error(err))
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Start Server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		logger.Info("Starting exchange API", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", zap.Error(err))
	}
}

// resolveAccount parses a configured account id, deriving a stable one from
// the given name when unset.
func resolveAccount(configured, name string) uuid.UUID {
	if configured != "" {
		if id, err := uuid.Parse(configured); err == nil {
			return id
		}
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name))
}

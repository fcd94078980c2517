package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"exchange-diary/internal/config"
	cronrunner "exchange-diary/internal/cron"
	"exchange-diary/internal/db"
	"exchange-diary/internal/handler"
	"exchange-diary/internal/ledger"
	"exchange-diary/internal/logger"
	"exchange-diary/internal/monitor"
	"exchange-diary/internal/ocr"
	"exchange-diary/internal/rate"
	gormrepository "exchange-diary/internal/repository/gorm"
)

func main() {
	cfgPath := os.Getenv("ED_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("ED_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	ledgerSvc := &ledger.Service{Repo: store, Logger: logger}
	rateSource := rate.NewNaverSource(cfg.Rate, logger)
	rateMonitor := &monitor.Monitor{
		Source:       rateSource,
		Logger:       logger,
		PollInterval: cfg.Monitor.PollInterval,
	}
	extractor := ocr.NewScriptExtractor(cfg.OCR, logger)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn}
	healthHandler.Register(engine)
	monitorHandler := &handler.MonitorHandler{Monitor: rateMonitor, Logger: logger}
	monitorHandler.Register(engine)
	rateHandler := &handler.RateHandler{Source: rateSource}
	rateHandler.Register(engine)
	investmentHandler := &handler.InvestmentHandler{Service: ledgerSvc, Logger: logger}
	investmentHandler.Register(engine)
	ocrHandler := &handler.OCRHandler{Extractor: extractor, Logger: logger}
	ocrHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		tempDir := cfg.OCR.TempDir
		maxAge := cfg.Cron.TempMaxAge
		_, err = cronRunner.Add(cfg.Cron.TempSweep, func(ctx context.Context) {
			n, err := ocr.SweepTemp(tempDir, maxAge)
			if err != nil {
				logger.Warn("temp sweep failed", zap.Error(err))
				return
			}
			if n > 0 {
				logger.Info("swept stale ocr temp files", zap.Int("count", n))
			}
		})
		if err != nil {
			logger.Warn("cron register temp sweep failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	if err := rateMonitor.Stop(); err == nil {
		logger.Info("monitor stopped for shutdown")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}

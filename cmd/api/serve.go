package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "procurement/api/swagger" // swagger docs
	"procurement/internal/config"
	"procurement/internal/handler"
	"procurement/internal/metrics"
	"procurement/internal/middleware"
	"procurement/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const shutdownTimeout = 15 * time.Second

type ServerFlags struct {
	DBFlags *DBFlags

	ListenAddr  string
	MetricsAddr string
	Migrate     bool
}

func NewServerFlags() *ServerFlags {
	return &ServerFlags{DBFlags: NewDBFlags()}
}

func (f *ServerFlags) BindFlags(fs *pflag.FlagSet) {
	f.DBFlags.BindFlags(fs)
	fs.StringVar(&f.ListenAddr, "listen", "", "The address to serve the API on (default :$PORT)")
	fs.StringVar(&f.MetricsAddr, "listen-metrics", "", "The address to serve prometheus metrics on (default $METRICS_ADDR, empty string disables)")
	fs.BoolVar(&f.Migrate, "migrate", false, "Migrate the database schema before serving")
}

func NewServeCommand() *cobra.Command {
	f := NewServerFlags()

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("could not load config: %w", err)
			}
			listenAddr := ":" + cfg.Port
			if f.ListenAddr != "" {
				listenAddr = f.ListenAddr
			}
			metricsAddr := cfg.MetricsAddr
			if cmd.Flags().Changed("listen-metrics") {
				metricsAddr = f.MetricsAddr
			}

			db, err := f.DBFlags.Open(cfg)
			if err != nil {
				return fmt.Errorf("could not connect to db: %w", err)
			}
			log.Info("connected to PostgreSQL")
			if f.Migrate {
				if err := migrateDB(db); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			hub := websocket.NewHub()
			go hub.Run(ctx)

			a, err := newApp(ctx, cfg, db, hub)
			if err != nil {
				return err
			}
			defer a.Close()

			gin.SetMode(cfg.GinMode)
			router := newRouter(cfg, a, hub)

			if metricsAddr != "" {
				go serveMetrics(ctx, metricsAddr)
			}

			return serveHTTP(ctx, listenAddr, router)
		},
	}

	f.BindFlags(cmd.Flags())
	return cmd
}

func newRouter(cfg *config.Config, a *app, hub *websocket.Hub) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(hub, c, a.tokens, a.users)
	})

	auth := middleware.Authenticate(a.tokens, a.users)
	secureCookie := cfg.GinMode == gin.ReleaseMode

	handler.NewHealthHandler(cfg.Environment).RegisterRoutes(router.Group(""))

	api := router.Group("/api")
	handler.NewAuthHandler(a.users, auth, cfg.JWTExpiry, secureCookie).RegisterRoutes(api)
	handler.NewUserHandler(a.users, auth, a.audit).RegisterRoutes(api)
	handler.NewRequestHandler(a.requests, auth, a.audit).RegisterRoutes(api)
	handler.NewPurchaseOrderHandler(a.orders, auth, a.audit).RegisterRoutes(api)
	handler.NewAuditHandler(a.audit, auth).RegisterRoutes(api)

	return router
}

func serveHTTP(ctx context.Context, addr string, router http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// serveMetrics serves the prometheus endpoint on its own listener
func serveMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}

	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	log.WithField("addr", addr).Info("metrics listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.WithError(err).Error("metrics listener failed")
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"

	"exam-scheduler/internal/auth"
	"exam-scheduler/internal/cache"
	"exam-scheduler/internal/config"
	"exam-scheduler/internal/handler"
	"exam-scheduler/internal/logging"
	"exam-scheduler/internal/metrics"
	"exam-scheduler/internal/middleware"
	"exam-scheduler/internal/notify"
	"exam-scheduler/internal/rpc"
	"exam-scheduler/internal/scheduling"
	"exam-scheduler/internal/store"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "scheduler",
		Short:        "Medical exam scheduling API",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(seedCmd())
	return rootCmd
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP and gRPC servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return runServer(cfg)
		},
	}
}

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
				n, err := st.Migrate(ctx)
				if err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
				fmt.Printf("Applied %d migration(s).\n", n)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
				statuses, err := st.MigrationStatus(ctx)
				if err != nil {
					return fmt.Errorf("failed to get migration status: %w", err)
				}
				fmt.Printf("%-10s %-30s %-10s %s\n", "VERSION", "NAME", "STATUS", "APPLIED AT")
				for _, s := range statuses {
					state, at := "pending", ""
					if s.Applied {
						state = "applied"
						if s.AppliedAt != nil {
							at = s.AppliedAt.Format("2006-01-02 15:04:05")
						}
					}
					fmt.Printf("%-10d %-30s %-10s %s\n", s.Version, s.Name, state, at)
				}
				return nil
			})
		},
	})

	return cmd
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default exam catalog into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd.Context(), func(ctx context.Context, st *store.Store) error {
				n, err := st.SeedExams(ctx, store.DefaultExams())
				if err != nil {
					return err
				}
				fmt.Printf("Seeded %d exam(s).\n", n)
				return nil
			})
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func withStore(ctx context.Context, fn func(context.Context, *store.Store) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	pool, err := store.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(ctx, store.New(pool))
}

func runServer(cfg *config.Config) error {
	logger, logCloser := logging.New(os.Stdout, logging.Options{
		Level:   cfg.LogLevel,
		Console: cfg.IsDev(),
		File:    cfg.LogFile,
	})
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	pool, err := store.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer pool.Close()
	logger.Info().Msg("connected to postgres")

	st := store.New(pool)
	if cfg.AutoMigrate {
		n, err := st.Migrate(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
		logger.Info().Int("applied", n).Msg("migrations up to date")
	}
	if cfg.SeedExams {
		n, err := st.SeedExams(ctx, store.DefaultExams())
		if err != nil {
			logger.Fatal().Err(err).Msg("seeding exams failed")
		}
		if n > 0 {
			logger.Info().Int("exams", n).Msg("seeded exam catalog")
		}
	}

	var exams scheduling.ExamRepository = st
	if cfg.RedisURL != "" {
		rdb, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer rdb.Close()
		exams = cache.NewExams(st, rdb, cfg.ExamCacheTTL, logger)
		logger.Info().Dur("ttl", cfg.ExamCacheTTL).Msg("exam cache enabled")
	}

	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}
	m := metrics.New()
	opts := []scheduling.Option{
		scheduling.WithLogger(logger),
		scheduling.WithRecorder(m),
		scheduling.WithLocation(loc),
		scheduling.WithPhoneRegion(cfg.PhoneRegion),
		scheduling.WithStrictTransitions(cfg.StrictTransitions),
	}
	stopMail := func(context.Context) error { return nil }
	if cfg.MailEnabled() {
		mailer := notify.NewSMTP(notify.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}, loc, logger)
		stopMail = mailer.Start()
		opts = append(opts, scheduling.WithNotifier(mailer))
	}
	svc := scheduling.NewService(exams, st, opts...)

	var accounts *auth.Accounts
	if cfg.AuthEnabled {
		tokens := auth.NewTokens(cfg.JWTSecret, cfg.AccessTokenTTL)
		accounts = auth.NewAccounts(st, tokens, cfg.RefreshTokenTTL, logger)
	}

	apiLimit := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	authLimit := middleware.NewRateLimiter(cfg.AuthRateLimitRPS, cfg.AuthRateLimitBurst)
	go apiLimit.Run(ctx)
	go authLimit.Run(ctx)

	// Echo server
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(logger)

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(m.Middleware())
	e.Use(middleware.Logger(logger))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete},
		AllowHeaders:     []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		AllowCredentials: cfg.AuthEnabled,
	}))

	h := handler.New(svc, logger,
		handler.WithAccounts(accounts),
		handler.WithRequiredAuth(cfg.AuthEnabled),
		handler.WithSecureCookies(cfg.SecureCookies),
	)
	h.RegisterRoutes(e.Group(cfg.APIPrefix), handler.Limits{API: apiLimit, Auth: authLimit})

	e.GET("/", handler.Info(cfg.APIPrefix))
	e.GET("/health", st.HealthHandler())
	e.GET(cfg.APIPrefix+"/health", st.HealthHandler())
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	// gRPC server
	var gs *grpc.Server
	if cfg.GRPCPort != "" {
		interceptors := []grpc.UnaryServerInterceptor{
			middleware.UnaryLogger(logger),
			middleware.UnaryRateLimit(apiLimit, rpc.MutatingMethods()...),
		}
		if accounts != nil {
			interceptors = append(interceptors, middleware.UnaryAuth(accounts.Tokens(), rpc.MutatingMethods()...))
		}
		gs = grpc.NewServer(grpc.ChainUnaryInterceptor(interceptors...))
		rpc.Register(gs, rpc.NewServer(svc, logger))

		lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
		if err != nil {
			logger.Fatal().Err(err).Str("port", cfg.GRPCPort).Msg("grpc listen failed")
		}
		go func() {
			logger.Info().Str("addr", lis.Addr().String()).Msg("starting grpc server")
			if err := gs.Serve(lis); err != nil {
				logger.Error().Err(err).Msg("grpc server error")
			}
		}()
	}

	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Bool("auth", cfg.AuthEnabled).Msg("starting http server")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("http server error")
			stop()
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if gs != nil {
		stopGRPC(shutdownCtx, gs)
	}
	err = e.Shutdown(shutdownCtx)
	if err != nil {
		logger.Error().Err(err).Msg("http shutdown failed")
	}
	if mailErr := stopMail(shutdownCtx); mailErr != nil {
		logger.Warn().Err(mailErr).Msg("pending notifications dropped")
	}
	if err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

// stopGRPC drains in-flight calls, forcing the stop once ctx expires.
func stopGRPC(ctx context.Context, gs *grpc.Server) {
	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		gs.Stop()
	}
}

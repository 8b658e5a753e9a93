package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/weilunc/clipread/internal/badge"
	"github.com/weilunc/clipread/internal/config"
	"github.com/weilunc/clipread/internal/devtool"
	"github.com/weilunc/clipread/internal/filestore"
	"github.com/weilunc/clipread/internal/gemini"
	"github.com/weilunc/clipread/internal/handler"
	"github.com/weilunc/clipread/internal/job"
	"github.com/weilunc/clipread/internal/mailbox"
	"github.com/weilunc/clipread/internal/middleware"
	"github.com/weilunc/clipread/internal/repo"
	"github.com/weilunc/clipread/internal/schedule"
	"github.com/weilunc/clipread/internal/service"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "clipread",
		Short: "clipread capture and reading service",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run clipread server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			db, err := repo.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			return runServer(cfg, db)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, db *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("db_path", cfg.DBPath),
		zap.String("devtools_url", cfg.DevToolsURL),
		zap.String("export_store", cfg.ExportStore.Type),
	)

	settingsRepo := repo.NewSettingsRepo(db)
	settingsService := service.NewSettingsService(settingsRepo)

	gateway := gemini.NewClient(gemini.ClientConfig{
		Endpoint:     cfg.GeminiEndpoint,
		StopSentinel: cfg.StopSentinel,
	})
	debugger := devtool.NewClient(cfg.DevToolsURL, &http.Client{Timeout: 10 * time.Second})
	defer debugger.Close()

	store, err := filestore.New(cfg.ExportStore)
	if err != nil {
		return fmt.Errorf("init export store: %w", err)
	}

	box := mailbox.New(time.Duration(cfg.MailboxTTLMin) * time.Minute)
	badges := badge.NewRegistry()
	activity := service.NewActivityLogger(settingsService, nil)
	captureService := service.NewCaptureService(settingsService, gateway, debugger, box, badges, activity, cfg.UILocale)
	readerService := service.NewReaderService(box, settingsService, gateway, store)
	chatService := service.NewChatService(settingsService, gateway)

	deps := handler.RouterDeps{
		Capture:   handler.NewCaptureHandler(captureService),
		Reader:    handler.NewReaderHandler(readerService),
		Chat:      handler.NewChatHandler(chatService, settingsService),
		Settings:  handler.NewSettingsHandler(settingsService),
		Languages: handler.NewLanguageHandler(settingsService, cfg.UILocale),
		Status:    handler.NewStatusHandler(badges, debugger),
		Files:     handler.NewFileHandler(readerService),
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.RequestID(),
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := schedule.NewCronScheduler()
	if err := scheduler.AddJob(job.NewMailboxSweepJob(box), "* * * * *"); err != nil {
		return fmt.Errorf("schedule mailbox sweep: %w", err)
	}
	scheduler.Start(ctx)
	defer scheduler.Stop()

	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))
	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

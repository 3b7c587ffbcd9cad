package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/lunchpick/internal/api/handlers"
	"github.com/cloo-solutions/lunchpick/internal/config"
	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/cloo-solutions/lunchpick/internal/kakao"
	"github.com/cloo-solutions/lunchpick/internal/locate"
	"github.com/cloo-solutions/lunchpick/internal/logging"
	"github.com/cloo-solutions/lunchpick/internal/mapview"
	"github.com/cloo-solutions/lunchpick/internal/server"
	"github.com/cloo-solutions/lunchpick/internal/service"
	"github.com/cloo-solutions/lunchpick/internal/session"
	"github.com/cloo-solutions/lunchpick/internal/telemetry"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Long:  "Start the lunchpick web server and map renderers on the specified port",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := logging.New(logging.Options{
		Debug: cfg.Debug,
		JSON:  cfg.Environment != "development",
	})

	if cfg.HasSentry() {
		// Default to 10% sampling in production, 100% in development
		sampleRate := 0.1
		if cfg.Environment == "development" {
			sampleRate = 1.0
		}

		shutdownTelemetry, err := telemetry.Init(telemetry.Config{
			DSN:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: sampleRate,
			Logger:           logger,
		})
		if err != nil {
			logger.WithError(err).Warn("telemetry init failed (continuing without tracing)")
		} else {
			defer shutdownTelemetry()
		}
	}

	portFlag, _ := cmd.Flags().GetString("port")
	if portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}

	places, err := kakao.NewClientWithConfig(kakao.Config{
		APIKey:    cfg.KakaoRESTAPIKey,
		BaseURL:   cfg.KakaoBaseURL,
		Timeout:   cfg.KakaoTimeout,
		RateLimit: cfg.KakaoRateLimit,
		Logger:    logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create kakao client: %w", err)
	}

	var locator locate.Locator
	if cfg.HasLocator() {
		locator = locate.NewIPLocator(cfg.LocateURL)
	}

	sess := session.New(cfg.DefaultCenter(), cfg.DefaultRadius)
	svc := service.NewSearchServiceWithConfig(places, sess, logNotifier(logger), service.SearchServiceConfig{
		Locator: locator,
		Logger:  logger,
	})

	var fontData []byte
	if cfg.MapFontPath != "" {
		fontData, err = os.ReadFile(cfg.MapFontPath)
		if err != nil {
			return fmt.Errorf("failed to read map font: %w", err)
		}
	}

	rasterRenderer := mapview.NewRenderer("raster", mapview.NewRasterLoader(mapview.RasterOptions{
		FontData: fontData,
	}), sess, logger)
	rasterRenderer.Start(ctx)
	defer rasterRenderer.Stop()

	// Interface values stay nil when the kakao map is off so the handler
	// answers 404 instead of calling a nil renderer.
	var htmlFrames handlers.FrameSource
	if cfg.HasKakaoMap() {
		kakaoRenderer := mapview.NewRenderer("kakao", mapview.NewKakaoLoader(mapview.KakaoOptions{
			AppKey: cfg.KakaoJSAPIKey,
		}), sess, logger)
		kakaoRenderer.Start(ctx)
		defer kakaoRenderer.Stop()
		htmlFrames = kakaoRenderer
	}

	router := server.NewRouter(server.RouterConfig{
		SessionHandler: handlers.NewSessionHandler(svc, sess, htmlFrames, rasterRenderer),
		PageHandler:    handlers.NewPageHandler(cfg.HasKakaoMap()),
		SessionID:      sess.ID(),
		CORSOrigins:    cfg.CORSOrigins,
		Logger:         logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.WithFields(logrus.Fields{
			"port":       cfg.Port,
			"session_id": sess.ID(),
		}).Info("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serveErr:
		return fmt.Errorf("server failed: %w", err)
	}
	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server exited")
	return nil
}

// logNotifier records notices in the server log. Browser clients read them
// from the API responses.
func logNotifier(logger logrus.FieldLogger) service.Notifier {
	return service.NotifierFunc(func(ctx context.Context, n domain.Notice) {
		logger.WithFields(logrus.Fields{
			"kind":    n.Kind,
			"message": n.Message,
		}).Info("notice")
	})
}

package client

import (
	"fmt"
	"io"

	"github.com/cloo-solutions/lunchpick/internal/domain"
	"github.com/cloo-solutions/lunchpick/internal/kakao"
	"github.com/cloo-solutions/lunchpick/internal/locate"
	"github.com/cloo-solutions/lunchpick/internal/logging"
	"github.com/cloo-solutions/lunchpick/internal/service"
	"github.com/cloo-solutions/lunchpick/internal/session"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// AddPersistentFlags registers the flags every search command reads.
func AddPersistentFlags(root *cobra.Command) {
	root.PersistentFlags().Bool("output", false, "Output as JSON")
	root.PersistentFlags().String("api-key", "", "Kakao REST API key (overrides env and config)")
	root.PersistentFlags().Float64("radius", domain.DefaultRadiusMeters, "Search radius in meters")
	root.PersistentFlags().Bool("debug", false, "Log requests to stderr")
}

// loadSettings resolves the CLI settings, reading .env first.
func loadSettings(cmd *cobra.Command) (Settings, error) {
	_ = godotenv.Load()

	var flagKey string
	if cmd != nil {
		flagKey, _ = cmd.Flags().GetString("api-key")
	}
	return ResolveSettings(flagKey)
}

func newPlacesClient(settings Settings, logger logrus.FieldLogger) (*kakao.Client, error) {
	if settings.Source == SourceNone {
		return nil, fmt.Errorf("%s not set (run 'lunchpick auth login' or set environment variable)", envAPIKey)
	}
	return kakao.NewClientWithConfig(kakao.Config{
		APIKey:  settings.APIKey,
		BaseURL: settings.BaseURL,
		Logger:  logger,
	})
}

// runtime is the in-process search session one command invocation drives.
type runtime struct {
	svc        *service.SearchService
	session    *session.Session
	out        io.Writer
	outputJSON bool
}

func newRuntime(cmd *cobra.Command) (*runtime, error) {
	debug, _ := cmd.Flags().GetBool("debug")
	opts := logging.Options{Debug: debug, Output: cmd.ErrOrStderr()}
	if !debug {
		// Failures already reach the user as notices.
		opts.Output = io.Discard
	}
	logger := logging.New(opts)

	settings, err := loadSettings(cmd)
	if err != nil {
		return nil, err
	}
	client, err := newPlacesClient(settings, logger)
	if err != nil {
		return nil, err
	}

	radius, _ := cmd.Flags().GetFloat64("radius")
	if !cmd.Flags().Changed("radius") && settings.RadiusMeters > 0 {
		radius = settings.RadiusMeters
	}
	if err := domain.ValidateRadius(radius); err != nil {
		return nil, err
	}

	sess := session.New(domain.DefaultCenter(), radius)
	svc := service.NewSearchServiceWithConfig(client, sess, newStderrNotifier(cmd.ErrOrStderr()), service.SearchServiceConfig{
		Locator: locate.NewIPLocator(settings.LocateURL),
		Logger:  logger,
	})

	outputJSON, _ := cmd.Flags().GetBool("output")
	return &runtime{
		svc:        svc,
		session:    sess,
		out:        cmd.OutOrStdout(),
		outputJSON: outputJSON,
	}, nil
}

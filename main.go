package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/brettboylen/reddit-persona/api"
	"github.com/brettboylen/reddit-persona/llm"
	"github.com/brettboylen/reddit-persona/models"
	"github.com/brettboylen/reddit-persona/persona"
	"github.com/brettboylen/reddit-persona/report"
	"github.com/brettboylen/reddit-persona/utils"
)

func main() {
	envPath := flag.String("env", ".env", "Path to .env file")
	logLevel := flag.String("log-level", "info", "Logging level (debug, info, warn, error)")
	user := flag.String("user", "", "Reddit username (alternative to profile URL argument)")
	output := flag.String("output", "", "Output directory for persona files (overrides OUTPUT_DIR)")
	maxPosts := flag.Int("max-posts", 0, "Maximum number of posts to analyze (overrides REDDIT_MAX_POSTS)")
	maxComments := flag.Int("max-comments", 0, "Maximum number of comments to analyze (overrides REDDIT_MAX_COMMENTS)")
	debugDump := flag.Bool("debug-dump", false, "Also write the full persona record as JSON")
	serve := flag.Bool("serve", false, "Serve the generated persona over HTTP after generation")
	flag.Parse()

	log := setupLogger(*logLevel)
	log.Info("Starting Reddit Persona Generator")

	config, err := utils.LoadConfig(*envPath, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	if *output != "" {
		config.Output.Dir = *output
	}
	if *maxPosts > 0 {
		config.Reddit.MaxPosts = *maxPosts
	}
	if *maxComments > 0 {
		config.Reddit.MaxComments = *maxComments
	}

	username := *user
	if username == "" {
		username = utils.ExtractUsername(flag.Arg(0))
	}
	if username == "" {
		fmt.Fprintln(os.Stderr, "Error: please provide a valid Reddit username or profile URL")
		flag.Usage()
		os.Exit(1)
	}

	log.WithFields(logrus.Fields{
		"username":     username,
		"output_dir":   config.Output.Dir,
		"max_posts":    config.Reddit.MaxPosts,
		"max_comments": config.Reddit.MaxComments,
	}).Info("Configuration loaded")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go cancelOnShutdownSignal(cancel, log)

	redditAPI := api.NewRedditAPI(
		config.Reddit.ClientID,
		config.Reddit.ClientSecret,
		config.Reddit.UserAgent,
		config.Reddit.MaxRequestsPerMinute,
		log,
	)

	gemini, err := llm.NewGeminiClient(ctx, llm.Config{
		APIKey:         config.Gemini.APIKey,
		Model:          config.Gemini.Model,
		MaxAttempts:    uint(config.Gemini.MaxAttempts),
		RequestTimeout: time.Duration(config.Gemini.TimeoutSeconds) * time.Second,
	}, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize Gemini client")
	}

	writer, err := report.NewWriter(config.Output.Dir, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to prepare output directory")
	}

	// Step 1: scrape
	log.WithField("username", username).Info("Scraping Reddit data")
	userData, err := redditAPI.FetchUserData(username, config.Reddit.MaxPosts, config.Reddit.MaxComments)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrUserNotFound):
			log.WithError(err).Fatal("User does not exist")
		case errors.Is(err, api.ErrUserInaccessible):
			log.WithError(err).Fatal("User profile is private or suspended")
		default:
			log.WithError(err).Fatal("Failed to scrape Reddit data")
		}
	}

	log.WithFields(logrus.Fields{
		"posts":    len(userData.Posts),
		"comments": len(userData.Comments),
	}).Info("Successfully scraped user data")

	// Step 2: build persona
	log.Info("Analyzing data and building persona")
	builder := persona.NewBuilder(gemini, log)
	record, err := builder.BuildPersona(ctx, userData, username)
	if err != nil {
		switch {
		case errors.Is(err, persona.ErrEmptyCorpus):
			log.WithError(err).Fatal("No content to analyze for this user")
		case errors.Is(err, persona.ErrAllAnalysesFailed):
			log.WithError(err).Fatal("All persona analyses failed")
		default:
			log.WithError(err).Fatal("Failed to build persona")
		}
	}

	// Step 3: write the report
	outputFile, err := writer.WritePersona(record, username)
	if err != nil {
		log.WithError(err).Fatal("Failed to write persona report")
	}

	if *debugDump {
		if _, err := writer.WriteDebugData(record, username); err != nil {
			log.WithError(err).Error("Failed to write debug dump")
		}
	}

	log.WithFields(logrus.Fields{
		"username":        username,
		"posts":           len(userData.Posts),
		"comments":        len(userData.Comments),
		"failed_sections": record.Analysis.FailedCount(),
		"output_file":     outputFile,
	}).Info("Persona generation complete")

	if *serve {
		startEchoServer(ctx, config.Server.Port, record, outputFile, redditAPI, log, config.Reddit.MaxRequestsPerMinute)
	}
}

// setupLogger sets up the logger with the specified log level
func setupLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	switch level {
	case "debug":
		log.SetLevel(logrus.DebugLevel)
	case "info":
		log.SetLevel(logrus.InfoLevel)
	case "warn":
		log.SetLevel(logrus.WarnLevel)
	case "error":
		log.SetLevel(logrus.ErrorLevel)
	default:
		log.SetLevel(logrus.InfoLevel)
	}

	return log
}

// startEchoServer serves the generated persona until the context is cancelled
func startEchoServer(ctx context.Context, port int, record *models.Persona, reportPath string, redditAPI *api.RedditAPI, log *logrus.Logger, maxRequestsPerMinute int) {
	e := echo.New()
	e.HideBanner = true

	// middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	requestsPerSecond := float64(maxRequestsPerMinute) / 60.0

	rateLimit := rate.Limit(requestsPerSecond * 0.95) // use 95% of the rate limit to be safe

	rateLimiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rateLimit,
				Burst:     1, // no burst capability
				ExpiresIn: 3 * time.Minute,
			},
		),
		IdentifierExtractor: func(ctx echo.Context) (string, error) {
			return ctx.RealIP(), nil
		},
		ErrorHandler: func(ctx echo.Context, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded, please try again later",
			})
		},
		DenyHandler: func(ctx echo.Context, identifier string, err error) error {
			return ctx.JSON(http.StatusTooManyRequests, map[string]string{
				"error": "Rate limit exceeded, please try again later",
			})
		},
	}
	e.Use(middleware.RateLimiterWithConfig(rateLimiterConfig))

	e.GET("/api/persona", func(c echo.Context) error {
		return c.JSON(http.StatusOK, record)
	})

	e.GET("/api/stats", func(c echo.Context) error {
		return c.JSON(http.StatusOK, record.Statistics)
	})

	e.GET("/report", func(c echo.Context) error {
		return c.File(reportPath)
	})

	e.GET("/api/ratelimit", func(c echo.Context) error {
		reset, used := redditAPI.GetRateLimitStatus()
		return c.JSON(http.StatusOK, map[string]int{
			"reset_seconds": reset,
			"used":          used,
		})
	})

	// health check endpoint; useful for k8s liveliness probes but not strictly required in this case
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})

	// start the server!
	go func() {
		serverAddr := fmt.Sprintf(":%d", port)
		log.WithField("port", port).Info("Serving generated persona")
		if err := e.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Fatal("API server failed")
		}
	}()

	// wait for context cancellation to shut down server
	<-ctx.Done()
	log.Info("Shutting down API server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("API server shutdown failed")
	}
}

// cancelOnShutdownSignal cancels the run context on SIGINT/SIGTERM
func cancelOnShutdownSignal(cancel context.CancelFunc, log *logrus.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigChan
	log.WithField("signal", sig.String()).Info("Shutdown signal received")

	cancel()
}

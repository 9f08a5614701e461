package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/shun-hikari/shun-gunma/adapters/llm"
	"github.com/shun-hikari/shun-gunma/adapters/stt"
	"github.com/shun-hikari/shun-gunma/adapters/tts"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
	"github.com/shun-hikari/shun-gunma/internal/api"
	"github.com/shun-hikari/shun-gunma/internal/websocket"
	"github.com/shun-hikari/shun-gunma/usecase"
)

func main() {
	// Load .env if present; real deployments use the environment directly
	_ = godotenv.Load()

	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Create Echo instance
	e := echo.New()

	// Middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Initialize adapters; fall back to mocks when no credentials are set
	// so the app stays usable in local development.
	var generator repositories.LessonGenerator
	if geminiConfig := llm.NewGeminiConfigFromEnv(); geminiConfig.APIKey != "" {
		g, err := llm.NewGeminiLessonGenerator(context.Background(), geminiConfig, logger)
		if err != nil {
			logger.Fatal("failed to initialize Gemini", zap.Error(err))
		}
		generator = g
	} else {
		logger.Warn("GEMINI_API_KEY not set, using mock lesson generator")
		generator = llm.NewMockLessonGenerator()
	}

	var synthesizer repositories.TextToSpeech
	if elevenConfig := tts.NewElevenLabsConfigFromEnv(); elevenConfig.APIKey != "" {
		s, err := tts.NewElevenLabsTTS(elevenConfig, logger)
		if err != nil {
			logger.Fatal("failed to initialize Eleven Labs", zap.Error(err))
		}
		synthesizer = s
	} else {
		logger.Warn("ELEVEN_LABS_API_KEY not set, using mock text-to-speech")
		synthesizer = tts.NewMockTextToSpeech(logger)
	}

	var transcriber repositories.SpeechToText
	if os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") != "" {
		transcriber = &stt.GoogleSpeechToText{}
	} else {
		logger.Warn("GOOGLE_APPLICATION_CREDENTIALS not set, using mock speech-to-text")
		transcriber = stt.NewMockSpeechToText(logger)
	}

	// Initialize usecase services
	lessonService := usecase.NewLessonService(generator, logger)
	quizService := usecase.NewQuizService()
	readingService := usecase.NewReadingService(transcriber, logger)

	// Initialize WebSocket hub for playback sessions
	hub := websocket.NewHub(synthesizer, readingService, logger)
	go hub.Run()

	// Initialize API routes
	api.InitRoutes(e, hub, lessonService, quizService, readingService, synthesizer, logger)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(":" + port); err != nil && err != http.ErrServerClosed {
			logger.Fatal("shutting down the server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("port", port))

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

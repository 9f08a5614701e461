package api

import (
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/shun-hikari/shun-gunma/domain/repositories"
	"github.com/shun-hikari/shun-gunma/internal/speech"
	"github.com/shun-hikari/shun-gunma/internal/websocket"
	"github.com/shun-hikari/shun-gunma/usecase"
)

// InitRoutes initializes all API routes
func InitRoutes(
	e *echo.Echo,
	hub *websocket.Hub,
	lessons *usecase.LessonService,
	quiz *usecase.QuizService,
	reading *usecase.ReadingService,
	tts repositories.TextToSpeech,
	logger *zap.Logger,
) {
	// Health check
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{
			"status":  "ok",
			"service": "shun-gunma",
		})
	})

	// API v1 routes
	v1 := e.Group("/api/v1")

	v1.POST("/lessons", func(c echo.Context) error {
		return generateLesson(c, lessons, logger)
	})

	v1.POST("/quiz/check", func(c echo.Context) error {
		return checkQuiz(c, quiz, logger)
	})

	v1.GET("/voices", func(c echo.Context) error {
		return listVoices(c, tts, logger)
	})

	// One-shot reading assessment for uploaded recordings; live
	// microphone practice goes over the WebSocket instead.
	v1.POST("/reading/assess", func(c echo.Context) error {
		return assessReading(c, reading, logger)
	})

	// WebSocket endpoint carrying speech playback and reading practice
	e.GET("/ws", func(c echo.Context) error {
		return websocket.HandleWebSocket(hub, c, logger)
	})
}

func generateLesson(c echo.Context, lessons *usecase.LessonService, logger *zap.Logger) error {
	var req GenerateLessonRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind lesson request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if req.Kind == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Lesson kind is required",
		})
	}

	lesson, err := lessons.Generate(c.Request().Context(), repositories.LessonRequest{
		Kind:  req.Kind,
		Topic: req.Topic,
		Level: req.Level,
	})
	if err != nil {
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "generation_failed",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, lesson)
}

func checkQuiz(c echo.Context, quiz *usecase.QuizService, logger *zap.Logger) error {
	var req CheckQuizRequest
	if err := c.Bind(&req); err != nil {
		logger.Error("Failed to bind quiz request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request format",
		})
	}

	if len(req.Questions) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "At least one question is required",
		})
	}

	return c.JSON(http.StatusOK, quiz.CheckAnswers(req.Questions, req.Answers))
}

func assessReading(c echo.Context, reading *usecase.ReadingService, logger *zap.Logger) error {
	target := c.FormValue("target")
	if target == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "Target text is required",
		})
	}

	file, err := c.FormFile("audio")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "missing_fields",
			Message: "An audio file is required",
		})
	}

	src, err := file.Open()
	if err != nil {
		logger.Error("Failed to open uploaded audio", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Could not read the uploaded audio",
		})
	}
	defer src.Close()

	audio, err := io.ReadAll(src)
	if err != nil {
		logger.Error("Failed to read uploaded audio", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "Could not read the uploaded audio",
		})
	}

	sampleRate, _ := strconv.Atoi(c.FormValue("sample_rate"))
	result, err := reading.Assess(c.Request().Context(), target, audio, repositories.AudioConfig{
		SampleRate: sampleRate,
		Encoding:   c.FormValue("encoding"),
		Language:   c.FormValue("language"),
	})
	if err != nil {
		logger.Error("Reading assessment failed", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "assessment_failed",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, result)
}

func listVoices(c echo.Context, tts repositories.TextToSpeech, logger *zap.Logger) error {
	lang := c.QueryParam("lang")
	if lang == "" {
		lang = "en"
	}

	voices, err := tts.Voices(c.Request().Context())
	if err != nil {
		logger.Error("Failed to list voices", zap.Error(err))
		return c.JSON(http.StatusBadGateway, ErrorResponse{
			Error:   "voices_unavailable",
			Message: "Could not retrieve voices from the speech provider",
		})
	}

	return c.JSON(http.StatusOK, VoicesResponse{
		Language: lang,
		Voices:   speech.RankVoices(voices, lang),
	})
}

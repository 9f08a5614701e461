// Example exercising the Eleven Labs adapter directly: synthesizes one
// sentence to a local MP3 file and optionally prints the ranked voices.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/joho/godotenv"
	"github.com/shun-hikari/shun-gunma/adapters/tts"
	"github.com/shun-hikari/shun-gunma/domain/repositories"
	"github.com/shun-hikari/shun-gunma/internal/speech"
)

func main() {
	godotenv.Load()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if os.Getenv("ELEVEN_LABS_API_KEY") == "" {
		logger.Fatal("ELEVEN_LABS_API_KEY environment variable is required")
	}

	ttsService, err := tts.NewElevenLabsTTS(tts.NewElevenLabsConfigFromEnv(), logger)
	if err != nil {
		logger.Fatal("Failed to create TTS service", zap.Error(err))
	}

	text := "Welcome back! Today we will practice vocabulary for travel and transportation."

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("Converting text to speech", zap.String("text", text))

	audioChan, err := ttsService.Synthesize(ctx, text, repositories.SynthesisOptions{Rate: 1.0})
	if err != nil {
		logger.Fatal("Failed to convert text to speech", zap.Error(err))
	}

	outputFile := "example_output.mp3"
	file, err := os.Create(outputFile)
	if err != nil {
		logger.Fatal("Failed to create output file", zap.Error(err))
	}
	defer file.Close()

	totalBytes := 0
	chunkCount := 0

	for audioChunk := range audioChan {
		n, err := file.Write(audioChunk)
		if err != nil {
			logger.Error("Failed to write audio chunk", zap.Error(err))
			break
		}
		totalBytes += n
		chunkCount++
	}

	logger.Info("Audio conversion completed",
		zap.Int("totalChunks", chunkCount),
		zap.Int("totalBytes", totalBytes),
		zap.String("outputFile", outputFile))

	if os.Getenv("SHOW_VOICES") == "true" {
		voices, err := ttsService.Voices(ctx)
		if err != nil {
			logger.Warn("Failed to get available voices", zap.Error(err))
			return
		}
		ranked := speech.RankVoices(voices, "en")
		fmt.Printf("\nAvailable voices, best first (%d):\n", len(ranked))
		for i, voice := range ranked {
			if i >= 10 {
				fmt.Printf("... and %d more voices\n", len(ranked)-10)
				break
			}
			fmt.Printf("  - %s (%s, %s) score=%d\n", voice.Name, voice.ID, voice.Language, speech.ScoreVoice(voice))
		}
	}
}

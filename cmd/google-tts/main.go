package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"epub2audio/internal/config"
	"epub2audio/internal/service/tts/google"

	"go.uber.org/zap"
)

// Небольшая утилита: печатает список голосов Google TTS для языка из конфига,
// чтобы подобрать значение для -google-tts-voice.
func main() {
	cfg := config.NewConfig()

	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	defer func() { _ = logger.Sync() }()

	// Подготовим контекст с таймаутом.
	ctx, cancel := context.WithTimeoutCause(context.Background(), 15*time.Second, errors.New("google tts voices request timeout"))
	defer cancel()

	client, err := google.New(ctx, cfg.GoogleTTS.CredentialsPath, 0, sugar)
	if err != nil {
		sugar.Errorw("Failed to create Google TTS client", "error", err)
		os.Exit(1)
	}
	defer client.Close()

	voices, err := client.ListVoices(ctx, cfg.GoogleTTS.Language)
	if err != nil {
		sugar.Errorw("Failed to list voices", "language", cfg.GoogleTTS.Language, "error", err)
		os.Exit(1)
	}

	for _, v := range voices {
		fmt.Printf("%-32s %-8s %6d Hz  %s\n",
			v.GetName(),
			v.GetSsmlGender().String(),
			v.GetNaturalSampleRateHertz(),
			strings.Join(v.GetLanguageCodes(), ","),
		)
	}
	sugar.Infow("Voices listed", "language", cfg.GoogleTTS.Language, "count", len(voices))
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"epub2audio/internal/app/pipeline"
	"epub2audio/internal/config"
	"epub2audio/internal/service/epub"
	"epub2audio/internal/service/segment"
	"epub2audio/internal/service/tts"
	"epub2audio/internal/service/tts/google"

	"go.uber.org/zap"
)

func main() {
	cfg := config.NewConfig()

	// создаём регистратор zap; в режиме дебага показываем размеры фрагментов и время запросов
	zcfg := zap.NewDevelopmentConfig()
	if !cfg.DebugMode {
		zcfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	logger, err := zcfg.Build()
	if err != nil {
		panic(err)
	}
	sugar := logger.Sugar()
	//сброс буфера логгера
	defer func() {
		_ = logger.Sync()
	}()

	if err := run(cfg, sugar); err != nil {
		sugar.Errorw("Run failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, logger *zap.SugaredLogger) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infow("Starting",
		"epub", cfg.EpubPath,
		"out", cfg.OutputDir,
		"language", cfg.GoogleTTS.Language,
		"voice", cfg.GoogleTTS.Voice,
		"workers", cfg.Workers,
	)

	synth, err := google.New(ctx, cfg.GoogleTTS.CredentialsPath, cfg.GoogleTTS.RequestsPerSecond, logger)
	if err != nil {
		return err
	}
	defer synth.Close()

	extractor := epub.NewExtractor(segment.New(cfg.MaxChunkBytes, logger), cfg.HeaderDelimiter, logger)
	p := pipeline.New(extractor, synth, pipeline.Options{
		Workers:    cfg.Workers,
		KeepChunks: cfg.KeepChunks,
		Voice:      tts.NewVoiceConfig(cfg.GoogleTTS.Language, cfg.GoogleTTS.Voice),
	}, logger)

	summary, err := p.Run(ctx, cfg.EpubPath, cfg.OutputDir)
	if err != nil {
		return err
	}
	for _, ch := range summary.Chapters {
		if ch.Err != nil {
			logger.Warnw("Chapter without audio", "index", ch.Index, "header", ch.Header, "error", ch.Err)
		}
	}
	return nil
}

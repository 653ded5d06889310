package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type Config struct {
	DebugMode       bool   `env:"DEBUG_MODE"`       // Режим дебага: уровень логов debug
	EpubPath        string `env:"EPUB_PATH"`        // Путь к исходной книге
	OutputDir       string `env:"OUTPUT_DIR"`       // Корень для глав и итоговых mp3
	Workers         int    `env:"WORKERS"`          // Размер пула синтеза внутри одной главы
	MaxChunkBytes   int    `env:"MAX_CHUNK_BYTES"`  // Лимит одного запроса к TTS, в байтах UTF-8
	HeaderDelimiter string `env:"HEADER_DELIMITER"` // Разделитель при склейке заголовков h1..h6
	KeepChunks      bool   `env:"KEEP_CHUNKS"`      // Оставлять chunk_*.mp3 после склейки главы

	GoogleTTS GoogleTTSConfig
}

// GoogleTTSConfig конфигурация для синтеза речи через Google Cloud Text-to-Speech.
type GoogleTTSConfig struct {
	// Путь к файлу ключа сервисного аккаунта. Передаётся клиенту явно, окружение процесса не меняем.
	// Пусто — используются Application Default Credentials.
	CredentialsPath string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	Language        string `env:"GOOGLE_TTS_LANGUAGE"`
	Voice           string `env:"GOOGLE_TTS_VOICE"`
	// Ограничение частоты запросов; 0 — без ограничения
	RequestsPerSecond float64 `env:"GOOGLE_TTS_REQUESTS_PER_SECOND"`
}

// Defaults возвращает конфигурацию с предустановленными значениями по умолчанию.
// Эти значения перекрываются .env, переменными окружения и флагами CLI.
func Defaults() *Config {
	return &Config{
		DebugMode:       false,
		OutputDir:       "out",
		Workers:         3,
		MaxChunkBytes:   500,
		HeaderDelimiter: "，",
		KeepChunks:      true,
		GoogleTTS: GoogleTTSConfig{
			Language: "yue-HK",
			Voice:    "yue-HK-Standard-B",
		},
	}
}

// NewConfig загружает конфигурацию приложения из .env, окружения и os.Args.
func NewConfig() *Config {
	cfg, err := Load(os.Args[1:])
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load собирает конфигурацию: дефолты → .env → ENV → флаги из args.
func Load(args []string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Defaults()
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	fs := flag.NewFlagSet("epub2mp3", flag.ContinueOnError)
	fs.BoolVar(&cfg.DebugMode, "debug-mode", cfg.DebugMode, "включить отладочные логи")
	fs.StringVar(&cfg.EpubPath, "epub", cfg.EpubPath, "путь к EPUB файлу")
	fs.StringVar(&cfg.OutputDir, "out", cfg.OutputDir, "директория для результата")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "количество параллельных запросов синтеза")
	fs.IntVar(&cfg.MaxChunkBytes, "max-chunk-bytes", cfg.MaxChunkBytes, "максимальный размер фрагмента текста в байтах UTF-8")
	fs.StringVar(&cfg.HeaderDelimiter, "header-delimiter", cfg.HeaderDelimiter, "разделитель заголовков главы")
	fs.BoolVar(&cfg.KeepChunks, "keep-chunks", cfg.KeepChunks, "не удалять промежуточные chunk_*.mp3 после склейки")
	// Параметры Google TTS
	fs.StringVar(&cfg.GoogleTTS.CredentialsPath, "google-tts-credentials", cfg.GoogleTTS.CredentialsPath, "путь к service-account.json (также читается из ENV GOOGLE_APPLICATION_CREDENTIALS)")
	fs.StringVar(&cfg.GoogleTTS.Language, "google-tts-language", cfg.GoogleTTS.Language, "язык синтеза, напр. yue-HK")
	fs.StringVar(&cfg.GoogleTTS.Voice, "google-tts-voice", cfg.GoogleTTS.Voice, "имя голоса, напр. yue-HK-Standard-B")
	fs.Float64Var(&cfg.GoogleTTS.RequestsPerSecond, "google-tts-rps", cfg.GoogleTTS.RequestsPerSecond, "ограничение запросов в секунду (0 — без ограничения)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate проверяет обязательные параметры запуска.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.EpubPath) == "" {
		errs = append(errs, errors.New("epub path is empty; set EPUB_PATH or -epub"))
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errs = append(errs, errors.New("output dir is empty; set OUTPUT_DIR or -out"))
	}
	if c.Workers <= 0 {
		errs = append(errs, fmt.Errorf("workers must be positive, got %d", c.Workers))
	}
	if c.MaxChunkBytes <= 0 {
		errs = append(errs, fmt.Errorf("max chunk bytes must be positive, got %d", c.MaxChunkBytes))
	}
	if strings.TrimSpace(c.GoogleTTS.Language) == "" {
		errs = append(errs, errors.New("google tts: language is empty"))
	}
	// Ключ не обязателен (ADC), но если указан — файл должен существовать
	if cp := strings.TrimSpace(c.GoogleTTS.CredentialsPath); cp != "" {
		if _, err := os.Stat(cp); err != nil {
			errs = append(errs, fmt.Errorf("google tts: credentials file not found: %s", cp))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return nil
}

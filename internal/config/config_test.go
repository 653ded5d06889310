package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, 500, cfg.MaxChunkBytes)
	assert.Equal(t, "，", cfg.HeaderDelimiter)
	assert.True(t, cfg.KeepChunks)
	assert.Equal(t, "yue-HK", cfg.GoogleTTS.Language)
	assert.Equal(t, "yue-HK-Standard-B", cfg.GoogleTTS.Voice)
}

func TestLoadEnvAndFlags(t *testing.T) {
	t.Setenv("WORKERS", "5")
	t.Setenv("GOOGLE_TTS_VOICE", "cmn-CN-Standard-A")
	t.Setenv("KEEP_CHUNKS", "false")

	cfg, err := Load([]string{"-epub", "book.epub", "-out", "audio", "-workers", "2"})
	require.NoError(t, err)

	assert.Equal(t, "book.epub", cfg.EpubPath)
	assert.Equal(t, "audio", cfg.OutputDir)
	// флаг перекрывает окружение
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, "cmn-CN-Standard-A", cfg.GoogleTTS.Voice)
	assert.False(t, cfg.KeepChunks)
}

func TestLoadRejectsUnknownFlag(t *testing.T) {
	_, err := Load([]string{"-no-such-flag"})
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cred := filepath.Join(t.TempDir(), "sa.json")
	require.NoError(t, os.WriteFile(cred, []byte("{}"), 0o600))

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "valid with credentials", mutate: func(c *Config) { c.GoogleTTS.CredentialsPath = cred }},
		{name: "missing epub", mutate: func(c *Config) { c.EpubPath = "" }, wantErr: true},
		{name: "missing out", mutate: func(c *Config) { c.OutputDir = " " }, wantErr: true},
		{name: "zero workers", mutate: func(c *Config) { c.Workers = 0 }, wantErr: true},
		{name: "negative budget", mutate: func(c *Config) { c.MaxChunkBytes = -1 }, wantErr: true},
		{name: "no language", mutate: func(c *Config) { c.GoogleTTS.Language = "" }, wantErr: true},
		{name: "credentials not found", mutate: func(c *Config) {
			c.GoogleTTS.CredentialsPath = filepath.Join(t.TempDir(), "missing.json")
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			cfg.EpubPath = "book.epub"
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateMissingCredentialsMessage(t *testing.T) {
	cfg := Defaults()
	cfg.EpubPath = "book.epub"
	missing := filepath.Join(t.TempDir(), "missing.json")
	cfg.GoogleTTS.CredentialsPath = missing

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "google tts: credentials file not found: "+missing)
}

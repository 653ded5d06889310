package tts

import (
	"context"
	"fmt"
	"os"
)

// Параметры синтеза, которые не настраиваются пользователем.
const (
	SpeakingRate = 0.8
	EncodingMP3  = "MP3"
)

// VoiceConfig параметры голоса, передаются провайдеру без изменений.
type VoiceConfig struct {
	LanguageCode string
	VoiceName    string
	SpeakingRate float64
	Encoding     string
}

// NewVoiceConfig возвращает голос с фиксированными скоростью 0.8 и кодированием MP3.
func NewVoiceConfig(languageCode, voiceName string) VoiceConfig {
	return VoiceConfig{
		LanguageCode: languageCode,
		VoiceName:    voiceName,
		SpeakingRate: SpeakingRate,
		Encoding:     EncodingMP3,
	}
}

// Synthesizer абстракция TTS: один текст — один ответ с аудио.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice VoiceConfig) ([]byte, error)
}

// SynthesizeToFile синтезирует text и пишет аудио в path.
func SynthesizeToFile(ctx context.Context, s Synthesizer, text, path string, voice VoiceConfig) error {
	audio, err := s.Synthesize(ctx, text, voice)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, audio, 0o644); err != nil {
		return fmt.Errorf("write audio %s: %w", path, err)
	}
	return nil
}

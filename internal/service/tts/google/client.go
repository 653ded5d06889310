package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"epub2audio/internal/service/tts"

	gctts "cloud.google.com/go/texttospeech/apiv1"
	ttspb "cloud.google.com/go/texttospeech/apiv1/texttospeechpb"
	"github.com/googleapis/gax-go/v2"
	"go.uber.org/zap"
	googleauth "golang.org/x/oauth2/google"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

var ErrUnsupportedEncoding = errors.New("google tts: only MP3 encoding is supported")

// speechClient — часть SDK клиента, которой мы пользуемся.
type speechClient interface {
	SynthesizeSpeech(ctx context.Context, req *ttspb.SynthesizeSpeechRequest, opts ...gax.CallOption) (*ttspb.SynthesizeSpeechResponse, error)
	ListVoices(ctx context.Context, req *ttspb.ListVoicesRequest, opts ...gax.CallOption) (*ttspb.ListVoicesResponse, error)
	Close() error
}

// Client реализует синтез речи через Google Cloud Text-to-Speech.
// Один SDK клиент на весь прогон, безопасен для параллельных вызовов.
type Client struct {
	sdk     speechClient
	limiter *rate.Limiter
	logger  *zap.SugaredLogger
}

// New создаёт клиента. credentialsPath — путь к ключу сервисного аккаунта;
// пусто — Application Default Credentials. requestsPerSecond <= 0 отключает ограничение.
func New(ctx context.Context, credentialsPath string, requestsPerSecond float64, logger *zap.SugaredLogger) (*Client, error) {
	var opts []option.ClientOption
	if cp := strings.TrimSpace(credentialsPath); cp != "" {
		data, err := os.ReadFile(cp)
		if err != nil {
			return nil, fmt.Errorf("google tts: read credentials: %w", err)
		}
		creds, err := googleauth.CredentialsFromJSON(ctx, data, gctts.DefaultAuthScopes()...)
		if err != nil {
			return nil, fmt.Errorf("google tts: parse credentials: %w", err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	sdk, err := gctts.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("google tts: create client: %w", err)
	}
	return newClient(sdk, newLimiter(requestsPerSecond), logger), nil
}

func newClient(sdk speechClient, limiter *rate.Limiter, logger *zap.SugaredLogger) *Client {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Client{sdk: sdk, limiter: limiter, logger: logger}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	burst := max(1, int(rps))
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// Synthesize выполняет один запрос к Google TTS и возвращает MP3.
// При ошибке текст запроса пишется в лог, ошибка возвращается без повторов.
func (c *Client) Synthesize(ctx context.Context, text string, voice tts.VoiceConfig) ([]byte, error) {
	if enc := strings.ToUpper(strings.TrimSpace(voice.Encoding)); enc != "" && enc != tts.EncodingMP3 {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEncoding, voice.Encoding)
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("google tts: rate limit wait: %w", err)
		}
	}

	req := &ttspb.SynthesizeSpeechRequest{
		Input: &ttspb.SynthesisInput{InputSource: &ttspb.SynthesisInput_Text{Text: text}},
		Voice: &ttspb.VoiceSelectionParams{
			LanguageCode: voice.LanguageCode,
			Name:         voice.VoiceName,
		},
		// Только MP3
		AudioConfig: &ttspb.AudioConfig{
			AudioEncoding: ttspb.AudioEncoding_MP3,
			SpeakingRate:  voice.SpeakingRate,
		},
	}

	started := time.Now()
	resp, err := c.sdk.SynthesizeSpeech(ctx, req)
	if err != nil {
		c.logger.Errorw("Google TTS synthesize failed", "text", text, "error", err)
		return nil, fmt.Errorf("google tts: synthesize: %w", err)
	}
	c.logger.Debugw("Google TTS synthesize completed", "took", time.Since(started).String(), "bytes", len(resp.GetAudioContent()))
	return resp.GetAudioContent(), nil
}

// ListVoices возвращает голоса, доступные для languageCode (пусто — все).
func (c *Client) ListVoices(ctx context.Context, languageCode string) ([]*ttspb.Voice, error) {
	resp, err := c.sdk.ListVoices(ctx, &ttspb.ListVoicesRequest{LanguageCode: languageCode})
	if err != nil {
		return nil, fmt.Errorf("google tts: list voices: %w", err)
	}
	return resp.GetVoices(), nil
}

func (c *Client) Close() error {
	return c.sdk.Close()
}

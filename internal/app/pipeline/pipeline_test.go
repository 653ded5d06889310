package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"epub2audio/internal/service/audio/audiotest"
	"epub2audio/internal/service/epub"
	"epub2audio/internal/service/epub/epubtest"
	"epub2audio/internal/service/segment"
	"epub2audio/internal/service/tts"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSynth struct {
	mu    sync.Mutex
	calls []string
	audio func(text string) ([]byte, error)
}

func (f *fakeSynth) Synthesize(_ context.Context, text string, _ tts.VoiceConfig) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, text)
	f.mu.Unlock()
	if f.audio == nil {
		return audiotest.Silence(2), nil
	}
	return f.audio(text)
}

func (f *fakeSynth) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type staticSource []epub.Chapter

func (s staticSource) ExtractFile(string) ([]epub.Chapter, error) { return s, nil }

type failingSource struct{ err error }

func (s failingSource) ExtractFile(string) ([]epub.Chapter, error) { return nil, s.err }

var voice = tts.NewVoiceConfig("yue-HK", "yue-HK-Standard-B")

func TestRunEndToEnd(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	book := epubtest.WriteFile(t, "Test Book",
		epubtest.Doc{Href: "intro.xhtml", Body: `<h1>Intro</h1><p>你好。世界！</p>`},
		epubtest.Doc{Href: "one.xhtml", Body: `<h1>Chapter One</h1><p>Just some English prose.</p>`},
	)
	out := t.TempDir()
	synth := &fakeSynth{}
	extractor := epub.NewExtractor(segment.New(500, logger), "，", logger)

	summary, err := New(extractor, synth, Options{Workers: 3, KeepChunks: true, Voice: voice}, logger).
		Run(context.Background(), book, out)
	require.NoError(t, err)

	entries, err := os.ReadDir(out)
	require.NoError(t, err)
	var dirs, files []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		} else {
			files = append(files, e.Name())
		}
	}
	assert.Equal(t, []string{"0_Intro", "1_Chapter One"}, dirs)
	assert.Equal(t, []string{"0_Intro.mp3"}, files)

	assert.Equal(t, []string{"你好。世界。"}, synth.Calls())
	assert.FileExists(t, filepath.Join(out, "0_Intro", "chunk_0.mp3"))
	english, err := os.ReadDir(filepath.Join(out, "1_Chapter One"))
	require.NoError(t, err)
	assert.Empty(t, english)

	require.Len(t, summary.Chapters, 2)
	assert.Equal(t, filepath.Join(out, "0_Intro.mp3"), summary.Chapters[0].Output)
	assert.Positive(t, summary.Chapters[0].Duration)
	assert.Empty(t, summary.Chapters[1].Output)
	assert.Equal(t, summary.Chapters[0].Duration, summary.Duration())
}

func TestRunKeepsChunkOrder(t *testing.T) {
	parts := []string{"零", "一", "二", "三", "四", "五", "六", "七"}
	synth := &fakeSynth{audio: func(text string) ([]byte, error) {
		// ответы приходят в разном порядке
		time.Sleep(time.Duration(len(text)%3) * time.Millisecond)
		return []byte(text), nil
	}}
	out := t.TempDir()

	summary, err := New(staticSource{{Header: "章", Parts: parts}}, synth, Options{Workers: 3, KeepChunks: true, Voice: voice}, nil).
		Run(context.Background(), "book.epub", out)
	require.NoError(t, err)

	chunks := summary.Chapters[0].Chunks
	require.Len(t, chunks, len(parts))
	for j, p := range chunks {
		assert.Equal(t, filepath.Join(out, "0_章", fmt.Sprintf("chunk_%d.mp3", j)), p)
		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.Equal(t, parts[j], string(data))
	}
	// байты не mp3: склейка падает, но прогон успешен
	assert.Error(t, summary.Chapters[0].Err)
}

func TestRunSynthesisFailureAbortsRemainingDispatch(t *testing.T) {
	boom := errors.New("tts unavailable")
	synth := &fakeSynth{audio: func(text string) ([]byte, error) {
		if text == "bad" {
			return nil, boom
		}
		return audiotest.Silence(1), nil
	}}
	chapters := staticSource{
		{Header: "first", Parts: []string{"ok", "bad", "later-1", "later-2", "later-3"}},
		{Header: "second", Parts: []string{"never"}},
	}
	out := t.TempDir()

	_, err := New(chapters, synth, Options{Workers: 1, KeepChunks: true, Voice: voice}, nil).
		Run(context.Background(), "book.epub", out)
	require.ErrorIs(t, err, boom)

	assert.Equal(t, []string{"ok", "bad"}, synth.Calls())
	assert.FileExists(t, filepath.Join(out, "0_first", "chunk_0.mp3"))
	for j := 1; j < 5; j++ {
		assert.NoFileExists(t, filepath.Join(out, "0_first", fmt.Sprintf("chunk_%d.mp3", j)))
	}
	assert.NoDirExists(t, filepath.Join(out, "1_second"))
	assert.NoFileExists(t, filepath.Join(out, "0_first.mp3"))
}

func TestRunConcatFailureIsIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	synth := &fakeSynth{audio: func(text string) ([]byte, error) {
		if text == "corrupt" {
			return []byte("not audio"), nil
		}
		return audiotest.Silence(2), nil
	}}
	chapters := staticSource{
		{Header: "broken", Parts: []string{"corrupt"}},
		{Header: "fine", Parts: []string{"a", "b"}},
	}
	out := t.TempDir()

	summary, err := New(chapters, synth, Options{KeepChunks: true, Voice: voice}, zap.New(core).Sugar()).
		Run(context.Background(), "book.epub", out)
	require.NoError(t, err)

	assert.Error(t, summary.Chapters[0].Err)
	assert.NoFileExists(t, filepath.Join(out, "0_broken.mp3"))
	assert.NoError(t, summary.Chapters[1].Err)
	assert.FileExists(t, filepath.Join(out, "1_fine.mp3"))

	failed := logs.FilterMessage("Chapter concatenation failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, "broken", failed[0].ContextMap()["header"])
}

func TestRunRemovesChunksWhenNotKept(t *testing.T) {
	out := t.TempDir()
	chapters := staticSource{{Header: "一", Parts: []string{"a", "b"}}}

	summary, err := New(chapters, &fakeSynth{}, Options{KeepChunks: false, Voice: voice}, nil).
		Run(context.Background(), "book.epub", out)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(out, "0_一.mp3"))
	assert.NoDirExists(t, summary.Chapters[0].Dir)
}

func TestRunExtractionFailure(t *testing.T) {
	boom := errors.New("bad epub")
	_, err := New(failingSource{err: boom}, &fakeSynth{}, Options{Voice: voice}, nil).
		Run(context.Background(), "book.epub", t.TempDir())
	assert.ErrorIs(t, err, boom)
}

func TestRunCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	synth := &fakeSynth{}

	_, err := New(staticSource{{Header: "h", Parts: []string{"a", "b"}}}, synth, Options{Voice: voice}, nil).
		Run(ctx, "book.epub", t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, synth.Calls())
}

func TestChapterName(t *testing.T) {
	assert.Equal(t, "0_Intro", ChapterName(0, "Intro"))
	assert.Equal(t, "1_Chapter One", ChapterName(1, "Chapter One"))
	assert.Equal(t, "2_text_ch2.xhtml", ChapterName(2, "text/ch2.xhtml"))
	assert.Equal(t, "3_a_b", ChapterName(3, `a\b`))
}

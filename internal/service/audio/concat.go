package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/faiface/beep/mp3"
	"go.uber.org/zap"
)

var ErrNoInput = errors.New("audio: nothing to concatenate")

// Concatenator склеивает MP3 файлы фрагментов в один файл главы.
type Concatenator struct {
	logger *zap.SugaredLogger
}

func NewConcatenator(logger *zap.SugaredLogger) *Concatenator {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Concatenator{logger: logger}
}

// Concat проверяет, что каждый входной файл декодируется как MP3, и пишет
// их кадры подряд в output. Теги ID3 входных файлов отбрасываются.
// Возвращает суммарную длительность. Если хоть один вход битый,
// output не создаётся.
func (c *Concatenator) Concat(inputs []string, output string) (time.Duration, error) {
	if len(inputs) == 0 {
		return 0, ErrNoInput
	}

	var (
		total  time.Duration
		frames [][]byte
	)
	for _, in := range inputs {
		data, err := os.ReadFile(in)
		if err != nil {
			return 0, fmt.Errorf("read %s: %w", in, err)
		}
		d, err := Duration(data)
		if err != nil {
			return 0, fmt.Errorf("decode %s: %w", in, err)
		}
		total += d
		frames = append(frames, StripTags(data))
	}

	// Пишем во временный файл рядом и переименовываем, чтобы не оставить половину главы
	tmp, err := os.CreateTemp(filepath.Dir(output), ".concat-*.mp3")
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	for _, f := range frames {
		if _, err := tmp.Write(f); err != nil {
			tmp.Close()
			return 0, fmt.Errorf("write %s: %w", output, err)
		}
	}
	if err := tmp.Close(); err != nil {
		return 0, fmt.Errorf("close %s: %w", output, err)
	}
	if err := os.Rename(tmp.Name(), output); err != nil {
		return 0, fmt.Errorf("rename to %s: %w", output, err)
	}

	c.logger.Infow("Chapter audio written", "path", output, "inputs", len(inputs), "duration", total.Round(time.Millisecond).String())
	return total, nil
}

// seekCloser — bytes.Reader с пустым Close. Декодер считает длину
// по всем кадрам только если источник умеет Seek.
type seekCloser struct {
	*bytes.Reader
	io.Closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Duration проверяет кадры MP3 и возвращает длительность потока.
func Duration(data []byte) (time.Duration, error) {
	if _, err := CheckFrames(data); err != nil {
		return 0, err
	}
	streamer, format, err := mp3.Decode(seekCloser{Reader: bytes.NewReader(data), Closer: nopCloser{}})
	if err != nil {
		return 0, err
	}
	defer streamer.Close()
	if streamer.Len() <= 0 {
		return 0, fmt.Errorf("%w: decoder reported empty stream", ErrBadFrame)
	}
	return format.SampleRate.D(streamer.Len()), nil
}

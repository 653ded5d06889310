package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"epub2audio/internal/service/audio"
	"epub2audio/internal/service/epub"
	"epub2audio/internal/service/tts"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 3

// ChapterSource отдаёт главы книги, уже нарезанные на куски.
type ChapterSource interface {
	ExtractFile(path string) ([]epub.Chapter, error)
}

// Options параметры прогона.
type Options struct {
	Workers    int // размер пула синтеза внутри главы
	KeepChunks bool
	Voice      tts.VoiceConfig
}

// ChapterResult итог по одной главе.
type ChapterResult struct {
	Index    int
	Header   string
	Dir      string   // директория с chunk_*.mp3
	Chunks   []string // пути фрагментов в порядке текста
	Output   string   // склеенный mp3, пусто если склейки не было
	Duration time.Duration
	Err      error // ошибка склейки
}

type Summary struct {
	Chapters []ChapterResult
}

// Duration суммарная длительность всех склеенных глав.
func (s *Summary) Duration() time.Duration {
	var d time.Duration
	for _, c := range s.Chapters {
		d += c.Duration
	}
	return d
}

// Pipeline: извлечение глав → синтез фрагментов пулом → склейка по главам.
type Pipeline struct {
	source  ChapterSource
	synth   tts.Synthesizer
	concat  *audio.Concatenator
	cleaner *audio.Cleaner
	opts    Options
	logger  *zap.SugaredLogger
}

func New(source ChapterSource, synth tts.Synthesizer, opts Options, logger *zap.SugaredLogger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	return &Pipeline{
		source:  source,
		synth:   synth,
		concat:  audio.NewConcatenator(logger),
		cleaner: audio.NewCleaner(logger),
		opts:    opts,
		logger:  logger,
	}
}

// Run обрабатывает книгу epubPath и складывает результат в outputDir.
// Ошибка извлечения или синтеза любого фрагмента прерывает прогон.
// Ошибка склейки главы только логируется, остальные главы склеиваются дальше.
func (p *Pipeline) Run(ctx context.Context, epubPath, outputDir string) (*Summary, error) {
	started := time.Now()

	chapters, err := p.source.ExtractFile(epubPath)
	if err != nil {
		return nil, fmt.Errorf("extract chapters: %w", err)
	}
	p.logger.Infow("Book extracted", "path", epubPath, "chapters", len(chapters))

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	// Главы идут строго по очереди: пул следующей не стартует, пока не отработал пул текущей
	results := make([]ChapterResult, 0, len(chapters))
	for i, ch := range chapters {
		dir := filepath.Join(outputDir, ChapterName(i, ch.Header))
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create chapter dir: %w", err)
		}

		p.logger.Infow("Synthesizing chapter", "index", i, "header", ch.Header, "chunks", len(ch.Parts))
		paths, err := p.synthesizeChapter(ctx, dir, ch.Parts)
		if err != nil {
			p.logger.Errorw("Chapter synthesis failed", "index", i, "header", ch.Header, "error", err)
			return nil, fmt.Errorf("chapter %d %q: %w", i, ch.Header, err)
		}
		results = append(results, ChapterResult{Index: i, Header: ch.Header, Dir: dir, Chunks: paths})
	}

	for i := range results {
		r := &results[i]
		if len(r.Chunks) == 0 {
			p.logger.Infow("Chapter has no speech chunks, skipping", "index", r.Index, "header", r.Header)
			continue
		}
		out := filepath.Join(outputDir, ChapterName(r.Index, r.Header)+".mp3")
		d, err := p.concat.Concat(r.Chunks, out)
		if err != nil {
			p.logger.Errorw("Chapter concatenation failed", "header", r.Header, "error", err)
			r.Err = err
			continue
		}
		r.Output, r.Duration = out, d
		if !p.opts.KeepChunks {
			p.cleaner.Clean(r.Dir)
		}
	}

	summary := &Summary{Chapters: results}
	p.logger.Infow("Audiobook done",
		"chapters", len(results),
		"audio", summary.Duration().Round(time.Second).String(),
		"took", time.Since(started).Round(time.Millisecond).String(),
	)
	return summary, nil
}

// synthesizeChapter синтезирует фрагменты главы пулом из opts.Workers воркеров.
// После первой ошибки оставшиеся фрагменты не отправляются, уже запущенные
// дорабатывают, возвращается исходная ошибка.
func (p *Pipeline) synthesizeChapter(ctx context.Context, dir string, parts []string) ([]string, error) {
	paths := make([]string, len(parts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for j, part := range parts {
		if gctx.Err() != nil {
			break
		}
		part := part
		path := filepath.Join(dir, fmt.Sprintf("chunk_%d.mp3", j))
		paths[j] = path
		g.Go(func() error {
			// Go мог ждать свободного воркера, пока другой фрагмент упал
			if err := gctx.Err(); err != nil {
				return err
			}
			return tts.SynthesizeToFile(gctx, p.synth, part, path, p.opts.Voice)
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	// Внешняя отмена до старта: ни одна задача не запускалась
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return paths, nil
}

var nameReplacer = strings.NewReplacer("/", "_", "\\", "_", "\x00", "_")

// ChapterName имя директории и файла главы: "{index}_{header}".
// Разделители путей в заголовке заменяются на "_".
func ChapterName(index int, header string) string {
	return fmt.Sprintf("%d_%s", index, nameReplacer.Replace(header))
}

package audio

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// Cleaner удаляет промежуточные файлы фрагментов после склейки главы.
type Cleaner struct {
	logger *zap.SugaredLogger
}

func NewCleaner(logger *zap.SugaredLogger) *Cleaner {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Cleaner{logger: logger}
}

// Clean удаляет chunk_*.mp3 из dir, а затем и саму dir, если она опустела.
// Ошибки только логируются: на результат прогона они не влияют.
func (c *Cleaner) Clean(dir string) int {
	if dir == "" {
		return 0
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0
		}
		c.logger.Warnw("Failed to read chunk directory", "dir", dir, "error", err)
		return 0
	}

	removed, left := 0, 0
	for _, e := range entries {
		name := e.Name()
		lower := strings.ToLower(name)
		if e.IsDir() || !strings.HasPrefix(lower, "chunk_") || !strings.HasSuffix(lower, ".mp3") {
			left++
			continue
		}
		full := filepath.Join(dir, name)
		if err := os.Remove(full); err != nil {
			c.logger.Warnw("Failed to remove chunk file", "path", full, "error", err)
			left++
			continue
		}
		removed++
	}
	if left == 0 {
		if err := os.Remove(dir); err != nil {
			c.logger.Warnw("Failed to remove chunk directory", "dir", dir, "error", err)
		}
	}
	c.logger.Debugw("Chunk files removed", "dir", dir, "removed", removed)
	return removed
}

package segment

import (
	"strings"

	"go.uber.org/zap"
)

// DefaultMaxBytes лимит по умолчанию для Combine, если вызывающий передал 0.
const DefaultMaxBytes = 1000

const ideographicSpace = "\u3000"

// Combine жадно собирает фрагменты в куски не длиннее maxBytes байт UTF-8,
// считая и байты разделителя между фрагментами. Фрагмент, который не помещается,
// начинает следующий кусок. Фрагмент длиннее maxBytes не режется: он уходит
// отдельным куском с предупреждением в лог. Последний кусок отдаётся всегда,
// поэтому пустой вход даёт [""].
func Combine(parts []string, delimiter string, maxBytes int, logger *zap.SugaredLogger) []string {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}

	var (
		out     []string
		builder []string
		size    int
	)
	for _, part := range parts {
		partSize := len(part)
		next := size + partSize
		if len(builder) > 0 {
			next += len(delimiter)
		}
		if next > maxBytes && len(builder) > 0 {
			out = append(out, strings.Join(builder, delimiter))
			builder = nil
			next = partSize
		}
		if partSize > maxBytes && logger != nil {
			logger.Warnw("Text fragment exceeds chunk budget", "bytes", partSize, "max", maxBytes, "text", part)
		}

		builder = append(builder, strings.ReplaceAll(part, ideographicSpace, "。"))
		size = next
	}

	return append(out, strings.Join(builder, delimiter))
}

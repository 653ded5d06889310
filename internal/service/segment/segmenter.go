package segment

import "go.uber.org/zap"

// Segmenter держит параметры разбиения текста главы на куски для синтеза.
type Segmenter struct {
	Delimiters []string
	Join       string
	MaxBytes   int

	logger *zap.SugaredLogger
}

// New создаёт сегментатор с разделителями предложений для китайского текста.
func New(maxBytes int, logger *zap.SugaredLogger) *Segmenter {
	return &Segmenter{
		Delimiters: []string{"。", "!", "?"},
		Join:       "。",
		MaxBytes:   maxBytes,
		logger:     logger,
	}
}

// Segment режет text на предложения и собирает их в куски по лимиту.
func (s *Segmenter) Segment(text string) []string {
	chunks := Combine(Split(text, s.Delimiters), s.Join, s.MaxBytes, s.logger)
	if s.logger != nil {
		sizes := make([]int, len(chunks))
		for i, c := range chunks {
			sizes[i] = len(c)
		}
		s.logger.Debugw("Text segmented", "chunks", len(chunks), "sizes", sizes)
	}
	return chunks
}

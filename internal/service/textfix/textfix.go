// Package textfix исправляет типичные поломки кодировки в тексте из EPUB:
// UTF-8, который где-то по пути прочитали как Windows-1252 или Latin-1 ("mojibake").
package textfix

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Сколько раз подряд пробуем откатить двойное перекодирование.
const maxPasses = 3

var legacyEncodings = []*charmap.Charmap{
	charmap.Windows1252,
	charmap.ISO8859_1,
}

// Fix возвращает текст с исправленным mojibake, нормализованный в NFC.
// Полноширинные формы сворачиваются в обычные: "！" → "!", "？" → "?", U+3000 → пробел.
// Текст, который не похож на испорченный, в остальном возвращается как есть.
func Fix(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	for i := 0; i < maxPasses; i++ {
		fixed, ok := unmangle(s)
		if !ok {
			break
		}
		s = fixed
	}
	return norm.NFC.String(width.Fold.String(s))
}

// unmangle пробует закодировать s обратно в однобайтовую кодировку и прочитать
// результат как UTF-8. Успех засчитывается, только если получился валидный UTF-8
// с многобайтовыми символами и текст стал короче.
func unmangle(s string) (string, bool) {
	if !hasSuspicious(s) {
		return s, false
	}
	for _, cm := range legacyEncodings {
		raw, err := cm.NewEncoder().String(s)
		if err != nil || raw == s || !utf8.ValidString(raw) {
			continue
		}
		if utf8.RuneCountInString(raw) >= utf8.RuneCountInString(s) {
			continue
		}
		return raw, true
	}
	return s, false
}

// hasSuspicious — быстрый отсев: mojibake из UTF-8 всегда содержит символы
// из диапазона U+0080..U+00FF или знаки Windows-1252 вроде "€", "™", "œ".
func hasSuspicious(s string) bool {
	for _, r := range s {
		if r >= 0x80 && r <= 0xFF {
			return true
		}
		switch r {
		case '€', '‚', 'ƒ', '„', '…', '†', '‡', 'ˆ', '‰', 'Š', '‹', 'Œ', 'Ž',
			'‘', '’', '“', '”', '•', '–', '—', '˜', '™', 'š', '›', 'œ', 'ž', 'Ÿ':
			return true
		}
	}
	return false
}

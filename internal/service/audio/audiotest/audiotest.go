// Package audiotest генерирует минимальные валидные MP3 для тестов.
package audiotest

// Заголовок MPEG-1 Layer III, 128 kbps, 44.1 kHz, stereo, без CRC.
var frameHeader = []byte{0xFF, 0xFB, 0x90, 0x04}

const frameLen = 417 // 144 * 128000 / 44100

// Silence возвращает n кадров тишины: нулевая side info, нулевые данные.
func Silence(frames int) []byte {
	out := make([]byte, 0, frames*frameLen)
	for i := 0; i < frames; i++ {
		frame := make([]byte, frameLen)
		copy(frame, frameHeader)
		out = append(out, frame...)
	}
	return out
}

// WithID3 оборачивает данные пустыми ID3v2 и ID3v1 тегами.
func WithID3(data []byte) []byte {
	// ID3v2.4, без флагов, размер тела 4 байта (syncsafe)
	head := []byte{'I', 'D', '3', 4, 0, 0, 0, 0, 0, 4, 0, 0, 0, 0}
	tail := make([]byte, 128)
	copy(tail, "TAG")
	out := append([]byte{}, head...)
	out = append(out, data...)
	return append(out, tail...)
}

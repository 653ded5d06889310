package audio

import (
	"errors"
	"fmt"
)

var ErrBadFrame = errors.New("audio: invalid MP3 frame")

const frameHeaderLen = 4

// Битрейты Layer III в kbps по индексу из заголовка
var (
	bitratesV1 = [16]int{0, 32, 40, 48, 56, 64, 80, 96, 112, 128, 160, 192, 224, 256, 320, 0}
	bitratesV2 = [16]int{0, 8, 16, 24, 32, 40, 48, 56, 64, 80, 96, 112, 128, 144, 160, 0}
)

var sampleRatesV1 = [4]int{44100, 48000, 32000, 0}

// CheckFrames проверяет, что поток без тегов целиком состоит из подряд идущих
// кадров MPEG Layer III. Декодер пропускает мусор между кадрами молча,
// поэтому битый хвост фрагмента ловится только здесь.
func CheckFrames(data []byte) (int, error) {
	data = StripTags(data)
	frames := 0
	for pos := 0; pos < len(data); {
		if len(data)-pos < frameHeaderLen {
			return frames, fmt.Errorf("%w: truncated header at offset %d", ErrBadFrame, pos)
		}
		n, err := frameLen(data[pos : pos+frameHeaderLen])
		if err != nil {
			return frames, fmt.Errorf("%w at offset %d", err, pos)
		}
		if pos+n > len(data) {
			return frames, fmt.Errorf("%w: truncated frame at offset %d", ErrBadFrame, pos)
		}
		pos += n
		frames++
	}
	if frames == 0 {
		return 0, fmt.Errorf("%w: no frames", ErrBadFrame)
	}
	return frames, nil
}

// frameLen разбирает 4-байтовый заголовок и возвращает длину кадра с заголовком.
func frameLen(h []byte) (int, error) {
	if h[0] != 0xFF || h[1]&0xE0 != 0xE0 {
		return 0, fmt.Errorf("%w: no sync word", ErrBadFrame)
	}
	version := (h[1] >> 3) & 0x03 // 3 = MPEG-1, 2 = MPEG-2, 0 = MPEG-2.5
	layer := (h[1] >> 1) & 0x03   // 1 = Layer III
	if version == 1 || layer != 1 {
		return 0, fmt.Errorf("%w: not MPEG Layer III", ErrBadFrame)
	}

	bitrates, coef := bitratesV1, 144
	if version != 3 {
		bitrates, coef = bitratesV2, 72
	}
	bitrate := bitrates[h[2]>>4] * 1000
	sampleRate := sampleRatesV1[(h[2]>>2)&0x03]
	switch version {
	case 2:
		sampleRate /= 2
	case 0:
		sampleRate /= 4
	}
	if bitrate == 0 || sampleRate == 0 {
		return 0, fmt.Errorf("%w: bad bitrate or sample rate", ErrBadFrame)
	}
	padding := int(h[2]>>1) & 0x01
	return coef*bitrate/sampleRate + padding, nil
}

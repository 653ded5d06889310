package audio

import "bytes"

const (
	id3v2HeaderLen = 10
	id3v1Len       = 128
)

// StripTags отрезает ID3v2 тег в начале и ID3v1 тег в конце MP3 потока.
// При склейке теги внутри файла ломают воспроизведение в части плееров.
func StripTags(data []byte) []byte {
	for len(data) >= id3v2HeaderLen && bytes.HasPrefix(data, []byte("ID3")) {
		size := syncsafe(data[6:10])
		if data[5]&0x10 != 0 { // есть footer
			size += id3v2HeaderLen
		}
		end := id3v2HeaderLen + size
		if end > len(data) {
			break
		}
		data = data[end:]
	}
	if len(data) >= id3v1Len && bytes.HasPrefix(data[len(data)-id3v1Len:], []byte("TAG")) {
		data = data[:len(data)-id3v1Len]
	}
	return data
}

func syncsafe(b []byte) int {
	return int(b[0]&0x7f)<<21 | int(b[1]&0x7f)<<14 | int(b[2]&0x7f)<<7 | int(b[3]&0x7f)
}

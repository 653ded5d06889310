package textfix

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFix(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain ascii", in: "Chapter One", want: "Chapter One"},
		{name: "chinese untouched", in: "你好。世界。", want: "你好。世界。"},
		{name: "fullwidth punctuation folded", in: "你好！世界？", want: "你好!世界?"},
		{name: "ideographic space folded", in: "你好\u3000世界", want: "你好 世界"},
		{name: "fullwidth latin folded", in: "ＡＢＣ１２３", want: "ABC123"},
		{name: "latin untouched", in: "café déjà vu", want: "café déjà vu"},
		{name: "curly quote untouched", in: "don’t — stop", want: "don’t — stop"},
		{name: "windows-1252 mojibake", in: "donâ€™t", want: "don’t"},
		{name: "latin-1 mojibake", in: "cafÃ©", want: "café"},
		{name: "double encoded", in: "cafÃƒÂ©", want: "café"},
		{name: "crlf", in: "a\r\nb", want: "a\nb"},
		{name: "nfc", in: "e\u0301", want: "\u00e9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Fix(tt.in))
		})
	}
}

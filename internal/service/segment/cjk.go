package segment

import (
	"strings"

	"golang.org/x/text/unicode/runenames"
)

// ContainsChinese сообщает, есть ли в s хотя бы один символ, чьё имя в Unicode
// содержит "CJK". Символы без имени пропускаются.
func ContainsChinese(s string) bool {
	for _, r := range s {
		name := runenames.Name(r)
		if name == "" {
			continue
		}
		if strings.Contains(name, "CJK") {
			return true
		}
	}
	return false
}

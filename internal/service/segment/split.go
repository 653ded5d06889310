package segment

import "strings"

type splitTask struct {
	text       string
	delimiters []string
}

// Split делит text по первому разделителю, затем каждый кусок по оставшимся,
// и возвращает плоский список в порядке слева направо.
// Без разделителей возвращает [text].
func Split(text string, delimiters []string) []string {
	if len(delimiters) == 0 {
		return []string{text}
	}

	var out []string
	// Стек вместо рекурсии: задачи кладём в обратном порядке, чтобы
	// обход шёл слева направо, как при рекурсивном разборе.
	stack := []splitTask{{text: text, delimiters: delimiters}}
	for len(stack) > 0 {
		task := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		parts := strings.Split(task.text, task.delimiters[0])
		rest := task.delimiters[1:]
		if len(rest) == 0 {
			out = append(out, parts...)
			continue
		}
		for i := len(parts) - 1; i >= 0; i-- {
			stack = append(stack, splitTask{text: parts[i], delimiters: rest})
		}
	}
	return out
}

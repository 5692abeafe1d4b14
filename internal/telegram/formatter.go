package telegram

import (
	"fmt"
	"html"
	"strings"

	"github.com/careerlogy/careerlogy-ai/internal/domain"
	"github.com/careerlogy/careerlogy-ai/internal/prompt"
)

// FormatProgress - шаги по порядку, заголовок из каталога промптов.
func FormatProgress(p *domain.CareerProgress, catalog *prompt.Catalog) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "<b>%s</b> (%s)\n", html.EscapeString(p.CareerTitle), html.EscapeString(p.Qualification))

	if p.Status != "" {
		fmt.Fprintf(&sb, "Status: %s\n", p.Status)
	}

	for _, s := range p.Steps {
		name := domain.StepKey(s.Index)
		if catalog != nil {
			name = catalog.StepName(s.Index)
		}
		fmt.Fprintf(&sb, "\n<b>Step %d: %s</b>\n%s\n", s.Index+1, html.EscapeString(name), html.EscapeString(s.Text))
	}

	if !p.IsComplete() {
		fmt.Fprintf(&sb, "\n<i>%d of %d steps ready</i>", len(p.Steps), domain.StepCount)
	}
	return sb.String()
}

func FormatAnswer(res *domain.ChatResult) string {
	return html.EscapeString(res.Answer)
}

func SplitMessage(text string, maxLen int) []string {
	if len(text) <= maxLen {
		return []string{text}
	}

	var messages []string
	for len(text) > 0 {
		if len(text) <= maxLen {
			messages = append(messages, text)
			break
		}

		splitPoint := findSafeSplitPoint(text, maxLen)
		if splitPoint <= 0 || splitPoint > len(text) {
			splitPoint = maxLen
		}

		messages = append(messages, text[:splitPoint])
		text = text[splitPoint:]
	}

	return messages
}

func findSafeSplitPoint(text string, maxLen int) int {
	// ищем пробел или перевод строки, не ломая HTML-теги
	for i := maxLen - 1; i > maxLen/2; i-- {
		if i >= len(text) {
			continue
		}
		if isInsideHTMLTag(text, i) {
			continue
		}
		if text[i] == '\n' || text[i] == ' ' {
			return i + 1
		}
	}

	for i := maxLen - 1; i > 0; i-- {
		if text[i] == ' ' || text[i] == '\n' {
			return i + 1
		}
	}

	return maxLen
}

func isInsideHTMLTag(text string, pos int) bool {
	if pos >= len(text) || pos < 0 {
		return false
	}
	for i := pos; i >= 0; i-- {
		if text[i] == '>' {
			return false
		}
		if text[i] == '<' {
			return true
		}
	}
	return false
}

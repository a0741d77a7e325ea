package prompt

import "strings"

// Label is the categorical credit-score answer a model must give.
type Label string

const (
	LabelGood     Label = "Good"
	LabelBad      Label = "Bad"
	LabelStandard Label = "Standard"
)

// Labels is the closed set of answers accepted by the instruction template.
var Labels = []Label{LabelGood, LabelBad, LabelStandard}

const instructionHeader = `You are a financial risk analysis assistant.
Respond in the following format:
<reasoning>
(your reasoning here)
</reasoning>
<answer>
Choose exactly one of: "Good", "Bad", or "Standard"
</answer>

`

// Instruction wraps a formatted record in the fixed system instruction that
// asks for a reasoning section followed by one label.
func Instruction(formatted string) string {
	return instructionHeader + formatted + "\n"
}

// ExtractLabel finds the label inside the model's <answer> section. Generation
// is usually stopped at "</answer>", so a missing closing tag is accepted.
// When no answer section is present the last label mentioned anywhere in the
// text wins.
func ExtractLabel(text string) (Label, bool) {
	if i := strings.LastIndex(text, "<answer>"); i >= 0 {
		ans := text[i+len("<answer>"):]
		if j := strings.Index(ans, "</answer>"); j >= 0 {
			ans = ans[:j]
		}
		if l, ok := firstLabel(ans); ok {
			return l, true
		}
	}
	return lastLabel(text)
}

func firstLabel(s string) (Label, bool) {
	best, pos := Label(""), -1
	for _, l := range Labels {
		if i := indexWord(s, string(l)); i >= 0 && (pos < 0 || i < pos) {
			best, pos = l, i
		}
	}
	return best, pos >= 0
}

func lastLabel(s string) (Label, bool) {
	best, pos := Label(""), -1
	for _, l := range Labels {
		if i := lastIndexWord(s, string(l)); i > pos {
			best, pos = l, i
		}
	}
	return best, pos >= 0
}

func indexWord(s, w string) int {
	for off := 0; off <= len(s); {
		i := strings.Index(s[off:], w)
		if i < 0 {
			return -1
		}
		i += off
		if isWordAt(s, i, len(w)) {
			return i
		}
		off = i + 1
	}
	return -1
}

func lastIndexWord(s, w string) int {
	end := len(s)
	for end > 0 {
		i := strings.LastIndex(s[:end], w)
		if i < 0 {
			return -1
		}
		if isWordAt(s, i, len(w)) {
			return i
		}
		end = i
	}
	return -1
}

func isWordAt(s string, i, n int) bool {
	if i > 0 && isLetter(s[i-1]) {
		return false
	}
	if j := i + n; j < len(s) && isLetter(s[j]) {
		return false
	}
	return true
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

package formatter

import (
	"strings"
)

const codeFence = "```"

// StripCodeFence removes a leading and trailing ``` pair when both are present
// and trims the result. Text inside the fences is kept as is, first line
// included. Text without fences on both ends is only trimmed.
func StripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, codeFence) || !strings.HasSuffix(text, codeFence) {
		return text
	}
	if len(text) < 2*len(codeFence) {
		return ""
	}

	return strings.TrimSpace(text[len(codeFence) : len(text)-len(codeFence)])
}

// FormatCommitMessage normalizes a generated message for display and commit:
// surrounding whitespace is trimmed and Windows line endings are converted.
func FormatCommitMessage(message string) string {
	message = strings.ReplaceAll(message, "\r\n", "\n")
	return strings.TrimSpace(message)
}

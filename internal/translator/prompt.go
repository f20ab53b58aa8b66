package translator

import (
	"fmt"
	"strings"

	"github.com/leonardotrapani/hyprsubs/internal/language"
)

// BuildSystemPrompt generates the system prompt for live caption translation.
// An empty source code means the model should detect the language.
func BuildSystemPrompt(sourceCode, targetCode string) string {
	target := language.FromCode(targetCode)
	targetName := target.Name
	if target.Code == "" {
		targetName = "English"
	}

	var b strings.Builder
	b.WriteString("You are a subtitle translator for live speech.\n\n")
	if src := language.FromCode(sourceCode); src.Code != "" {
		fmt.Fprintf(&b, "Translate the user's text from %s to %s.\n", src.Name, targetName)
	} else {
		fmt.Fprintf(&b, "Translate the user's text to %s.\n", targetName)
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- The text is a speech recognition transcript and may be an unfinished sentence\n")
	b.WriteString("- Translate unfinished text as it stands, do not complete it\n")
	b.WriteString("- Keep numbers, names and times exactly as written\n")
	b.WriteString("- Output ONLY the translation, nothing else\n")
	return b.String()
}

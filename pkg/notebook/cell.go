package notebook

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

type notebookFile struct {
	Cells []cell `json:"cells"`
}

type cell struct {
	Type     string       `json:"cell_type"`
	Source   sourceText   `json:"source"`
	Metadata cellMetadata `json:"metadata"`
}

type cellMetadata struct {
	Tags []string `json:"tags"`
}

// sourceText accepts both spellings the format allows: a single string, or
// an array of lines each keeping its trailing newline.
type sourceText []string

func (s *sourceText) UnmarshalJSON(data []byte) error {
	var lines []string
	if err := json.Unmarshal(data, &lines); err == nil {
		*s = lines

		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return errors.Wrap(err, "cell source must be a string or a list of strings")
	}
	*s = sourceText{text}

	return nil
}

func (s sourceText) text() string {
	return strings.Join(s, "")
}

// neutralizeDirectives comments out every line whose first non-blank
// character is % or !, so interpreter directives survive as text without
// reaching the parser. Surrounding blank space is trimmed.
func neutralizeDirectives(text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, line := range lines {
		rest := strings.TrimLeft(line, " \t")
		if strings.HasPrefix(rest, "%") || strings.HasPrefix(rest, "!") {
			lines[i] = "#" + line
		}
	}

	return strings.Join(lines, "\n")
}

package pipeline

import (
	"fmt"
	"strings"
)

// Separator joins sections in the prior context and in the final article.
const Separator = "\n\n"

// Section is one planned part of the article. Its index in the outline is its
// position in the article.
type Section struct {
	Title         string
	WritingPrompt string
}

// SectionContent carries a section through drafting and polishing.
type SectionContent struct {
	Section Section
	// Drafted is the heading-prefixed draft, "## <title>\n\n<body>".
	Drafted string
	// Polished is empty until the section has been polished successfully.
	Polished string
}

// Text is the polished text, or the draft when polishing produced nothing.
func (sc SectionContent) Text() string {
	if sc.Polished != "" {
		return sc.Polished
	}
	return sc.Drafted
}

// formatDraft prefixes a drafted body with the section heading.
func formatDraft(title, body string) string {
	return fmt.Sprintf("## %s\n\n%s", title, body)
}

// Assemble joins every section's text with a blank line.
func Assemble(contents []SectionContent) string {
	texts := make([]string, len(contents))
	for i, c := range contents {
		texts[i] = c.Text()
	}
	return strings.Join(texts, Separator)
}

// priorContext joins the polished text of contents[:i].
func priorContext(contents []SectionContent, i int) string {
	texts := make([]string, i)
	for j := 0; j < i; j++ {
		texts[j] = contents[j].Polished
	}
	return strings.Join(texts, Separator)
}

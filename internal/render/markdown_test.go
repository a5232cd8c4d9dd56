package render

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const article = "## Intro\n\nHello\n\n## Body\n\nWorld（建议插图：流程图）"

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	r, err := NewRenderer(&buf)
	require.NoError(t, err)

	require.NoError(t, r.Render(article))
	assert.Contains(t, buf.String(), "Intro")
	assert.Contains(t, buf.String(), "World")
}

func TestNewRendererNilWriter(t *testing.T) {
	// Should not panic; defaults to os.Stdout.
	r, err := NewRenderer(nil)
	require.NoError(t, err)
	assert.NotNil(t, r)
}

func TestToHTML(t *testing.T) {
	html, err := ToHTML(article)
	require.NoError(t, err)
	assert.Contains(t, html, "<h2>Intro</h2>")
	assert.Contains(t, html, "<p>Hello</p>")
}

func TestFormat(t *testing.T) {
	out, err := Format(article, FormatMarkdown)
	require.NoError(t, err)
	assert.Equal(t, article, out)

	out, err = Format(article, FormatHTML)
	require.NoError(t, err)
	assert.Contains(t, out, "<h2>Body</h2>")

	_, err = Format(article, "pdf")
	assert.Error(t, err)
}

func TestSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.html")
	require.NoError(t, Save(path, article, FormatHTML))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<h2>Intro</h2>")
}

func TestSaveBadPath(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "missing", "out.md"), article, FormatMarkdown)
	assert.Error(t, err)
}

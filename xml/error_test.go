package xml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyntaxErrorUnclosedTag(t *testing.T) {
	malformed := "<root>\n\t<valid>ok</valid>\n\t<broken>oops\n</root>"

	_, err := Parse(malformed)
	require.Error(t, err)

	syntaxErr, ok := err.(*SyntaxError)
	require.True(t, ok, "expected *SyntaxError, got %T", err)
	assert.Greater(t, syntaxErr.Line, 0)
	assert.Contains(t, err.Error(), "line")
	t.Logf("got expected error: %v", syntaxErr)
}

func TestSyntaxErrorMismatchedEndTag(t *testing.T) {
	_, err := Parse(`<foo><bar>baz</foo>`)
	require.Error(t, err)

	syntaxErr, ok := err.(*SyntaxError)
	require.True(t, ok, "expected *SyntaxError, got %T", err)
	assert.Contains(t, []ErrorCode{ErrUnclosedTag, ErrMismatchedEndTag}, syntaxErr.Code)
	assert.Equal(t, 1, syntaxErr.Line)
	assert.Equal(t, 14, syntaxErr.Column)
	assert.Contains(t, syntaxErr.Msg, "bar")
}

func TestSyntaxErrorExcerptCaret(t *testing.T) {
	_, err := Parse(`<root><bad></root>`)
	require.Error(t, err)

	syntaxErr, ok := err.(*SyntaxError)
	require.True(t, ok, "expected *SyntaxError, got %T", err)
	assert.Contains(t, syntaxErr.Excerpt, "^")
}

func TestSyntaxErrorLongLineExcerptIsWindowed(t *testing.T) {
	padding := strings.Repeat("x", 120)
	src := `<root attr="` + padding + `">unterminated`

	_, err := Parse(src)
	require.Error(t, err)

	syntaxErr, ok := err.(*SyntaxError)
	require.True(t, ok, "expected *SyntaxError, got %T", err)
	lines := strings.SplitN(syntaxErr.Excerpt, "\n", 2)
	assert.Less(t, len(lines[0]), len(src))
}

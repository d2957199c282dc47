package xml

import (
	"fmt"
	"strings"
)

// ============================================================================
// DIAGNOSTIC ENGINE
// ============================================================================

// ErrorCode classifies a well-formedness violation. No behavior keys off of
// it internally; it exists so callers that want to distinguish error classes
// programmatically don't have to parse Msg.
type ErrorCode string

const (
	ErrInvalidCharacter              ErrorCode = "InvalidCharacter"
	ErrInvalidEncoding               ErrorCode = "InvalidEncoding"
	ErrUnexpectedToken               ErrorCode = "UnexpectedToken"
	ErrUnclosedTag                   ErrorCode = "UnclosedTag"
	ErrMismatchedEndTag              ErrorCode = "MismatchedEndTag"
	ErrMultipleRootElements          ErrorCode = "MultipleRootElements"
	ErrMissingRootElement            ErrorCode = "MissingRootElement"
	ErrUnclosedComment               ErrorCode = "UnclosedComment"
	ErrUnclosedCDATA                 ErrorCode = "UnclosedCDATA"
	ErrUnclosedProcessingInstruction ErrorCode = "UnclosedProcessingInstruction"
	ErrDuplicateAttribute            ErrorCode = "DuplicateAttribute"
	ErrUnquotedAttributeValue        ErrorCode = "UnquotedAttributeValue"
	ErrInvalidCharacterInAttribute   ErrorCode = "InvalidCharacterInAttribute"
	ErrMalformedReferenceInAttribute ErrorCode = "MalformedReferenceInAttribute"
	ErrUndefinedEntity               ErrorCode = "UndefinedEntity"
	ErrInvalidCharacterReference     ErrorCode = "InvalidCharacterReference"
	ErrInvalidXMLDeclaration         ErrorCode = "InvalidXmlDeclaration"
	ErrUnsupportedEncoding           ErrorCode = "UnsupportedEncoding"
	ErrInvalidPITarget               ErrorCode = "InvalidPITarget"
	ErrInvalidCommentContent         ErrorCode = "InvalidCommentContent"
)

// SyntaxError is the single fatal error type this package ever returns from
// Parse. It carries enough context to render a caret-pointed excerpt without
// the caller needing the original source string on hand.
type SyntaxError struct {
	Code    ErrorCode
	Msg     string
	Line    int
	Column  int
	Pos     int
	Excerpt string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("%s (line %d, column %d)\n%s", e.Msg, e.Line, e.Column, e.Excerpt)
}

// newSyntaxError builds a SyntaxError located at the given scanner position,
// rendering its excerpt from the full source text.
func newSyntaxError(source string, at scanPos, code ErrorCode, msg string) *SyntaxError {
	return &SyntaxError{
		Code:    code,
		Msg:     msg,
		Line:    at.line,
		Column:  at.col,
		Pos:     at.pos,
		Excerpt: buildExcerpt(source, at.line, at.col),
	}
}

// buildExcerpt renders a deterministic, single-line excerpt around (line,
// col): the whole line if it fits in 80 characters, otherwise a 40-character
// window on either side of the caret with ellipses marking the truncation,
// followed by a caret line pointing at col.
func buildExcerpt(source string, line, col int) string {
	text := []rune(sourceLine(source, line))

	start, end := 0, len(text)
	prefixEllipsis, suffixEllipsis := false, false
	if len(text) > 80 {
		caret := col - 1
		if caret < 0 {
			caret = 0
		}
		start = caret - 40
		if start < 0 {
			start = 0
		} else {
			prefixEllipsis = true
		}
		end = caret + 40
		if end > len(text) {
			end = len(text)
		} else {
			suffixEllipsis = true
		}
	}

	window := string(text[start:end])
	if prefixEllipsis {
		window = "..." + window
	}
	if suffixEllipsis {
		window = window + "..."
	}

	caretCol := col - 1 - start
	if prefixEllipsis {
		caretCol += 3
	}
	if caretCol < 0 {
		caretCol = 0
	}

	return window + "\n" + strings.Repeat(" ", caretCol) + "^"
}

// invalidCharMessage renders the diagnostic text for a disallowed code
// point, naming it a "control character" rather than the generic "invalid
// character" when isRestrictedChar says so — the reason that predicate
// exists alongside isChar.
func invalidCharMessage(r rune, context string) string {
	kind := "Invalid character"
	if isRestrictedChar(r) {
		kind = "Invalid control character"
	}
	return fmt.Sprintf("%s U+%04X in %s", kind, r, context)
}

// sourceLine returns the 1-based line of source, counting CRLF, lone CR and
// LF each as one line break, the same way the scanner numbers lines.
func sourceLine(source string, line int) string {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	lines := strings.Split(source, "\n")
	idx := line - 1
	if idx < 0 || idx >= len(lines) {
		return ""
	}
	return lines[idx]
}

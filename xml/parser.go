package xml

import (
	"fmt"
	"regexp"
	"strings"
)

// ============================================================================
// GRAMMAR ENGINE
// ============================================================================
// Recursive-descent realization of the XML 1.0 productions: document,
// prolog, element, content, attribute list, CDATA, comment, PI, doctype
// (recognized and discarded), misc. Every production is a method on parser
// returning (result, error); there are no panics or exceptions in the hot
// path, only ordinary Go error returns, translated to the package's single
// public failure mode at Parse's boundary.

var xmlVersionPattern = regexp.MustCompile(`^1\.\d+$`)

type refContext int

const (
	ctxContent refContext = iota
	ctxAttribute
)

type parser struct {
	sc   *scanner
	opts *options
}

// Parse parses a complete UTF-8 XML 1.0 document and returns its tree, or
// the single fatal error describing why the input is not well-formed.
func Parse(input string, opts ...Option) (*Document, error) {
	cfg := defaultOptions()
	for _, o := range opts {
		o(cfg)
	}

	input = stripBOM(input)
	p := &parser{sc: newScanner(input), opts: cfg}

	doc, err := p.parseDocument()
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func stripBOM(input string) string {
	return strings.TrimPrefix(input, "\xef\xbb\xbf")
}

func (p *parser) errAt(at scanPos, code ErrorCode, msg string) error {
	return newSyntaxError(p.sc.input, at, code, msg)
}

func (p *parser) errHere(code ErrorCode, msg string) error {
	return p.errAt(p.sc.mark(), code, msg)
}

// ----------------------------------------------------------------------
// document ::= XMLDecl? Misc* (doctypedecl Misc*)? element Misc*
// ----------------------------------------------------------------------

func (p *parser) parseDocument() (*Document, error) {
	doc := &Document{}

	if err := p.maybeParseXMLDecl(); err != nil {
		return nil, err
	}
	if err := p.parseMisc(doc); err != nil {
		return nil, err
	}
	if err := p.maybeParseDoctype(); err != nil {
		return nil, err
	}
	if err := p.parseMisc(doc); err != nil {
		return nil, err
	}

	if p.sc.atEOF() || !(p.sc.peek(0) == '<' && isNameStartChar(p.sc.peek(1))) {
		return nil, p.errHere(ErrMissingRootElement, "Missing root element")
	}

	root, err := p.parseElement()
	if err != nil {
		return nil, err
	}
	root.IsRootNode = true
	root.parent = doc
	doc.Children = append(doc.Children, root)

	if err := p.parseMisc(doc); err != nil {
		return nil, err
	}

	if !p.sc.atEOF() {
		if p.sc.peek(0) == '<' && isNameStartChar(p.sc.peek(1)) {
			return nil, p.errHere(ErrMultipleRootElements, "A document may only have one root element")
		}
		return nil, p.errHere(ErrUnexpectedToken, "Unexpected content after root element")
	}

	return doc, nil
}

// parseMisc consumes a (Comment | PI | S)* run, appending whitespace-only
// Text, Comment and ProcessingInstruction nodes to doc in document order.
func (p *parser) parseMisc(doc *Document) error {
	for {
		if ws := p.sc.consumeWhile(isWhitespace); ws != "" {
			appendText(&doc.Children, doc, ws)
			continue
		}
		if p.sc.startsWith("<!--") {
			content, err := p.parseCommentBody()
			if err != nil {
				return err
			}
			if p.opts.preserveComments {
				doc.Children = append(doc.Children, &Comment{Content: content, parent: doc})
			}
			continue
		}
		if p.sc.startsWith("<?") {
			pi, err := p.parsePI()
			if err != nil {
				return err
			}
			pi.parent = doc
			doc.Children = append(doc.Children, pi)
			continue
		}
		return nil
	}
}

// ----------------------------------------------------------------------
// XMLDecl ::= '<?xml' VersionInfo EncodingDecl? SDDecl? S? '?>'
// ----------------------------------------------------------------------

func (p *parser) maybeParseXMLDecl() error {
	mark := p.sc.mark()
	if !p.sc.match("<?xml") {
		return nil
	}
	if !isWhitespace(p.sc.peek(0)) {
		// Not an XMLDecl after all: a PI whose target happens to start with
		// "xml" (e.g. "xml-stylesheet"). Back out and let Misc parse it.
		p.sc.reset(mark)
		return nil
	}
	p.sc.consumeWhile(isWhitespace)

	if !p.sc.match("version") {
		return p.errHere(ErrInvalidXMLDeclaration, "Expected 'version' in XML declaration")
	}
	if err := p.parseEq(); err != nil {
		return err
	}
	version, err := p.parseQuotedLiteral()
	if err != nil {
		return err
	}
	if !xmlVersionPattern.MatchString(version) {
		return p.errAt(mark, ErrInvalidXMLDeclaration, fmt.Sprintf("Unsupported XML version %q", version))
	}

	sawEncoding, sawStandalone := false, false

	ws := p.sc.consumeWhile(isWhitespace)
	if p.sc.peek(0) != '?' {
		if ws == "" {
			return p.errHere(ErrInvalidXMLDeclaration, "Expected whitespace in XML declaration")
		}
		if p.sc.match("encoding") {
			if err := p.parseEq(); err != nil {
				return err
			}
			enc, err := p.parseQuotedLiteral()
			if err != nil {
				return err
			}
			if !strings.EqualFold(enc, "utf-8") && !strings.EqualFold(enc, "utf8") {
				return p.errAt(mark, ErrUnsupportedEncoding, fmt.Sprintf("Unsupported encoding %q", enc))
			}
			sawEncoding = true

			ws2 := p.sc.consumeWhile(isWhitespace)
			if p.sc.peek(0) != '?' {
				if ws2 == "" {
					return p.errHere(ErrInvalidXMLDeclaration, "Expected whitespace in XML declaration")
				}
				if err := p.parseStandalone(&sawStandalone); err != nil {
					return err
				}
			}
		} else if p.sc.match("standalone") {
			if err := p.parseStandaloneValue(&sawStandalone); err != nil {
				return err
			}
		} else {
			return p.errHere(ErrInvalidXMLDeclaration, "Unexpected pseudo-attribute in XML declaration")
		}
	}
	_ = sawEncoding

	p.sc.consumeWhile(isWhitespace)
	if !p.sc.match("?>") {
		return p.errHere(ErrInvalidXMLDeclaration, "Expected '?>' to close XML declaration")
	}
	return nil
}

func (p *parser) parseStandalone(seen *bool) error {
	if !p.sc.match("standalone") {
		return p.errHere(ErrInvalidXMLDeclaration, "Unexpected pseudo-attribute in XML declaration")
	}
	return p.parseStandaloneValue(seen)
}

func (p *parser) parseStandaloneValue(seen *bool) error {
	if *seen {
		return p.errHere(ErrInvalidXMLDeclaration, "Duplicate 'standalone' pseudo-attribute")
	}
	if err := p.parseEq(); err != nil {
		return err
	}
	val, err := p.parseQuotedLiteral()
	if err != nil {
		return err
	}
	if val != "yes" && val != "no" {
		return p.errHere(ErrInvalidXMLDeclaration, fmt.Sprintf("Invalid standalone value %q", val))
	}
	*seen = true
	return nil
}

// parseEq ::= S? '=' S?
func (p *parser) parseEq() error {
	p.sc.consumeWhile(isWhitespace)
	if !p.sc.match("=") {
		return p.errHere(ErrInvalidXMLDeclaration, "Expected '='")
	}
	p.sc.consumeWhile(isWhitespace)
	return nil
}

// parseQuotedLiteral reads a simple quoted literal with no reference
// expansion, as used by the XML declaration's pseudo-attributes.
func (p *parser) parseQuotedLiteral() (string, error) {
	q := p.sc.peek(0)
	if q != '"' && q != '\'' {
		return "", p.errHere(ErrInvalidXMLDeclaration, "Expected quoted value")
	}
	p.sc.consume()
	var sb strings.Builder
	for {
		c := p.sc.peek(0)
		if c == eof {
			return "", p.errHere(ErrInvalidXMLDeclaration, "Unterminated quoted value")
		}
		if c == q {
			p.sc.consume()
			return sb.String(), nil
		}
		sb.WriteRune(p.sc.consume())
	}
}

// ----------------------------------------------------------------------
// doctypedecl — recognized and entirely discarded, including a balanced
// internal subset, with brackets inside strings and comments ignored.
// ----------------------------------------------------------------------

func (p *parser) maybeParseDoctype() error {
	start := p.sc.mark()
	if !p.sc.match("<!DOCTYPE") {
		return nil
	}
	depth := 0
	for {
		if p.sc.atEOF() {
			return p.errAt(start, ErrUnclosedTag, "Unterminated DOCTYPE declaration")
		}
		if p.sc.startsWith("<!--") {
			if _, err := p.parseCommentBody(); err != nil {
				return err
			}
			continue
		}
		c := p.sc.peek(0)
		switch c {
		case '\'', '"':
			p.sc.consume()
			if _, ok := p.sc.scanUntil(string(c)); !ok {
				return p.errAt(start, ErrUnclosedTag, "Unterminated DOCTYPE declaration")
			}
			p.sc.consume()
		case '[':
			depth++
			p.sc.consume()
		case ']':
			depth--
			p.sc.consume()
		case '>':
			p.sc.consume()
			if depth <= 0 {
				return nil
			}
		default:
			p.sc.consume()
		}
	}
}

// ----------------------------------------------------------------------
// element ::= EmptyElemTag | STag content ETag
// ----------------------------------------------------------------------

func (p *parser) parseElement() (*Element, error) {
	if !p.sc.match("<") {
		return nil, p.errHere(ErrUnexpectedToken, "Expected '<'")
	}
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	el := newElement(name, nil)

	seenAttrAt := map[string]scanPos{}
	for {
		wsBefore := p.sc.mark()
		ws := p.sc.consumeWhile(isWhitespace)
		c := p.sc.peek(0)
		if c == '/' || c == '>' || c == eof {
			break
		}
		if ws == "" {
			return nil, p.errAt(wsBefore, ErrUnexpectedToken, "Expected whitespace before attribute")
		}

		attrPos := p.sc.mark()
		attrName, attrValue, err := p.parseAttribute()
		if err != nil {
			return nil, err
		}
		if prev, dup := seenAttrAt[attrName]; dup {
			_ = prev
			return nil, p.errAt(attrPos, ErrDuplicateAttribute, fmt.Sprintf("Duplicate attribute %q", attrName))
		}
		seenAttrAt[attrName] = attrPos
		el.Attributes.set(attrName, attrValue)
	}

	if p.sc.match("/>") {
		return el, nil
	}
	if !p.sc.match(">") {
		return nil, p.errHere(ErrUnexpectedToken, fmt.Sprintf("Expected '>' or '/>' in start tag of element %q", name))
	}

	if err := p.parseContent(el); err != nil {
		return nil, err
	}

	endTagPos := p.sc.mark()
	if !p.sc.match("</") {
		return nil, p.errAt(endTagPos, ErrUnclosedTag, fmt.Sprintf("Missing end tag for element %s", name))
	}
	endName, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if endName != name {
		return nil, p.errAt(endTagPos, ErrMismatchedEndTag, fmt.Sprintf("Missing end tag for element %s", name))
	}
	p.sc.consumeWhile(isWhitespace)
	if !p.sc.match(">") {
		return nil, p.errHere(ErrUnexpectedToken, fmt.Sprintf("Expected '>' in end tag of element %q", name))
	}
	return el, nil
}

// parseAttribute ::= Name Eq AttValue
func (p *parser) parseAttribute() (name, value string, err error) {
	name, err = p.parseName()
	if err != nil {
		return "", "", err
	}
	if err := p.parseEq(); err != nil {
		return "", "", err
	}
	value, err = p.parseAttValue()
	if err != nil {
		return "", "", err
	}
	return name, value, nil
}

// parseAttValue implements the AttValue production together with its
// normalization: '<' is forbidden, '&' must introduce a well-formed
// reference, and any literal whitespace character is replaced by a single
// space (reference-produced characters are exempt, per XML 1.0 3.3.3).
func (p *parser) parseAttValue() (string, error) {
	start := p.sc.mark()
	q := p.sc.peek(0)
	if q != '"' && q != '\'' {
		return "", p.errAt(start, ErrUnquotedAttributeValue, "Attribute value must be quoted")
	}
	p.sc.consume()

	var sb strings.Builder
	for {
		c := p.sc.peek(0)
		switch {
		case c == eof:
			return "", p.errAt(start, ErrUnclosedTag, "Unterminated attribute value")
		case c == q:
			p.sc.consume()
			return sb.String(), nil
		case c == '<':
			pos := p.sc.mark()
			return "", p.errAt(pos, ErrInvalidCharacterInAttribute, "'<' is not allowed in an attribute value")
		case c == '&':
			resolved, err := p.parseReference(ctxAttribute)
			if err != nil {
				return "", err
			}
			sb.WriteString(resolved)
		case isWhitespace(c):
			p.sc.consume()
			sb.WriteByte(' ')
		default:
			if !isChar(c) {
				pos := p.sc.mark()
				return "", p.errAt(pos, ErrInvalidCharacter, invalidCharMessage(c, "attribute value"))
			}
			sb.WriteRune(p.sc.consume())
		}
	}
}

// ----------------------------------------------------------------------
// content ::= CharData? ((element | Reference | CDSect | PI | Comment) CharData?)*
// ----------------------------------------------------------------------

func (p *parser) parseContent(el *Element) error {
	var textBuf strings.Builder

	flush := func() {
		appendText(&el.Children, el, textBuf.String())
		textBuf.Reset()
	}

	for {
		if p.sc.atEOF() {
			flush()
			return nil
		}
		c := p.sc.peek(0)

		switch {
		case c == '<':
			if p.sc.peek(1) == '/' {
				flush()
				return nil
			}
			switch {
			case p.sc.startsWith("<!--"):
				content, err := p.parseCommentBody()
				if err != nil {
					return err
				}
				if p.opts.preserveComments {
					flush()
					el.Children = append(el.Children, &Comment{Content: content, parent: el})
				}
			case p.sc.startsWith("<![CDATA["):
				body, err := p.parseCDataBody()
				if err != nil {
					return err
				}
				if p.opts.preserveCdata {
					flush()
					el.Children = append(el.Children, &CDATA{Value: body, parent: el})
				} else {
					textBuf.WriteString(body)
				}
			case p.sc.startsWith("<?"):
				pi, err := p.parsePI()
				if err != nil {
					return err
				}
				flush()
				pi.parent = el
				el.Children = append(el.Children, pi)
			default:
				flush()
				child, err := p.parseElement()
				if err != nil {
					return err
				}
				child.parent = el
				el.Children = append(el.Children, child)
			}

		case c == '&':
			resolved, err := p.parseReference(ctxContent)
			if err != nil {
				return err
			}
			textBuf.WriteString(resolved)

		case c == ']' && p.sc.peek(1) == ']' && p.sc.peek(2) == '>':
			return p.errHere(ErrUnexpectedToken, "Literal ']]>' is not allowed in element content")

		default:
			if !isChar(c) {
				pos := p.sc.mark()
				return p.errAt(pos, ErrInvalidCharacter, invalidCharMessage(c, "element content"))
			}
			textBuf.WriteRune(p.sc.consume())
		}
	}
}

// ----------------------------------------------------------------------
// Reference ::= EntityRef | CharRef
// ----------------------------------------------------------------------

func (p *parser) parseReference(ctx refContext) (string, error) {
	start := p.sc.mark()
	if !p.sc.match("&") {
		return "", p.errAt(start, ErrUnexpectedToken, "Expected '&'")
	}

	malformedCode := ErrUndefinedEntity
	if ctx == ctxAttribute {
		malformedCode = ErrMalformedReferenceInAttribute
	}

	if p.sc.peek(0) == '#' {
		p.sc.consume()
		hex := false
		if p.sc.peek(0) == 'x' || p.sc.peek(0) == 'X' {
			hex = true
			p.sc.consume()
		}
		pred := isDigit
		if hex {
			pred = isHexDigit
		}
		digits := p.sc.consumeWhile(pred)
		if digits == "" || !p.sc.match(";") {
			return "", p.errAt(start, ErrInvalidCharacterReference, "Malformed character reference")
		}
		r, err := decodeCharRef(hex, digits)
		if err != nil {
			return "", p.errAt(start, ErrInvalidCharacterReference, err.Error())
		}
		return string(r), nil
	}

	if !isNameStartChar(p.sc.peek(0)) {
		return "", p.errAt(start, malformedCode, "Malformed reference")
	}
	name, err := p.parseName()
	if err != nil {
		return "", err
	}
	if !p.sc.match(";") {
		return "", p.errAt(start, malformedCode, fmt.Sprintf("Malformed entity reference &%s", name))
	}

	if r, ok := predefinedEntity(name); ok {
		return string(r), nil
	}
	if p.opts.resolveUndefinedEntity != nil {
		if v, ok := p.opts.resolveUndefinedEntity(name); ok {
			return v, nil
		}
	}
	if p.opts.ignoreUndefinedEntities {
		return "&" + name + ";", nil
	}
	return "", p.errAt(start, ErrUndefinedEntity, fmt.Sprintf("Undefined entity &%s;", name))
}

// ----------------------------------------------------------------------
// CDSect ::= '<![CDATA[' CData ']]>'
// ----------------------------------------------------------------------

func (p *parser) parseCDataBody() (string, error) {
	start := p.sc.mark()
	p.sc.match("<![CDATA[")
	body, ok := p.sc.scanUntil("]]>")
	if !ok {
		return "", p.errAt(start, ErrUnclosedCDATA, "Unterminated CDATA section")
	}
	p.sc.match("]]>")
	for _, r := range body {
		if !isChar(r) {
			return "", p.errAt(start, ErrInvalidCharacter, invalidCharMessage(r, "CDATA section"))
		}
	}
	return body, nil
}

// ----------------------------------------------------------------------
// Comment ::= '<!--' ((Char - '-') | ('-' (Char - '-')))* '-->'
// ----------------------------------------------------------------------

func (p *parser) parseCommentBody() (string, error) {
	start := p.sc.mark()
	p.sc.match("<!--")
	body, ok := p.sc.scanUntil("-->")
	if !ok {
		return "", p.errAt(start, ErrUnclosedComment, "Unterminated comment")
	}
	p.sc.match("-->")
	if strings.Contains(body, "--") || strings.HasSuffix(body, "-") {
		return "", p.errAt(start, ErrInvalidCommentContent, "Comment must not contain '--' or end in '-'")
	}
	for _, r := range body {
		if !isChar(r) {
			return "", p.errAt(start, ErrInvalidCharacter, invalidCharMessage(r, "comment"))
		}
	}
	return body, nil
}

// ----------------------------------------------------------------------
// PI ::= '<?' PITarget (S content)? '?>'
// ----------------------------------------------------------------------

func (p *parser) parsePI() (*ProcessingInstruction, error) {
	start := p.sc.mark()
	p.sc.match("<?")
	target, err := p.parseName()
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(target, "xml") {
		return nil, p.errAt(start, ErrInvalidPITarget, "Processing instruction target must not be 'xml'")
	}

	ws := p.sc.consumeWhile(isWhitespace)
	if ws == "" && p.sc.peek(0) != '?' {
		return nil, p.errHere(ErrUnexpectedToken, fmt.Sprintf("Expected whitespace or '?>' after PI target %q", target))
	}
	content, ok := p.sc.scanUntil("?>")
	if !ok {
		return nil, p.errAt(start, ErrUnclosedProcessingInstruction, "Unterminated processing instruction")
	}
	p.sc.match("?>")
	for _, r := range content {
		if !isChar(r) {
			return nil, p.errAt(start, ErrInvalidCharacter, invalidCharMessage(r, "processing instruction"))
		}
	}
	return &ProcessingInstruction{Target: target, Content: content}, nil
}

// ----------------------------------------------------------------------
// Name ::= NameStartChar (NameChar)*
// ----------------------------------------------------------------------

func (p *parser) parseName() (string, error) {
	start := p.sc.mark()
	c := p.sc.peek(0)
	if !isNameStartChar(c) {
		return "", p.errAt(start, ErrUnexpectedToken, "Expected a name")
	}
	var sb strings.Builder
	sb.WriteRune(p.sc.consume())
	for isNameChar(p.sc.peek(0)) {
		sb.WriteRune(p.sc.consume())
	}
	return sb.String(), nil
}

package xml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arturoeanton/xml5/xml"
)

func TestParseSimpleElement(t *testing.T) {
	doc, err := xml.Parse(`<greeting>hello</greeting>`)
	assert.NoError(t, err)

	root := doc.Root()
	assert.Equal(t, "greeting", root.Name)
	assert.Equal(t, "hello", xml.Text(root))
}

func TestParseNestedElementsAndAttributes(t *testing.T) {
	doc, err := xml.Parse(`<catalog><book id="1" lang="en">Go</book><book id="2">Rust</book></catalog>`)
	assert.NoError(t, err)

	books := xml.FindAll(doc.Root(), "book")
	assert.Len(t, books, 2)

	id, ok := books[0].Attributes.Get("id")
	assert.True(t, ok)
	assert.Equal(t, "1", id)
	assert.Equal(t, "Go", xml.Text(books[0]))
}

func TestParseSelfClosingElement(t *testing.T) {
	doc, err := xml.Parse(`<root><br/><hr /></root>`)
	assert.NoError(t, err)
	assert.Len(t, doc.Root().Children, 2)
}

func TestParseXMLDeclaration(t *testing.T) {
	doc, err := xml.Parse(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?><root/>`)
	assert.NoError(t, err)
	assert.Equal(t, "root", doc.Root().Name)
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	_, err := xml.Parse(`<?xml version="2.0"?><root/>`)
	assert.Error(t, err)
}

func TestParseRejectsNonUTF8Encoding(t *testing.T) {
	_, err := xml.Parse(`<?xml version="1.0" encoding="ISO-8859-1"?><root/>`)
	assert.Error(t, err)
	syntaxErr, ok := err.(*xml.SyntaxError)
	assert.True(t, ok)
	assert.Equal(t, xml.ErrUnsupportedEncoding, syntaxErr.Code)
}

func TestParsePITargetXMLRejected(t *testing.T) {
	_, err := xml.Parse(`<?xml-stylesheet type="text/xsl" href="s.xsl"?><root/>`)
	assert.NoError(t, err)

	_, err2 := xml.Parse("<root><?xml bad?></root>")
	assert.Error(t, err2)
}

func TestParseComment(t *testing.T) {
	doc, err := xml.Parse(`<!-- top level --><root><!-- inner --></root>`)
	assert.NoError(t, err)
	root := doc.Root()
	_, isComment := root.Children[0].(*xml.Comment)
	assert.True(t, isComment)
}

func TestParseCommentRejectsDoubleHyphen(t *testing.T) {
	_, err := xml.Parse(`<root><!-- a--b --></root>`)
	assert.Error(t, err)
}

func TestParseCDATADefaultFoldsIntoText(t *testing.T) {
	doc, err := xml.Parse(`<root><![CDATA[<not a tag>]]></root>`)
	assert.NoError(t, err)
	assert.Equal(t, "<not a tag>", xml.Text(doc.Root()))
}

func TestParseCDATAPreservedAsDistinctNode(t *testing.T) {
	doc, err := xml.Parse(`<root><![CDATA[raw]]></root>`, xml.PreserveCDATA())
	assert.NoError(t, err)
	cdata, ok := doc.Root().Children[0].(*xml.CDATA)
	assert.True(t, ok)
	assert.Equal(t, "raw", cdata.Value)
}

func TestParsePredefinedEntities(t *testing.T) {
	doc, err := xml.Parse(`<root>a &amp; b &lt; c</root>`)
	assert.NoError(t, err)
	assert.Equal(t, "a & b < c", xml.Text(doc.Root()))
}

func TestParseNumericCharRefs(t *testing.T) {
	doc, err := xml.Parse(`<root>&#65;&#x42;</root>`)
	assert.NoError(t, err)
	assert.Equal(t, "AB", xml.Text(doc.Root()))
}

func TestParseUndefinedEntityIsError(t *testing.T) {
	_, err := xml.Parse(`<root>&nbsp;</root>`)
	assert.Error(t, err)
	syntaxErr, ok := err.(*xml.SyntaxError)
	assert.True(t, ok)
	assert.Equal(t, xml.ErrUndefinedEntity, syntaxErr.Code)
}

func TestParseUndefinedEntityIgnoredWithOption(t *testing.T) {
	doc, err := xml.Parse(`<root>&nbsp;</root>`, xml.IgnoreUndefinedEntities())
	assert.NoError(t, err)
	assert.Equal(t, "&nbsp;", xml.Text(doc.Root()))
}

func TestParseUndefinedEntityResolverHook(t *testing.T) {
	doc, err := xml.Parse(`<root>&copyright;</root>`, xml.WithUndefinedEntityResolver(func(name string) (string, bool) {
		if name == "copyright" {
			return "(c)", true
		}
		return "", false
	}))
	assert.NoError(t, err)
	assert.Equal(t, "(c)", xml.Text(doc.Root()))
}

func TestParseAttributeValueWhitespaceNormalization(t *testing.T) {
	doc, err := xml.Parse("<root attr=\"a\tb\nc\"/>")
	assert.NoError(t, err)
	v, _ := doc.Root().Attributes.Get("attr")
	assert.Equal(t, "a b c", v)
}

func TestParseAttributeValueReferenceWhitespaceNotNormalized(t *testing.T) {
	doc, err := xml.Parse(`<root attr="a&#9;b"/>`)
	assert.NoError(t, err)
	v, _ := doc.Root().Attributes.Get("attr")
	assert.Equal(t, "a\tb", v)
}

func TestParseDuplicateAttributeIsError(t *testing.T) {
	_, err := xml.Parse(`<root id="1" id="2"/>`)
	assert.Error(t, err)
	syntaxErr, ok := err.(*xml.SyntaxError)
	assert.True(t, ok)
	assert.Equal(t, xml.ErrDuplicateAttribute, syntaxErr.Code)
}

func TestParseUnquotedAttributeValueIsError(t *testing.T) {
	_, err := xml.Parse(`<root id=1/>`)
	assert.Error(t, err)
}

func TestParseLessThanInAttributeValueIsError(t *testing.T) {
	_, err := xml.Parse(`<root id="a<b"/>`)
	assert.Error(t, err)
}

func TestParseMismatchedEndTag(t *testing.T) {
	_, err := xml.Parse(`<foo><bar>baz</foo>`)
	assert.Error(t, err)
	syntaxErr, ok := err.(*xml.SyntaxError)
	assert.True(t, ok)
	assert.Equal(t, 1, syntaxErr.Line)
	assert.Equal(t, 14, syntaxErr.Column)
}

func TestParseMissingRootElement(t *testing.T) {
	_, err := xml.Parse(`   `)
	assert.Error(t, err)
	syntaxErr, ok := err.(*xml.SyntaxError)
	assert.True(t, ok)
	assert.Equal(t, xml.ErrMissingRootElement, syntaxErr.Code)
}

func TestParseMultipleRootElementsIsError(t *testing.T) {
	_, err := xml.Parse(`<a/><b/>`)
	assert.Error(t, err)
	syntaxErr, ok := err.(*xml.SyntaxError)
	assert.True(t, ok)
	assert.Equal(t, xml.ErrMultipleRootElements, syntaxErr.Code)
}

func TestParseStrayCDATACloseSequenceInContentIsError(t *testing.T) {
	_, err := xml.Parse(`<root>a]]>b</root>`)
	assert.Error(t, err)
}

func TestParseDoctypeIsRecognizedAndDiscarded(t *testing.T) {
	doc, err := xml.Parse(`<!DOCTYPE root [<!ENTITY foo "bar">]><root/>`)
	assert.NoError(t, err)
	assert.Equal(t, "root", doc.Root().Name)
}

func TestParseDoctypeWithBracketInsideStringIsIgnored(t *testing.T) {
	doc, err := xml.Parse(`<!DOCTYPE root SYSTEM "has]bracket.dtd"><root/>`)
	assert.NoError(t, err)
	assert.Equal(t, "root", doc.Root().Name)
}

func TestParseCRLFNormalizedToLF(t *testing.T) {
	doc, err := xml.Parse("<root>line1\r\nline2\rline3</root>")
	assert.NoError(t, err)
	assert.Equal(t, "line1\nline2\nline3", xml.Text(doc.Root()))
}

func TestParseTextAndCDATACoalesceIntoOneNode(t *testing.T) {
	doc, err := xml.Parse(`<root>a<![CDATA[b]]>c</root>`)
	assert.NoError(t, err)
	assert.Len(t, doc.Root().Children, 1)
	assert.Equal(t, "abc", xml.Text(doc.Root()))
}

func TestParseSuppressCommentsOption(t *testing.T) {
	doc, err := xml.Parse(`<root><!-- gone --><kept/></root>`, xml.SuppressComments())
	assert.NoError(t, err)
	assert.Len(t, doc.Root().Children, 1)
	_, ok := doc.Root().Children[0].(*xml.Element)
	assert.True(t, ok)
}

func TestParseWalkVisitsEveryNode(t *testing.T) {
	doc, err := xml.Parse(`<root><a/><b><c/></b></root>`)
	assert.NoError(t, err)

	var names []string
	xml.Walk(doc.Root(), func(n xml.Node) bool {
		if el, ok := n.(*xml.Element); ok {
			names = append(names, el.Name)
		}
		return true
	})
	assert.Equal(t, []string{"root", "a", "b", "c"}, names)
}

func TestParseInvalidControlCharacterIsError(t *testing.T) {
	_, err := xml.Parse("<root>\x01</root>")
	assert.Error(t, err)
	syntaxErr, ok := err.(*xml.SyntaxError)
	assert.True(t, ok)
	assert.Equal(t, xml.ErrInvalidCharacter, syntaxErr.Code)
	assert.Contains(t, syntaxErr.Msg, "control character")
}

func TestParseInvalidControlCharacterInCommentIsError(t *testing.T) {
	_, err := xml.Parse("<root><!-- \x01 --></root>")
	assert.Error(t, err)
	syntaxErr, ok := err.(*xml.SyntaxError)
	assert.True(t, ok)
	assert.Equal(t, xml.ErrInvalidCharacter, syntaxErr.Code)
	assert.Contains(t, syntaxErr.Msg, "control character")
	assert.Contains(t, syntaxErr.Msg, "comment")
}

func TestParseInvalidControlCharacterInProcessingInstructionIsError(t *testing.T) {
	_, err := xml.Parse("<root><?pi \x01?></root>")
	assert.Error(t, err)
	syntaxErr, ok := err.(*xml.SyntaxError)
	assert.True(t, ok)
	assert.Equal(t, xml.ErrInvalidCharacter, syntaxErr.Code)
	assert.Contains(t, syntaxErr.Msg, "control character")
	assert.Contains(t, syntaxErr.Msg, "processing instruction")
}

package books

import (
	"fmt"
	"strings"
	"unicode/utf8"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/encoding/unicode"
)

// Chapter output formats.
const (
	FormatRaw      = "raw"
	FormatText     = "text"
	FormatMarkdown = "markdown"
)

// ValidFormat reports whether f is a chapter format Render understands.
func ValidFormat(f string) bool {
	switch f {
	case "", FormatRaw, FormatText, FormatMarkdown:
		return true
	}
	return false
}

// DecodeChapter turns raw document bytes into text. The bytes must be valid
// UTF-8; a leading byte order mark is dropped.
func DecodeChapter(raw []byte) (string, error) {
	if !utf8.Valid(raw) {
		return "", ErrDecode
	}
	out, err := unicode.UTF8BOM.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return string(out), nil
}

// Render converts decoded chapter markup into the requested format.
func Render(content, format string) (string, error) {
	switch format {
	case "", FormatRaw:
		return content, nil
	case FormatText:
		return visibleText(content)
	case FormatMarkdown:
		md, err := htmltomarkdown.ConvertString(content)
		if err != nil {
			return "", fmt.Errorf("convert to markdown: %w", err)
		}
		return md, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

const blockElements = "address, article, aside, blockquote, br, dd, div, dl, dt, figcaption, figure, " +
	"footer, h1, h2, h3, h4, h5, h6, header, hr, li, nav, ol, p, pre, section, table, td, th, tr, ul"

// visibleText returns the body text with scripts and styles removed and
// whitespace collapsed.
func visibleText(content string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse chapter: %w", err)
	}
	doc.Find("script, style, noscript").Remove()
	doc.Find(blockElements).AfterHtml("\n")
	text := doc.Find("body").Text()
	return strings.Join(strings.Fields(text), " "), nil
}

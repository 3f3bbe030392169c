package openbook

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	domainerrors "github.com/listenupapp/listenup-timeline/internal/errors"
)

// bDataRegex locates the object literal assigned to window.bData.
var bDataRegex = regexp.MustCompile(`window\.bData\s*=\s*\{`)

// ExtractFromHTML finds the window.bData assignment in the loan web page and decodes
// it as an openbook. Decoding stops at the end of the object literal.
func ExtractFromHTML(r io.Reader) (*Openbook, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeValidation, "invalid loan page html")
	}

	var found string
	var walk func(n *html.Node) bool
	walk = func(n *html.Node) bool {
		if n.Type == html.ElementNode && n.Data == "script" {
			var buf strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				if c.Type == html.TextNode {
					buf.WriteString(c.Data)
				}
			}
			text := buf.String()
			if loc := bDataRegex.FindStringIndex(text); loc != nil {
				found = text[loc[1]-1:]
				return true
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if walk(c) {
				return true
			}
		}
		return false
	}

	if !walk(doc) {
		return nil, domainerrors.NotFound("window.bData not found in loan page")
	}

	return Decode(strings.NewReader(found))
}

// Parse decodes data as an openbook JSON document, or as a loan page when it
// starts with markup.
func Parse(data []byte) (*Openbook, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, domainerrors.Validation("openbook document is empty")
	}
	if trimmed[0] == '<' {
		return ExtractFromHTML(bytes.NewReader(trimmed))
	}
	return Decode(bytes.NewReader(trimmed))
}

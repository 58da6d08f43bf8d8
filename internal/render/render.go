// Package render turns blog post Markdown into HTML and estimates how long
// a post takes to read.
package render

import (
	"bytes"
	"strings"
	"unicode"

	"github.com/conneroisu/coachsite/internal/content"
	"github.com/conneroisu/coachsite/internal/errors"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"golang.org/x/net/html"
)

// WordsPerMinute is the reading speed used for read time estimates.
const WordsPerMinute = 200

// Post is a blog post with its body rendered to HTML.
type Post struct {
	content.BlogPost
	ContentHTML string `json:"contentHtml"`
}

// Renderer converts Markdown to HTML. Raw HTML in the source is omitted.
// A Renderer is safe for concurrent use.
type Renderer struct {
	md goldmark.Markdown
}

// New creates a Renderer with GitHub flavoured Markdown and heading ids.
func New() *Renderer {
	return &Renderer{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				gmhtml.WithHardWraps(),
			),
		),
	}
}

// Markdown renders src to HTML.
func (r *Renderer) Markdown(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", errors.WrapInternal(err, errors.ErrCodeInternalError, "failed to render markdown")
	}
	return buf.String(), nil
}

// Post renders p's content. When p has no readTime one is estimated from
// the rendered text.
func (r *Renderer) Post(p content.BlogPost) (*Post, error) {
	body, err := r.Markdown(p.Content)
	if err != nil {
		return nil, err
	}
	if p.ReadTime <= 0 {
		text, err := PlainText(body)
		if err != nil {
			return nil, err
		}
		p.ReadTime = ReadTime(WordCount(text))
	}
	return &Post{BlogPost: p, ContentHTML: body}, nil
}

// PlainText extracts the visible text of an HTML fragment.
func PlainText(fragment string) (string, error) {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", errors.WrapInternal(err, errors.ErrCodeInternalError, "failed to parse html")
	}

	var text strings.Builder
	var traverse func(*html.Node)
	traverse = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
			text.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return text.String(), nil
}

// WordCount counts runs of letters or digits.
func WordCount(text string) int {
	return len(strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r) && r != '\'' && r != '’'
	}))
}

// ReadTime converts a word count into whole minutes, never less than one.
func ReadTime(words int) int {
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

package markdown

import (
	"bytes"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
	"go.abhg.dev/goldmark/frontmatter"
)

// Document is a rendered markdown file.
type Document struct {
	HTML template.HTML
	Meta map[string]any
}

// String returns a frontmatter value, or "" when missing or not a string.
func (d *Document) String(key string) string {
	s, _ := d.Meta[key].(string)
	return s
}

type Parser struct {
	md goldmark.Markdown
}

func NewParser() *Parser {
	return &Parser{
		md: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
				&frontmatter.Extender{},
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
			goldmark.WithRendererOptions(
				goldmarkhtml.WithHardWraps(),
			),
		),
	}
}

// Parse renders source to HTML. Raw HTML in source is escaped, so the result
// is safe to embed in pages.
func (p *Parser) Parse(source []byte) (*Document, error) {
	ctx := parser.NewContext()
	var buf bytes.Buffer

	err := p.md.Convert(source, &buf, parser.WithContext(ctx))
	if err != nil {
		return nil, err
	}

	meta := make(map[string]any)
	if data := frontmatter.Get(ctx); data != nil {
		err = data.Decode(&meta)
		if err != nil {
			meta = make(map[string]any)
		}
	}

	return &Document{
		HTML: template.HTML(buf.String()),
		Meta: meta,
	}, nil
}

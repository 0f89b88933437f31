package handlers

import (
	"bytes"
	"fmt"
	"html/template"
	"path"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	ghhtml "github.com/yuin/goldmark/renderer/html"
)

// markdownRenderer turns markdown files into standalone HTML pages.
type markdownRenderer struct {
	parser   goldmark.Markdown
	template *template.Template
}

// previewPageData holds template data for rendered previews.
type previewPageData struct {
	Title   string
	Path    string
	Content template.HTML
}

func newMarkdownRenderer() *markdownRenderer {
	tmpl := template.Must(template.New("preview").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    body {
      font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', sans-serif;
      margin: 0 auto;
      padding: 2rem;
      max-width: 900px;
      line-height: 1.7;
    }
    header {
      margin-bottom: 2rem;
      border-bottom: 1px solid #e2e8f0;
      padding-bottom: 1rem;
    }
    pre {
      background: #f1f5f9;
      padding: 1rem;
      overflow-x: auto;
      border-radius: 8px;
    }
    code {
      font-family: 'SFMono-Regular', Consolas, 'Liberation Mono', Menlo, monospace;
    }
    blockquote {
      border-left: 4px solid #94a3b8;
      padding-left: 1rem;
      margin-left: 0;
      color: #475569;
    }
    .meta {
      color: #64748b;
      font-size: 0.95rem;
    }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <p class="meta">{{.Path}}</p>
  </header>
  <article>{{.Content}}</article>
</body>
</html>`))

	return &markdownRenderer{
		parser: goldmark.New(
			goldmark.WithExtensions(
				extension.GFM,
				extension.Typographer,
			),
			goldmark.WithRendererOptions(
				ghhtml.WithUnsafe(),
			),
			goldmark.WithParserOptions(
				parser.WithAutoHeadingID(),
			),
		),
		template: tmpl,
	}
}

func (m *markdownRenderer) render(title, relPath string, content []byte) ([]byte, error) {
	var body bytes.Buffer
	if err := m.parser.Convert(content, &body); err != nil {
		return nil, fmt.Errorf("convert markdown: %w", err)
	}

	var page bytes.Buffer
	err := m.template.Execute(&page, previewPageData{
		Title:   title,
		Path:    relPath,
		Content: template.HTML(body.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("execute preview template: %w", err)
	}
	return page.Bytes(), nil
}

func isMarkdown(p string) bool {
	switch strings.ToLower(path.Ext(p)) {
	case ".md", ".markdown":
		return true
	}
	return false
}

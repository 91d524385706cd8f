// Package render converts raw markdown bodies into the dual plain/HTML
// payload carried by archived messages.
package render

import (
	"bytes"
	"fmt"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Result holds the two renderings of one message body. When the HTML
// conversion fails the result is degraded: HTML is empty, Degraded is set
// and Err carries the conversion failure for logging. A degraded result
// is still usable; the plain text is always present.
type Result struct {
	Plain    string
	HTML     string
	Degraded bool
	Err      error
}

// Renderer converts markdown to HTML with GitHub-flavored extensions.
type Renderer struct {
	convert func(src []byte, w io.Writer) error
}

// New creates a Renderer with GFM extensions enabled.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	return &Renderer{convert: func(src []byte, w io.Writer) error {
		return md.Convert(src, w)
	}}
}

// Render produces both renderings of body. Conversion failure never
// propagates: the returned result degrades to plain text only.
func (r *Renderer) Render(body string) Result {
	res := Result{Plain: body}

	html, err := r.toHTML(body)
	if err != nil {
		res.Degraded = true
		res.Err = err
		return res
	}

	res.HTML = html
	return res
}

// toHTML runs the markdown conversion, turning renderer panics into
// errors so a single bad input cannot abort the run.
func (r *Renderer) toHTML(body string) (html string, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("markdown renderer panic: %v", rec)
		}
	}()

	var buf bytes.Buffer
	if err := r.convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return buf.String(), nil
}

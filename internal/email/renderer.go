package email

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"text/template"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"
)

const maxTemplateSize = 1 << 20

// Renderer fetches a template by URL and executes it against row variables.
//
// Templates use text/template syntax ({{.First_Name}}). Missing variables are
// an error rather than rendering as "<no value>". Templates whose URL path ends
// in .md are additionally converted from markdown to HTML.
type Renderer struct {
	client *http.Client
	md     goldmark.Markdown
	log    *zap.Logger
}

func NewRenderer(client *http.Client, log *zap.Logger) *Renderer {
	if client == nil {
		client = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{
		client: client,
		md:     goldmark.New(),
		log:    log,
	}
}

// Render downloads, validates and executes the template at templateURL.
func (r *Renderer) Render(ctx context.Context, templateURL string, vars map[string]any) (Content, error) {
	r.log.Debug("fetching template", zap.String("url", templateURL))

	source, err := r.fetch(ctx, templateURL)
	if err != nil {
		return Content{}, errors.Join(ErrTemplateFetch, err)
	}

	tmpl, err := Parse(source)
	if err != nil {
		return Content{}, err
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, vars); err != nil {
		return Content{}, errors.Join(ErrTemplateRender, err)
	}

	if !isMarkdown(templateURL) {
		return Content{Body: body.String()}, nil
	}

	var html bytes.Buffer
	if err := r.md.Convert(body.Bytes(), &html); err != nil {
		return Content{}, errors.Join(ErrTemplateRender, err)
	}

	return Content{Body: html.String(), HTML: true}, nil
}

// Parse validates template source and returns the compiled template.
func Parse(source string) (*template.Template, error) {
	tmpl, err := template.New("message").Option("missingkey=error").Parse(source)
	if err != nil {
		return nil, errors.Join(ErrTemplateSyntax, err)
	}
	return tmpl, nil
}

func (r *Renderer) fetch(ctx context.Context, templateURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, templateURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("GET %s: status %d", templateURL, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize))
	if err != nil {
		return "", err
	}

	return string(raw), nil
}

func isMarkdown(templateURL string) bool {
	u, err := url.Parse(templateURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(path.Ext(u.Path), ".md")
}

// Package render turns an assembled digest into a static HTML page.
// It traverses the digest read-only and never re-scores or filters.
package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/lmeyer/fedidigest/pkg/digest"
	"github.com/lmeyer/fedidigest/pkg/timeline"
)

//go:embed templates/digest.html.tmpl
var templateFS embed.FS

// Renderer renders digest pages for one Mastodon instance.
type Renderer struct {
	tmpl    *template.Template
	baseURL string
}

// New parses the embedded template. baseURL is the viewer's home
// instance, used for "open at home" links.
func New(baseURL string) (*Renderer, error) {
	tmpl, err := template.New("digest.html.tmpl").Funcs(template.FuncMap{
		"content":     postContent,
		"media":       mediaHTML,
		"displayName": displayNameHTML,
		"homeLink":    homeLink,
	}).ParseFS(templateFS, "templates/digest.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &Renderer{tmpl: tmpl, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

type pageData struct {
	Digest  *digest.Digest
	BaseURL string
}

// Render writes the digest page to w.
func (r *Renderer) Render(w io.Writer, d *digest.Digest) error {
	data := pageData{Digest: d, BaseURL: r.baseURL}
	if err := r.tmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render digest: %w", err)
	}
	return nil
}

// postContent passes through the status HTML the instance already
// sanitized. Statuses are the only trusted HTML on the page.
func postContent(p digest.ScoredPost) template.HTML {
	return template.HTML(p.Status.Content)
}

// mediaHTML renders attachments by type, mirroring what the digest
// page shows for images, videos, and gifvs.
func mediaHTML(p digest.ScoredPost) template.HTML {
	var b strings.Builder
	for _, m := range p.Status.MediaAttachments {
		url := template.HTMLEscapeString(m.URL)
		desc := template.HTMLEscapeString(m.Description)
		switch m.Type {
		case "image":
			fmt.Fprintf(&b, `<div class="media"><img src="%s" alt="%s" loading="lazy"></div>`, url, desc)
		case "video":
			fmt.Fprintf(&b, `<div class="media"><video src="%s" controls width="100%%"></video></div>`, url)
		case "gifv":
			fmt.Fprintf(&b, `<div class="media"><video src="%s" autoplay loop muted playsinline width="100%%"></video></div>`, url)
		}
	}
	return template.HTML(b.String())
}

// displayNameHTML substitutes :shortcode: custom emoji with inline
// images. Everything else is escaped.
func displayNameHTML(a timeline.Account) template.HTML {
	name := template.HTMLEscapeString(a.DisplayName)
	for _, e := range a.Emojis {
		tag := fmt.Sprintf(`<img class="emoji" alt="%s" src="%s">`,
			template.HTMLEscapeString(e.Shortcode), template.HTMLEscapeString(e.URL))
		name = strings.ReplaceAll(name, ":"+e.Shortcode+":", tag)
	}
	return template.HTML(name)
}

// homeLink builds the post's URL on the viewer's own instance.
func homeLink(baseURL string, p digest.ScoredPost) string {
	return fmt.Sprintf("%s/@%s/%s", baseURL, p.Status.Account.Acct, p.Status.ID)
}

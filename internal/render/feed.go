package render

import (
	"bytes"
	"encoding/xml"
	"time"
)

const atomNS = "http://www.w3.org/2005/Atom"

type atomFeed struct {
	XMLName  xml.Name    `xml:"feed"`
	Xmlns    string      `xml:"xmlns,attr"`
	Title    string      `xml:"title"`
	Subtitle string      `xml:"subtitle,omitempty"`
	ID       string      `xml:"id"`
	Updated  string      `xml:"updated"`
	Links    []atomLink  `xml:"link"`
	Author   *atomPerson `xml:"author,omitempty"`
	Entries  []atomEntry `xml:"entry"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr,omitempty"`
	Type string `xml:"type,attr,omitempty"`
}

type atomPerson struct {
	Name string `xml:"name"`
}

type atomCategory struct {
	Term  string `xml:"term,attr"`
	Label string `xml:"label,attr,omitempty"`
}

type atomText struct {
	Type string `xml:"type,attr,omitempty"`
	Body string `xml:",chardata"`
}

type atomEntry struct {
	Title      string         `xml:"title"`
	ID         string         `xml:"id"`
	Link       atomLink       `xml:"link"`
	Published  string         `xml:"published"`
	Updated    string         `xml:"updated"`
	Summary    *atomText      `xml:"summary,omitempty"`
	Content    atomText       `xml:"content"`
	Categories []atomCategory `xml:"category"`
}

// feed renders an Atom feed of the newest FeedLimit posts. The feed's
// updated stamp is the newest post date so output never depends on the clock.
func (r *Renderer) feed(posts []*postData) ([]byte, error) {
	limit := r.opts.FeedLimit
	if limit <= 0 || limit > len(posts) {
		limit = len(posts)
	}

	updated := time.Unix(0, 0).UTC()
	if len(posts) > 0 {
		updated = posts[0].Date
	}

	f := atomFeed{
		Xmlns:    atomNS,
		Title:    r.opts.Title,
		Subtitle: r.opts.Description,
		ID:       r.absURL(""),
		Updated:  updated.Format(time.RFC3339),
		Links: []atomLink{
			{Href: r.absURL("feed.xml"), Rel: "self", Type: "application/atom+xml"},
			{Href: r.absURL(""), Rel: "alternate", Type: "text/html"},
		},
	}
	if r.opts.Author != "" {
		f.Author = &atomPerson{Name: r.opts.Author}
	}

	for _, p := range posts[:limit] {
		e := atomEntry{
			Title:     p.Title,
			ID:        r.absURL(p.dir),
			Link:      atomLink{Href: r.absURL(p.dir), Rel: "alternate", Type: "text/html"},
			Published: p.Date.Format(time.RFC3339),
			Updated:   p.Date.Format(time.RFC3339),
			Content:   atomText{Type: "html", Body: string(p.Content)},
		}
		if p.Excerpt != "" {
			e.Summary = &atomText{Type: "text", Body: p.Excerpt}
		}
		for _, t := range p.Tags {
			e.Categories = append(e.Categories, atomCategory{Term: t.Slug, Label: t.Name})
		}
		f.Entries = append(f.Entries, e)
	}

	return marshalXML(f)
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	Xmlns   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

func (r *Renderer) sitemap(posts []*postData, tags []*tagData) ([]byte, error) {
	set := sitemapURLSet{Xmlns: "http://www.sitemaps.org/schemas/sitemap/0.9"}

	home := sitemapURL{Loc: r.absURL("")}
	if len(posts) > 0 {
		home.LastMod = posts[0].Date.Format(time.DateOnly)
	}
	set.URLs = append(set.URLs, home)
	for _, p := range posts {
		set.URLs = append(set.URLs, sitemapURL{Loc: r.absURL(p.dir), LastMod: p.Date.Format(time.DateOnly)})
	}
	set.URLs = append(set.URLs, sitemapURL{Loc: r.absURL("tags/")})
	for _, t := range tags {
		set.URLs = append(set.URLs, sitemapURL{Loc: r.absURL("tags/" + t.Slug + "/")})
	}
	return marshalXML(set)
}

func marshalXML(v any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

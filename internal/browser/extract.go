package browser

import (
	"encoding/json"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// DefaultPublisher is assumed when no byline or provider markup is found on
// a Yahoo page.
const DefaultPublisher = "Yahoo Finance"

// Extraction is the parsed result for one article page.
type Extraction struct {
	Content   []string
	Publisher string
}

// Placeholder reports whether the extraction carries a headline-only
// placeholder instead of real content.
func (e Extraction) Placeholder() bool {
	return len(e.Content) == 1 && strings.HasPrefix(e.Content[0], "[")
}

// ParseArticle extracts body text and publisher from rendered HTML.
func ParseArticle(html string) (Extraction, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Extraction{}, err
	}
	return Extraction{
		Content:   extractContent(doc),
		Publisher: extractPublisher(doc),
	}, nil
}

// extractContent collects readable lines from the first matching content
// container, skipping boilerplate.
func extractContent(doc *goquery.Document) []string {
	var container *goquery.Selection
	for _, sel := range []string{"div.caas-body", "div.article-body", "article", "body"} {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			container = s
			break
		}
	}
	if container == nil {
		return nil
	}

	var lines []string
	container.Find("p, li, h2, h3").Each(func(_ int, s *goquery.Selection) {
		text := strings.TrimSpace(s.Text())
		if len(text) <= 20 {
			return
		}
		lower := strings.ToLower(text)
		if strings.Contains(lower, "click here") || strings.Contains(lower, "read more") {
			return
		}
		lines = append(lines, text)
	})
	return lines
}

type ldArticle struct {
	Provider struct {
		Name string `json:"name"`
	} `json:"provider"`
	Author struct {
		Name string `json:"name"`
	} `json:"author"`
}

// extractPublisher walks the byline strategies in order of reliability:
// JSON-LD provider, JSON-LD author, provider logo markup, byline elements,
// metadata text.
func extractPublisher(doc *goquery.Document) string {
	publisher := DefaultPublisher

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		var ld ldArticle
		if err := json.Unmarshal([]byte(s.Text()), &ld); err != nil {
			return true
		}
		if ld.Provider.Name != "" {
			publisher = ld.Provider.Name
			return false
		}
		if ld.Author.Name != "" {
			// "Name, Publisher" byline format common on Yahoo.
			name := ld.Author.Name
			if i := strings.LastIndex(name, ","); i >= 0 {
				publisher = strings.TrimSpace(name[i+1:])
			}
			return false
		}
		return true
	})

	if publisher == DefaultPublisher {
		if link := doc.Find("div.caas-logo-provider a").First(); link.Length() > 0 {
			if v, ok := link.Attr("aria-label"); ok && strings.TrimSpace(v) != "" {
				publisher = strings.TrimSpace(v)
			} else if v, ok := link.Attr("title"); ok && strings.TrimSpace(v) != "" {
				publisher = strings.TrimSpace(v)
			}
		}
	}
	if publisher == DefaultPublisher {
		if img := doc.Find("div.caas-logo-provider img").First(); img.Length() > 0 {
			if v, ok := img.Attr("alt"); ok && strings.TrimSpace(v) != "" {
				publisher = strings.TrimSpace(v)
			}
		}
	}
	if publisher == DefaultPublisher {
		if el := doc.Find(".caas-attr-item-author, .caas-author-byline-org, .caas-metadata span").First(); el.Length() > 0 {
			publisher = strings.TrimSpace(el.Text())
		} else if meta := doc.Find("div.caas-metadata").First(); meta.Length() > 0 {
			txt := strings.TrimSpace(meta.Text())
			if txt != "" && !strings.Contains(txt, "Matches") {
				publisher = strings.TrimSpace(strings.SplitN(txt, "•", 2)[0])
			}
		}
	}

	return cleanPublisher(publisher)
}

// cleanPublisher strips byline noise and falls back to the default when the
// result is not a plausible name.
func cleanPublisher(p string) string {
	p = strings.TrimSpace(strings.ReplaceAll(p, "By ", ""))
	if i := strings.Index(p, " min read"); i >= 0 {
		p = strings.TrimSpace(p[:i])
	}
	if len(p) < 2 || len(p) > 50 {
		return DefaultPublisher
	}
	return p
}

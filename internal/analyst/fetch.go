package analyst

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadswarm/internal/webutil"
)

// PageLinks is what a single page tells us about how to reach the business.
type PageLinks struct {
	Mailtos     []string
	Facebook    string
	LinkedIn    string
	Instagram   string
	Twitter     string
	ContactPage string
}

func (p PageLinks) HasSocial() bool {
	return p.Facebook != "" || p.LinkedIn != "" || p.Instagram != "" || p.Twitter != ""
}

// merge keeps the first non-empty value per field across pages.
func (p *PageLinks) merge(other PageLinks) {
	p.Mailtos = append(p.Mailtos, other.Mailtos...)
	if p.Facebook == "" {
		p.Facebook = other.Facebook
	}
	if p.LinkedIn == "" {
		p.LinkedIn = other.LinkedIn
	}
	if p.Instagram == "" {
		p.Instagram = other.Instagram
	}
	if p.Twitter == "" {
		p.Twitter = other.Twitter
	}
	if p.ContactPage == "" {
		p.ContactPage = other.ContactPage
	}
}

// SiteGetter abstracts page fetching so stage tests can stub the network.
type SiteGetter interface {
	FetchText(ctx context.Context, pageURL string, retries int) (string, PageLinks, error)
}

// Fetcher pulls a page and flattens it to text plus contact links.
type Fetcher struct {
	hc      *http.Client
	limiter *webutil.HostLimiter
	maxText int
}

func NewFetcher(timeout time.Duration, limiter *webutil.HostLimiter, maxText int) *Fetcher {
	if maxText <= 0 {
		maxText = 4000
	}
	return &Fetcher{
		hc:      &http.Client{Timeout: timeout},
		limiter: limiter,
		maxText: maxText,
	}
}

// FetchText retries once per extra attempt with a short pause; small-business
// hosting falls over a lot and usually recovers immediately.
func (f *Fetcher) FetchText(ctx context.Context, pageURL string, retries int) (string, PageLinks, error) {
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", PageLinks{}, ctx.Err()
			case <-time.After(2 * time.Second):
			}
		}
		text, links, err := f.fetchOnce(ctx, pageURL)
		if err == nil {
			return text, links, nil
		}
		lastErr = err
	}
	return "", PageLinks{}, fmt.Errorf("fetch %s: %w", pageURL, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, pageURL string) (string, PageLinks, error) {
	if f.limiter != nil {
		if err := f.limiter.WaitURL(ctx, pageURL); err != nil {
			return "", PageLinks{}, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", PageLinks{}, err
	}
	req.Header.Set("User-Agent", webutil.RandomUserAgent())

	res, err := f.hc.Do(req)
	if err != nil {
		return "", PageLinks{}, err
	}
	defer res.Body.Close()
	if res.StatusCode >= 400 {
		return "", PageLinks{}, fmt.Errorf("status %d", res.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return "", PageLinks{}, fmt.Errorf("parse html: %w", err)
	}

	links := collectLinks(doc, pageURL)

	text := webutil.CleanText(doc.Find("body").Text())
	if text == "" {
		return "", links, fmt.Errorf("no text content")
	}
	if len(links.Mailtos) > 0 {
		text += " " + strings.Join(links.Mailtos, " ")
	}
	if len(text) > f.maxText {
		text = text[:f.maxText]
	}
	return text, links, nil
}

func collectLinks(doc *goquery.Document, pageURL string) PageLinks {
	var links PageLinks

	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		addr := strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(addr, '?'); i >= 0 {
			addr = addr[:i]
		}
		if addr != "" {
			links.Mailtos = append(links.Mailtos, addr)
		}
	})

	base, _ := url.Parse(pageURL)

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		lower := strings.ToLower(href)

		switch {
		case strings.Contains(lower, "facebook.com") && !strings.Contains(lower, "sharer"):
			if links.Facebook == "" {
				links.Facebook = href
			}
		case strings.Contains(lower, "linkedin.com") && !strings.Contains(lower, "share"):
			if links.LinkedIn == "" {
				links.LinkedIn = href
			}
		case strings.Contains(lower, "instagram.com"):
			if links.Instagram == "" {
				links.Instagram = href
			}
		case strings.Contains(lower, "twitter.com") || strings.Contains(lower, "x.com"):
			if links.Twitter == "" {
				links.Twitter = href
			}
		}

		if links.ContactPage == "" && strings.Contains(lower, "contact") {
			if base != nil {
				if ref, err := url.Parse(href); err == nil {
					links.ContactPage = base.ResolveReference(ref).String()
				}
			}
		}
	})

	return links
}

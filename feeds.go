package inkpost

import (
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
)

type rssFeed struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate,omitempty"`
	Items         []rssItem `xml:"item"`
}

type rssItem struct {
	Title       string `xml:"title"`
	Link        string `xml:"link"`
	Description string `xml:"description"`
	Author      string `xml:"author,omitempty"`
	PubDate     string `xml:"pubDate,omitempty"`
	GUID        string `xml:"guid"`
}

type sitemapURLSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc     string `xml:"loc"`
	LastMod string `xml:"lastmod,omitempty"`
}

// postDate parses the display date stored on a post.
func postDate(p BlogPost) (time.Time, bool) {
	t, err := time.Parse(PostDateLayout, p.Date)
	return t, err == nil
}

func (a *App) absPostURL(p BlogPost) string {
	return BuildURL(a.Config.URL, "post", strconv.FormatInt(p.ID, 10))
}

// buildRSS lists posts newest first.
func (a *App) buildRSS(posts []BlogPost) rssFeed {
	ch := rssChannel{
		Title:       a.Config.Name,
		Link:        BuildURL(a.Config.URL),
		Description: a.Config.Description,
		Language:    "en",
		Items:       make([]rssItem, 0, len(posts)),
	}
	for i := len(posts) - 1; i >= 0; i-- {
		p := posts[i]
		item := rssItem{
			Title:       p.Title,
			Link:        a.absPostURL(p),
			Description: p.Subtitle,
			Author:      p.Author.Name,
			GUID:        a.absPostURL(p),
		}
		if t, ok := postDate(p); ok {
			item.PubDate = t.Format(time.RFC1123Z)
			if ch.LastBuildDate == "" {
				ch.LastBuildDate = item.PubDate
			}
		}
		ch.Items = append(ch.Items, item)
	}
	return rssFeed{Version: "2.0", Channel: ch}
}

func (a *App) buildSitemap(posts []BlogPost) sitemapURLSet {
	set := sitemapURLSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs: []sitemapURL{
			{Loc: BuildURL(a.Config.URL)},
			{Loc: BuildURL(a.Config.URL, "about")},
			{Loc: BuildURL(a.Config.URL, "contact")},
		},
	}
	for _, p := range posts {
		u := sitemapURL{Loc: a.absPostURL(p)}
		if t, ok := postDate(p); ok {
			u.LastMod = t.Format("2006-01-02")
		}
		set.URLs = append(set.URLs, u)
	}
	return set
}

func writeXML(c echo.Context, contentType string, v any) error {
	c.Response().Header().Set(echo.HeaderContentType, contentType)
	c.Response().WriteHeader(http.StatusOK)
	if _, err := c.Response().Write([]byte(xml.Header)); err != nil {
		return err
	}
	return xml.NewEncoder(c.Response()).Encode(v)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return writeXML(c, "application/rss+xml; charset=utf-8", a.buildRSS(posts))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return writeXML(c, "application/xml; charset=utf-8", a.buildSitemap(posts))
}

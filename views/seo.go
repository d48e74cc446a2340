package views

import (
	"encoding/json"
	"html/template"
	"strconv"
	"time"

	"github.com/eringen/inkpost"
)

// websiteJSONLD produces a Schema.org WebSite JSON-LD block for the site.
func websiteJSONLD(site inkpost.SiteInfo) template.JS {
	data := map[string]any{
		"@context": "https://schema.org",
		"@type":    "WebSite",
		"name":     site.Name,
		"url":      inkpost.BuildURL(site.URL),
	}
	if site.Description != "" {
		data["description"] = site.Description
	}
	return marshalJSONLD(data)
}

// blogPostingJSONLD produces a Schema.org BlogPosting JSON-LD block for a post.
func blogPostingJSONLD(site inkpost.SiteInfo, post inkpost.BlogPost) template.JS {
	postURL := inkpost.BuildURL(site.URL, "post", strconv.FormatInt(post.ID, 10))
	data := map[string]any{
		"@context":    "https://schema.org",
		"@type":       "BlogPosting",
		"headline":    post.Title,
		"description": post.Subtitle,
		"url":         postURL,
		"publisher": map[string]string{
			"@type": "Organization",
			"name":  site.Name,
		},
		"mainEntityOfPage": map[string]string{
			"@type": "WebPage",
			"@id":   postURL,
		},
	}
	if t, err := time.Parse(inkpost.PostDateLayout, post.Date); err == nil {
		data["datePublished"] = t.Format("2006-01-02")
	}
	if post.ImageURL != "" {
		data["image"] = post.ImageURL
	}
	if post.Author.Name != "" {
		data["author"] = map[string]string{
			"@type": "Person",
			"name":  post.Author.Name,
		}
	}
	return marshalJSONLD(data)
}

func marshalJSONLD(data map[string]any) template.JS {
	b, err := json.Marshal(data)
	if err != nil {
		return "{}"
	}
	return template.JS(b)
}

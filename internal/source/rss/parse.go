package rss

import (
	"html"
	"regexp"
	"strings"
)

// Field tags pulled out of each <item> or <entry> block.
var feedFields = []string{
	"title",
	"link",
	"description",
	"summary",
	"content",
	"content:encoded",
	"author",
	"dc:creator",
	"pubDate",
	"published",
	"updated",
	"id",
	"guid",
}

var (
	entryPattern = regexp.MustCompile(`(?is)<item(?:\s[^>]*)?>.*?</item>|<entry(?:\s[^>]*)?>.*?</entry>`)
	hrefPattern  = regexp.MustCompile(`(?i)<link\s[^>]*href=["']([^"']+)["'][^>]*>`)
	mediaPattern = regexp.MustCompile(`(?i)url=["']([^"']+\.(?:jpg|jpeg|png|gif|webp)[^"']*)["']`)
	cdataPattern = regexp.MustCompile(`(?s)^\s*<!\[CDATA\[(.*?)\]\]>\s*$`)
	tagPattern   = regexp.MustCompile(`<[^>]*>`)

	fieldPatterns = compileFieldPatterns(feedFields)
)

func compileFieldPatterns(fields []string) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp, len(fields))
	for _, f := range fields {
		tag := regexp.QuoteMeta(f)
		patterns[f] = regexp.MustCompile(`(?is)<` + tag + `(?:[\s/][^>]*)?>(.*?)</` + tag + `>`)
	}
	return patterns
}

type entry map[string]string

// parseFeed extracts entries from RSS 2.0 or Atom markup by pattern matching.
// Malformed markup yields fewer entries, never an error.
func parseFeed(xml string) []entry {
	blocks := entryPattern.FindAllString(xml, -1)
	entries := make([]entry, 0, len(blocks))

	for _, block := range blocks {
		e := entry{}
		for _, field := range feedFields {
			m := fieldPatterns[field].FindStringSubmatch(block)
			if m == nil {
				continue
			}
			if v := fieldText(m[1]); v != "" {
				e[field] = v
			}
		}

		if m := hrefPattern.FindStringSubmatch(block); m != nil {
			e["link"] = html.UnescapeString(m[1])
		}
		if m := mediaPattern.FindStringSubmatch(block); m != nil {
			e["coverImage"] = html.UnescapeString(m[1])
		}

		entries = append(entries, e)
	}

	return entries
}

func fieldText(raw string) string {
	if m := cdataPattern.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(html.UnescapeString(raw))
}

func stripTags(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}

// externalID prefers guid, then id, then link.
func (e entry) externalID() string {
	for _, key := range []string{"guid", "id", "link"} {
		if v := e[key]; v != "" {
			return v
		}
	}
	return ""
}

// rawData resolves the content, author and published aliases on top of the
// extracted fields.
func (e entry) rawData() map[string]any {
	data := make(map[string]any, len(e)+3)
	for k, v := range e {
		data[k] = v
	}

	if v := firstOf(e, "content:encoded", "content", "description", "summary"); v != "" {
		data["content"] = v
	}
	if v := firstOf(e, "dc:creator", "author"); v != "" {
		data["author"] = stripTags(v)
	}
	if v := firstOf(e, "pubDate", "published"); v != "" {
		data["published"] = v
	}

	return data
}

func firstOf(e entry, keys ...string) string {
	for _, k := range keys {
		if v := e[k]; v != "" {
			return v
		}
	}
	return ""
}

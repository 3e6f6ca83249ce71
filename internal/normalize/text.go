package normalize

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const (
	DefaultExcerptLength = 200
	maxSlugLength        = 100
)

var (
	scriptBlock  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleBlock   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	commentBlock = regexp.MustCompile(`(?s)<!--.*?-->`)

	mdImage      = regexp.MustCompile(`!\[([^\]]*)\]\([^)]*\)`)
	mdLink       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	mdHeading    = regexp.MustCompile(`(?m)^\s{0,3}#{1,6}\s+`)
	mdBlockquote = regexp.MustCompile(`(?m)^\s{0,3}>\s?`)
	mdEmphasis   = regexp.MustCompile("[*_~`]+")

	slugInvalid = regexp.MustCompile(`[^a-z0-9]+`)
)

// CleanHTML removes script, style and comment blocks. It does not otherwise
// transform the markup.
func CleanHTML(html string) string {
	html = scriptBlock.ReplaceAllString(html, "")
	html = styleBlock.ReplaceAllString(html, "")
	html = commentBlock.ReplaceAllString(html, "")
	return strings.TrimSpace(html)
}

// PlainText strips markdown and HTML markup and collapses whitespace.
func PlainText(content string) string {
	content = mdImage.ReplaceAllString(content, "$1")
	content = mdLink.ReplaceAllString(content, "$1")
	content = mdHeading.ReplaceAllString(content, "")
	content = mdBlockquote.ReplaceAllString(content, "")
	content = mdEmphasis.ReplaceAllString(content, "")

	// Pad tags so adjacent block elements do not run their words together.
	padded := strings.ReplaceAll(content, "<", " <")
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(padded))
	if err != nil {
		return strings.Join(strings.Fields(content), " ")
	}
	doc.Find("script, style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

// GenerateExcerpt derives a plain-text excerpt of at most maxLength
// characters, cut at the last word boundary and suffixed with "...".
func GenerateExcerpt(content string, maxLength int) string {
	text := []rune(PlainText(content))
	if len(text) <= maxLength {
		return string(text)
	}

	truncated := string(text[:maxLength])
	if i := strings.LastIndex(truncated, " "); i > 0 {
		truncated = truncated[:i]
	}
	return truncated + "..."
}

// GenerateSlug builds a URL-safe identifier. GenerateSlug(GenerateSlug(s)) == GenerateSlug(s).
func GenerateSlug(text string) string {
	slug := slugInvalid.ReplaceAllString(strings.ToLower(text), "-")
	slug = strings.Trim(slug, "-")
	if len(slug) > maxSlugLength {
		slug = strings.TrimRight(slug[:maxSlugLength], "-")
	}
	return slug
}

// CreateExternalID namespaces a source-local identifier.
func CreateExternalID(source, id string) string {
	return source + ":" + id
}

package normalize

import (
	"encoding/json"
	"regexp"
	"strings"
)

// DefaultImageBaseURL is where bare image filenames are assumed to live.
const DefaultImageBaseURL = "https://img.shoebox.cards"

var (
	frontPattern = regexp.MustCompile(`(?i)\bfront\s*=\s*([^\s|,;]+)`)
	backPattern  = regexp.MustCompile(`(?i)\bback\s*=\s*([^\s|,;]+)`)
)

// ImageList parses an images cell into an ordered list of URLs. Parsers are
// tried in priority order: JSON array syntax, front=…/back=… key-value
// syntax, then delimiter-separated lists (pipe, comma, semicolon, newline).
// Bare filenames are rewritten against baseURL; absolute URLs pass through.
// An empty baseURL uses DefaultImageBaseURL.
func ImageList(raw, baseURL string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultImageBaseURL
	}

	if urls, ok := imagesFromJSON(raw); ok {
		return resolveAll(urls, baseURL)
	}
	if urls, ok := imagesFromKeyValue(raw); ok {
		return resolveAll(urls, baseURL)
	}
	return resolveAll(splitImages(raw), baseURL)
}

// imagesFromJSON attempts to read the cell as a JSON array of strings.
func imagesFromJSON(raw string) ([]string, bool) {
	if !strings.HasPrefix(raw, "[") {
		return nil, false
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, false
	}
	return urls, true
}

// imagesFromKeyValue handles the "front=a.jpg back=b.jpg" export syntax.
// Front always sorts before back.
func imagesFromKeyValue(raw string) ([]string, bool) {
	front := frontPattern.FindStringSubmatch(raw)
	back := backPattern.FindStringSubmatch(raw)
	if front == nil && back == nil {
		return nil, false
	}
	var urls []string
	if front != nil {
		urls = append(urls, front[1])
	}
	if back != nil {
		urls = append(urls, back[1])
	}
	return urls, true
}

func splitImages(raw string) []string {
	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '|' || r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	var urls []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			urls = append(urls, p)
		}
	}
	return urls
}

func resolveAll(urls []string, baseURL string) []string {
	resolved := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" {
			continue
		}
		resolved = append(resolved, resolveImageURL(u, baseURL))
	}
	if len(resolved) == 0 {
		return nil
	}
	return resolved
}

func resolveImageURL(u, baseURL string) string {
	lower := strings.ToLower(u)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") || strings.HasPrefix(u, "//") {
		return u
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(u, "/")
}

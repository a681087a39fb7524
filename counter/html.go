package counter

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// CountHTML counts the elements of a rendered HTML snapshot that match
// selector.
func CountHTML(rawHTML, selector string) (int, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return 0, fmt.Errorf("compile selector %q: %w", selector, err)
	}

	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return 0, fmt.Errorf("parse rendered html: %w", err)
	}

	return goquery.NewDocumentFromNode(root).FindMatcher(sel).Length(), nil
}

package report

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
	"golang.org/x/net/html"
)

// RenderMarkdown renders the HTML report and converts it to
// GitHub-flavored markdown.
func RenderMarkdown(w io.Writer, r *Report) error {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, r); err != nil {
		return err
	}

	page := buf.String()
	title := extractHTMLTitle(page)

	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())

	markdown, err := converter.ConvertString(page)
	if err != nil {
		return fmt.Errorf("converting report to markdown: %w", err)
	}

	if title != "" {
		if _, err := fmt.Fprintf(w, "# %s\n\n", title); err != nil {
			return err
		}
	}
	_, err = io.WriteString(w, strings.TrimSpace(markdown)+"\n")
	return err
}

// extractHTMLTitle pulls the <title> text from an HTML document.
// Returns empty string when no title is present or parsing fails.
func extractHTMLTitle(content string) string {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
				title = strings.TrimSpace(n.FirstChild.Data)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if title != "" {
				return
			}
			walk(c)
		}
	}
	walk(doc)

	return title
}

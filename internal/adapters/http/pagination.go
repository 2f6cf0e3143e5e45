package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RowWindow describes one window of a station catalogue: rows with
// Start <= OBJECTID < Start+Count, out of Total.
type RowWindow struct {
	Start int `json:"start"`
	Count int `json:"count"`
	Total int `json:"total"`
}

// RowsResponse wraps catalogue rows with their window.
type RowsResponse struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
	Window  RowWindow  `json:"window"`
}

// SetLinkHeaders adds RFC 8288 Link headers for the neighbouring windows.
// Object IDs start at 1.
func SetLinkHeaders(c *fiber.Ctx, w RowWindow) {
	base := c.Path()
	link := func(start int, rel string) string {
		return fmt.Sprintf(`<%s?start=%d&count=%d>; rel="%s"`, base, start, w.Count, rel)
	}

	links := []string{link(1, "first")}
	if w.Start > 1 {
		prev := w.Start - w.Count
		if prev < 1 {
			prev = 1
		}
		links = append(links, link(prev, "prev"))
	}
	if w.Start+w.Count <= w.Total {
		links = append(links, link(w.Start+w.Count, "next"))
	}
	last := w.Total - w.Count + 1
	if last < 1 {
		last = 1
	}
	links = append(links, link(last, "last"))

	c.Set("Link", strings.Join(links, ", "))
}

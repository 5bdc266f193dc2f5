// Package coverart renders track artwork as ASCII for the transport bar.
package coverart

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/qeesung/image2ascii/convert"
)

const maxCached = 64

// Converter handles track artwork conversion to ASCII
type Converter struct {
	httpClient *http.Client
	converter  *convert.ImageConverter
	width      int
	height     int

	mu    sync.Mutex
	cache map[string]string
	order []string
}

// NewConverter creates a converter producing width x height characters.
// A nil client gets a 10 second timeout.
func NewConverter(httpClient *http.Client, width, height int) *Converter {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Converter{
		httpClient: httpClient,
		converter:  convert.NewImageConverter(),
		width:      width,
		height:     height,
		cache:      make(map[string]string),
	}
}

// ConvertFromURL downloads and converts an artwork URL to ASCII art. On
// failure it returns the placeholder together with the error.
func (c *Converter) ConvertFromURL(ctx context.Context, url string) (string, error) {
	if url == "" {
		return c.Placeholder(), nil
	}
	if art, ok := c.cached(url); ok {
		return art, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return c.Placeholder(), fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.Placeholder(), fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.Placeholder(), fmt.Errorf("status %d", resp.StatusCode)
	}

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return c.Placeholder(), fmt.Errorf("failed to decode: %w", err)
	}

	convertOptions := convert.DefaultOptions
	convertOptions.FixedWidth = c.width
	convertOptions.FixedHeight = c.height
	convertOptions.FitScreen = false
	convertOptions.Colored = false // ANSI colors break tview regions

	art := c.converter.Image2ASCIIString(img, &convertOptions)
	c.store(url, art)
	return art, nil
}

// Placeholder returns the frame shown when no artwork is available
func (c *Converter) Placeholder() string {
	w, h := max(c.width, 12), max(c.height, 3)
	inner := w - 2
	label := "♪ no art ♪"

	var b strings.Builder
	b.WriteString("[darkgray]┌" + strings.Repeat("─", inner) + "┐\n")
	for row := 0; row < h-2; row++ {
		line := strings.Repeat(" ", inner)
		if row == (h-2)/2 {
			pad := (inner - 10) / 2
			line = strings.Repeat(" ", pad) + label + strings.Repeat(" ", inner-pad-10)
		}
		b.WriteString("│" + line + "│\n")
	}
	b.WriteString("└" + strings.Repeat("─", inner) + "┘")
	return b.String()
}

func (c *Converter) cached(url string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	art, ok := c.cache[url]
	return art, ok
}

func (c *Converter) store(url, art string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.cache[url]; ok {
		return
	}
	if len(c.order) >= maxCached {
		delete(c.cache, c.order[0])
		c.order = c.order[1:]
	}
	c.cache[url] = art
	c.order = append(c.order, url)
}

// Package image renders the refresh summary as a PNG.  The renderer is
// stateless: it takes the already-ranked top countries and returns the
// encoded bytes; persisting them is the caller's job.
package image

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"strconv"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Fixed canvas size of the summary image.
const (
	Width  = 600
	Height = 400
)

// Entry is one ranked row of the summary: a country name and its
// estimated GDP, nil when the estimate is unknown.
type Entry struct {
	Name         string
	EstimatedGDP *float64
}

// Summary is the full input of one render: the stored-country total, up
// to five ranked entries and the refresh timestamp for the footer.
type Summary struct {
	TotalCountries  int
	Top             []Entry
	LastRefreshedAt time.Time
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
	gray  = color.RGBA{128, 128, 128, 255}
	blue  = color.RGBA{66, 133, 244, 255}
)

// Render draws the summary onto a fixed 600x400 white canvas and returns
// it PNG-encoded.  Layout: centered title, total count, "top 5" heading,
// one labeled bar per entry scaled against the largest GDP, and a gray
// footer with the refresh timestamp.
func Render(s Summary) ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, Width, Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{white}, image.Point{}, draw.Src)

	title := "Country Data Summary"
	drawText(img, (Width-textWidth(title))/2, 34, title, black)

	drawText(img, 50, 84, fmt.Sprintf("Total Countries: %s", groupDigits(int64(s.TotalCountries))), black)
	drawText(img, 50, 124, "Top 5 Countries by Estimated GDP:", black)

	maxGDP := 0.0
	for _, e := range s.Top {
		if e.EstimatedGDP != nil && *e.EstimatedGDP > maxGDP {
			maxGDP = *e.EstimatedGDP
		}
	}

	y := 150
	for i, e := range s.Top {
		if i >= 5 {
			break
		}
		label := fmt.Sprintf("%d. %s: %s", i+1, e.Name, formatGDP(e.EstimatedGDP))
		drawText(img, 70, y+12, label, black)
		if e.EstimatedGDP != nil && maxGDP > 0 {
			barLen := int(*e.EstimatedGDP / maxGDP * 200)
			if barLen < 2 {
				barLen = 2
			}
			bar := image.Rect(70, y+18, 70+barLen, y+26)
			draw.Draw(img, bar, &image.Uniform{blue}, image.Point{}, draw.Src)
		}
		y += 40
	}

	footer := fmt.Sprintf("Last Refreshed: %s", s.LastRefreshedAt.UTC().Format("2006-01-02 15:04:05 UTC"))
	drawText(img, 50, Height-40, footer, gray)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// formatGDP renders a GDP value as "$1,234,567.89", or "N/A" when the
// estimate is absent.
func formatGDP(v *float64) string {
	if v == nil {
		return "N/A"
	}
	whole := int64(*v)
	frac := *v - float64(whole)
	cents := int(frac*100 + 0.5)
	if cents == 100 {
		whole++
		cents = 0
	}
	return fmt.Sprintf("$%s.%02d", groupDigits(whole), cents)
}

// groupDigits inserts thousands separators into a non-negative integer.
func groupDigits(n int64) string {
	s := strconv.FormatInt(n, 10)
	if len(s) <= 3 {
		return s
	}
	var out []byte
	lead := len(s) % 3
	if lead > 0 {
		out = append(out, s[:lead]...)
	}
	for i := lead; i < len(s); i += 3 {
		if len(out) > 0 {
			out = append(out, ',')
		}
		out = append(out, s[i:i+3]...)
	}
	return string(out)
}

func drawText(img *image.RGBA, x, y int, text string, c color.RGBA) {
	d := font.Drawer{
		Dst:  img,
		Src:  &image.Uniform{c},
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// textWidth measures a string in the fixed-width face used above.
func textWidth(text string) int {
	return len(text) * 7
}

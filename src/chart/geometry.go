package chart

import (
	"math"

	"market-assistant/src/models"
)

type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LinearScale maps a domain interval onto a pixel range. The range may be
// inverted (R0 > R1) for y axes.
type LinearScale struct {
	D0, D1 float64
	R0, R1 float64
}

func (s LinearScale) Map(v float64) float64 {
	if s.D1 == s.D0 {
		return (s.R0 + s.R1) / 2
	}
	return s.R0 + (v-s.D0)/(s.D1-s.D0)*(s.R1-s.R0)
}

// -----------------------------------------------------------------------------

// Glyph is the drawable form of one candle.
type Glyph struct {
	Timestamp  int64   `json:"timestamp"`
	WickX      float64 `json:"wickX"`
	WickTop    float64 `json:"wickTop"`
	WickBottom float64 `json:"wickBottom"`
	BodyX      float64 `json:"bodyX"`
	BodyY      float64 `json:"bodyY"`
	BodyWidth  float64 `json:"bodyWidth"`
	BodyHeight float64 `json:"bodyHeight"`
	Increasing bool    `json:"increasing"`
	Color      string  `json:"color"`
	Label      string  `json:"label,omitempty"`
}

// CandleGlyph lays out one candle inside the pixel box (x, y, width, height)
// whose top edge is the candle high and bottom edge the candle low. It
// reports false for degenerate candles (high == low) and envelope violations.
func CandleGlyph(x, y, width, height float64, c models.MCandle, theme Theme) (Glyph, bool) {
	priceRange := c.High - c.Low
	if priceRange <= 0 || height <= 0 {
		return Glyph{}, false
	}
	if c.High < math.Max(c.Open, c.Close) || c.Low > math.Min(c.Open, c.Close) {
		return Glyph{}, false
	}

	bodyWidth := math.Max(width*theme.BodyRatio, theme.MinBodyWidth)
	openY := y + height*(c.High-c.Open)/priceRange
	closeY := y + height*(c.High-c.Close)/priceRange

	color := theme.DecreasingColor
	if c.IsIncreasing {
		color = theme.IncreasingColor
	}

	return Glyph{
		Timestamp:  c.Timestamp,
		WickX:      x + width/2,
		WickTop:    y,
		WickBottom: y + height,
		BodyX:      x + (width-bodyWidth)/2,
		BodyY:      math.Min(openY, closeY),
		BodyWidth:  bodyWidth,
		BodyHeight: math.Max(math.Abs(closeY-openY), 1),
		Increasing: c.IsIncreasing,
		Color:      color,
	}, true
}

package chart

import "market-assistant/src/models"

// Theme carries every visual parameter of the renderer.
type Theme struct {
	Width           int
	Height          int
	PaddingTop      int
	PaddingRight    int
	PaddingBottom   int
	PaddingLeft     int
	Background      string
	GridColor       string
	TextColor       string
	LineColor       string
	LineWidth       float64
	IncreasingColor string
	DecreasingColor string
	FontFamily      string
	FontSize        int
	XTickCount      int
	YTickCount      int
	BodyRatio       float64
	MinBodyWidth    float64
}

// DefaultTheme is the dark dashboard style.
func DefaultTheme() Theme {
	return Theme{
		Width:           960,
		Height:          420,
		PaddingTop:      20,
		PaddingRight:    20,
		PaddingBottom:   36,
		PaddingLeft:     96,
		Background:      "#0f172a",
		GridColor:       "#1e293b",
		TextColor:       "#94a3b8",
		LineColor:       "#10b981",
		LineWidth:       2,
		IncreasingColor: "#16a34a",
		DecreasingColor: "#dc2626",
		FontFamily:      "sans-serif",
		FontSize:        11,
		XTickCount:      6,
		YTickCount:      5,
		BodyRatio:       0.6,
		MinBodyWidth:    2,
	}
}

// ThemeFromConfig overlays configured sizes and colours on the default theme.
func ThemeFromConfig(cfg models.MChartConfig) Theme {
	t := DefaultTheme()
	if cfg.Width > 0 {
		t.Width = cfg.Width
	}
	if cfg.Height > 0 {
		t.Height = cfg.Height
	}
	if cfg.LineColor != "" {
		t.LineColor = cfg.LineColor
	}
	if cfg.IncreasingColor != "" {
		t.IncreasingColor = cfg.IncreasingColor
	}
	if cfg.DecreasingColor != "" {
		t.DecreasingColor = cfg.DecreasingColor
	}
	return t
}

func (t Theme) plotRect() Rect {
	return Rect{
		X:      float64(t.PaddingLeft),
		Y:      float64(t.PaddingTop),
		Width:  float64(t.Width - t.PaddingLeft - t.PaddingRight),
		Height: float64(t.Height - t.PaddingTop - t.PaddingBottom),
	}
}

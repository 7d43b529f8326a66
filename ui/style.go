package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Channel colours as RGB integers.
const (
	ColorRelease = 0x55ff55
	ColorBeta    = 0xffaa00
	ColorAlpha   = 0xff5555
	ColorOther   = 0xaaaaaa
)

var (
	bannerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#ffffff")).
			Background(lipgloss.Color("#5f5fd7")).
			Padding(0, 1)
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// Colorize applies the given color to the text using lipgloss.
// color is an integer RGB value such as 0xff0000.
func Colorize(text string, color int) string {
	hexColor := fmt.Sprintf("#%06x", color)
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(hexColor))
	return style.Render(text)
}

// ChannelColor maps a release channel to its display colour.
func ChannelColor(channel string) int {
	switch strings.ToLower(channel) {
	case "release":
		return ColorRelease
	case "beta":
		return ColorBeta
	case "alpha":
		return ColorAlpha
	default:
		return ColorOther
	}
}

// Channel renders a channel name in its colour.
func Channel(channel string) string {
	return Colorize(channel, ChannelColor(channel))
}

// Banner renders a highlighted title line.
func Banner(text string) string {
	return bannerStyle.Render(text)
}

// Dim renders secondary text.
func Dim(text string) string {
	return dimStyle.Render(text)
}

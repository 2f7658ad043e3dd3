package graphics

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// TextLayout is the result of measuring a string inside an optional width.
type TextLayout struct {
	Lines      []string
	Size       Size
	LineHeight float64
}

// TextMetrics measures text with a fixed bitmap face. It gives the renderer
// a deterministic intrinsic size for auto-sized text and buttons; the browser
// that eventually shows the snapshot may lay out differently.
type TextMetrics struct {
	face font.Face
}

// DefaultTextMetrics returns metrics backed by the 7x13 basic font.
func DefaultTextMetrics() *TextMetrics {
	return &TextMetrics{face: basicfont.Face7x13}
}

// NewTextMetrics returns metrics backed by face.
func NewTextMetrics(face font.Face) *TextMetrics {
	if face == nil {
		return DefaultTextMetrics()
	}
	return &TextMetrics{face: face}
}

// LineHeight returns the height of one line in pixels.
func (m *TextMetrics) LineHeight() float64 {
	return float64(m.face.Metrics().Height.Ceil())
}

// Advance returns the width of s on a single line in pixels.
func (m *TextMetrics) Advance(s string) float64 {
	w := font.MeasureString(m.face, s).Ceil()
	if w == 0 && s != "" {
		// Faces without the glyphs report zero; fall back to one em per rune.
		w = utf8.RuneCountInString(s) * m.face.Metrics().Height.Ceil() / 2
	}
	return float64(w)
}

// Layout wraps text on word boundaries so that no line exceeds maxWidth.
// A maxWidth of 0 or less disables wrapping. Words wider than maxWidth
// occupy a line of their own.
func (m *TextMetrics) Layout(text string, maxWidth float64) TextLayout {
	lh := m.LineHeight()
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		lines = append(lines, m.wrap(para, maxWidth)...)
	}
	var width float64
	for _, line := range lines {
		if w := m.Advance(line); w > width {
			width = w
		}
	}
	return TextLayout{
		Lines:      lines,
		Size:       Size{Width: width, Height: lh * float64(len(lines))},
		LineHeight: lh,
	}
}

func (m *TextMetrics) wrap(para string, maxWidth float64) []string {
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	if maxWidth <= 0 {
		return []string{strings.Join(words, " ")}
	}
	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		candidate := current + " " + word
		if m.Advance(candidate) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	return append(lines, current)
}

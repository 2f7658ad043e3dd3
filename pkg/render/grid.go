package render

import (
	"math"
	"strconv"
	"strings"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/graphics"
)

// TrackKind is the sizing rule of one grid track.
type TrackKind int

const (
	TrackAuto TrackKind = iota
	TrackPx
	TrackPercent
	TrackFr
)

// Track is one column or row of a grid template.
type Track struct {
	Kind  TrackKind
	Value float64
}

// ParseTracks parses a grid template such as "100px 1fr 2fr",
// "repeat(3, 1fr)" or "25% auto". minmax(a, b) uses its upper bound. Tokens
// that are not understood become auto tracks.
func ParseTracks(template string) []Track {
	return parseTracks(template, nil)
}

// parseTracks is ParseTracks, calling bad with every token that fell back to
// an auto track.
func parseTracks(template string, bad func(tok string)) []Track {
	var tracks []Track
	track := func(tok string) Track {
		t, ok := parseTrack(tok)
		if !ok && bad != nil {
			bad(tok)
		}
		return t
	}
	for _, tok := range splitTemplate(template) {
		lower := strings.ToLower(tok)
		switch {
		case strings.HasPrefix(lower, "repeat(") && strings.HasSuffix(lower, ")"):
			countStr, body, ok := strings.Cut(tok[len("repeat("):len(tok)-1], ",")
			if !ok {
				if bad != nil {
					bad(tok)
				}
				continue
			}
			count, err := strconv.Atoi(strings.TrimSpace(countStr))
			if err != nil || count < 1 {
				count = 1
			}
			inner := parseTracks(body, bad)
			for range count {
				tracks = append(tracks, inner...)
			}
		case strings.HasPrefix(lower, "minmax(") && strings.HasSuffix(lower, ")"):
			_, hi, ok := strings.Cut(tok[len("minmax("):len(tok)-1], ",")
			if !ok {
				if bad != nil {
					bad(tok)
				}
				tracks = append(tracks, Track{})
				continue
			}
			tracks = append(tracks, track(strings.TrimSpace(hi)))
		default:
			tracks = append(tracks, track(tok))
		}
	}
	return tracks
}

func parseTrack(tok string) (Track, bool) {
	lower := strings.ToLower(tok)
	if v, ok := strings.CutSuffix(lower, "fr"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			return Track{Kind: TrackFr, Value: f}, true
		}
		return Track{}, false
	}
	d := banner.ParseDimension(tok)
	switch d.Unit {
	case banner.UnitPx:
		return Track{Kind: TrackPx, Value: d.Value}, true
	case banner.UnitPercent:
		return Track{Kind: TrackPercent, Value: d.Value}, true
	case banner.UnitAuto:
		return Track{}, true
	}
	return Track{}, false
}

// splitTemplate splits on whitespace outside parentheses.
func splitTemplate(s string) []string {
	var out []string
	depth, start := 0, -1
	for i, r := range s {
		switch {
		case r == '(':
			depth++
		case r == ')':
			depth--
		case (r == ' ' || r == '\t' || r == '\n') && depth == 0:
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// sizeTracks distributes available length over tracks. Auto tracks take the
// matching entry of content; fr tracks share what is left after fixed,
// percentage and auto tracks and the gaps.
func sizeTracks(tracks []Track, available, gap float64, content []float64) []float64 {
	sizes := make([]float64, len(tracks))
	used := gap * float64(max(len(tracks)-1, 0))
	totalFr := 0.0
	for i, t := range tracks {
		switch t.Kind {
		case TrackPx:
			sizes[i] = t.Value
		case TrackPercent:
			sizes[i] = t.Value / 100 * available
		case TrackFr:
			totalFr += t.Value
			continue
		default:
			if i < len(content) {
				sizes[i] = content[i]
			}
		}
		used += sizes[i]
	}
	if free := available - used; totalFr > 0 && free > 0 {
		for i, t := range tracks {
			if t.Kind == TrackFr {
				sizes[i] = free * t.Value / totalFr
			}
		}
	}
	for i := range sizes {
		sizes[i] = math.Round(sizes[i])
	}
	return sizes
}

// Grid is a parsed grid configuration.
type Grid struct {
	Columns   []Track
	Rows      []Track
	ColumnGap float64
	RowGap    float64
}

// ParseGrid reads the grid settings of cfg for a container of size inner.
// A missing column template is a single 1fr column.
func ParseGrid(cfg banner.ContainerConfig, inner graphics.Size) Grid {
	g := Grid{
		Columns: ParseTracks(cfg.GridTemplateColumns),
		Rows:    ParseTracks(cfg.GridTemplateRows),
	}
	if len(g.Columns) == 0 {
		g.Columns = []Track{{Kind: TrackFr, Value: 1}}
	}
	colGap, rowGap := cfg.ColumnGap, cfg.RowGap
	if !colGap.IsSet() {
		colGap = cfg.Gap
	}
	if !rowGap.IsSet() {
		rowGap = cfg.Gap
	}
	g.ColumnGap = gap(colGap, inner.Width)
	g.RowGap = gap(rowGap, inner.Height)
	return g
}

// Layout places children row-major into cells, each at its cell origin.
// Rows past the explicit template repeat the last explicit row, or size to
// their tallest child when there is no row template.
func (g Grid) Layout(children []*Node, inner graphics.Size) {
	if len(children) == 0 {
		return
	}
	ncols := len(g.Columns)
	nrows := (len(children) + ncols - 1) / ncols

	colContent := make([]float64, ncols)
	rowContent := make([]float64, max(nrows, len(g.Rows)))
	for i, child := range children {
		size := child.Bounds.Size()
		c, r := i%ncols, i/ncols
		colContent[c] = math.Max(colContent[c], size.Width)
		rowContent[r] = math.Max(rowContent[r], size.Height)
	}

	rows := make([]Track, len(rowContent))
	for r := range rows {
		switch {
		case r < len(g.Rows):
			rows[r] = g.Rows[r]
		case len(g.Rows) > 0:
			rows[r] = g.Rows[len(g.Rows)-1]
		}
	}

	colX := offsets(sizeTracks(g.Columns, inner.Width, g.ColumnGap, colContent), g.ColumnGap)
	rowY := offsets(sizeTracks(rows, inner.Height, g.RowGap, rowContent), g.RowGap)
	for i, child := range children {
		size := child.Bounds.Size()
		child.Bounds = graphics.RectFromLTWH(colX[i%ncols], rowY[i/ncols], size.Width, size.Height)
	}
}

func offsets(sizes []float64, gap float64) []float64 {
	out := make([]float64, len(sizes))
	cursor := 0.0
	for i, s := range sizes {
		out[i] = cursor
		cursor += s + gap
	}
	return out
}

func layoutGrid(children []*Node, cfg banner.ContainerConfig, inner graphics.Size) {
	ParseGrid(cfg, inner).Layout(children, inner)
}

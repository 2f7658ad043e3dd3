package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-drift/bannerkit/pkg/banner"
	"github.com/go-drift/bannerkit/pkg/graphics"
)

// Axis is the main axis of a flex container.
type Axis int

const (
	AxisHorizontal Axis = iota
	AxisVertical
)

// String returns a human-readable representation of the axis.
func (a Axis) String() string {
	switch a {
	case AxisHorizontal:
		return "horizontal"
	case AxisVertical:
		return "vertical"
	default:
		return fmt.Sprintf("Axis(%d)", int(a))
	}
}

// MainAxisAlignment is the parsed justify-content of a flex container.
type MainAxisAlignment int

const (
	MainAxisAlignmentStart MainAxisAlignment = iota
	MainAxisAlignmentEnd
	MainAxisAlignmentCenter
	// MainAxisAlignmentSpaceBetween puts no space before the first or after
	// the last child.
	MainAxisAlignmentSpaceBetween
	// MainAxisAlignmentSpaceAround puts half-sized spaces at both ends.
	MainAxisAlignmentSpaceAround
	// MainAxisAlignmentSpaceEvenly puts equal space everywhere, ends included.
	MainAxisAlignmentSpaceEvenly
)

// CrossAxisAlignment is the parsed align-items of a flex container.
// Items keep their resolved size, so stretch aligns to the start.
type CrossAxisAlignment int

const (
	CrossAxisAlignmentStart CrossAxisAlignment = iota
	CrossAxisAlignmentEnd
	CrossAxisAlignmentCenter
)

// Flex is a parsed flex configuration.
type Flex struct {
	Direction Axis
	Reverse   bool
	Justify   MainAxisAlignment
	Align     CrossAxisAlignment
	Wrap      bool
	// MainGap separates items in a run, CrossGap separates runs.
	MainGap  float64
	CrossGap float64
}

// ParseFlex reads the flex settings of cfg for a container of size inner.
// Percentage gaps resolve against the axis they apply to.
func ParseFlex(cfg banner.ContainerConfig, inner graphics.Size) Flex {
	var f Flex
	switch strings.ToLower(strings.TrimSpace(cfg.FlexDirection)) {
	case "column":
		f.Direction = AxisVertical
	case "column-reverse":
		f.Direction, f.Reverse = AxisVertical, true
	case "row-reverse":
		f.Reverse = true
	}

	switch strings.ToLower(strings.TrimSpace(cfg.JustifyContent)) {
	case "flex-end", "end", "right":
		f.Justify = MainAxisAlignmentEnd
	case "center":
		f.Justify = MainAxisAlignmentCenter
	case "space-between":
		f.Justify = MainAxisAlignmentSpaceBetween
	case "space-around":
		f.Justify = MainAxisAlignmentSpaceAround
	case "space-evenly":
		f.Justify = MainAxisAlignmentSpaceEvenly
	}

	switch strings.ToLower(strings.TrimSpace(cfg.AlignItems)) {
	case "flex-end", "end":
		f.Align = CrossAxisAlignmentEnd
	case "center":
		f.Align = CrossAxisAlignmentCenter
	}

	f.Wrap = strings.EqualFold(strings.TrimSpace(cfg.FlexWrap), "wrap")

	mainGap, crossGap := cfg.ColumnGap, cfg.RowGap
	if f.Direction == AxisVertical {
		mainGap, crossGap = cfg.RowGap, cfg.ColumnGap
	}
	if !mainGap.IsSet() {
		mainGap = cfg.Gap
	}
	if !crossGap.IsSet() {
		crossGap = cfg.Gap
	}
	f.MainGap = gap(mainGap, f.mainAxis(inner))
	f.CrossGap = gap(crossGap, f.crossAxis(inner))
	return f
}

// gap resolves a gap against the length it applies to. Anything but px and
// percent is zero.
func gap(d banner.Dimension, length float64) float64 {
	switch d.Unit {
	case banner.UnitPx:
		return math.Max(0, math.Round(d.Value))
	case banner.UnitPercent:
		return math.Max(0, math.Round(d.Value/100*length))
	}
	return 0
}

func (f Flex) mainAxis(size graphics.Size) float64 {
	if f.Direction == AxisHorizontal {
		return size.Width
	}
	return size.Height
}

func (f Flex) crossAxis(size graphics.Size) float64 {
	if f.Direction == AxisHorizontal {
		return size.Height
	}
	return size.Width
}

func (f Flex) makeOffset(main, cross float64) graphics.Offset {
	if f.Direction == AxisHorizontal {
		return graphics.Offset{X: main, Y: cross}
	}
	return graphics.Offset{X: cross, Y: main}
}

type run struct {
	first, count int
	main, cross  float64
}

// runs groups children into lines. Without wrapping there is one run.
func (f Flex) runs(children []*Node, maxMain float64) []run {
	var runs []run
	var current run
	for i, child := range children {
		size := child.Bounds.Size()
		childMain := f.mainAxis(size)
		spacing := 0.0
		if current.count > 0 {
			spacing = f.MainGap
		}
		if f.Wrap && current.count > 0 && current.main+spacing+childMain > maxMain {
			runs = append(runs, current)
			current = run{first: i}
			spacing = 0
		}
		current.main += spacing + childMain
		current.cross = math.Max(current.cross, f.crossAxis(size))
		current.count++
	}
	if current.count > 0 {
		runs = append(runs, current)
	}
	return runs
}

// Layout positions children inside a box of size inner. Children keep their
// sizes; only their origins change.
func (f Flex) Layout(children []*Node, inner graphics.Size) {
	maxMain := f.mainAxis(inner)
	runs := f.runs(children, maxMain)

	crossCursor := 0.0
	for _, r := range runs {
		lineCross := r.cross
		if !f.Wrap {
			lineCross = math.Max(r.cross, f.crossAxis(inner))
		}
		spacing, cursor := f.computeSpacing(math.Max(0, maxMain-r.main), r.count)
		for _, child := range children[r.first : r.first+r.count] {
			size := child.Bounds.Size()
			childMain := f.mainAxis(size)
			main := cursor
			if f.Reverse {
				main = maxMain - cursor - childMain
			}
			cross := crossCursor + f.crossAxisOffset(lineCross, f.crossAxis(size))
			off := f.makeOffset(math.Round(main), math.Round(cross))
			child.Bounds = graphics.RectFromLTWH(off.X, off.Y, size.Width, size.Height)
			cursor += childMain + f.MainGap + spacing
		}
		crossCursor += lineCross + f.CrossGap
	}
}

func (f Flex) crossAxisOffset(lineCross, childCross float64) float64 {
	freeSpace := lineCross - childCross
	if freeSpace <= 0 {
		return 0
	}
	switch f.Align {
	case CrossAxisAlignmentEnd:
		return freeSpace
	case CrossAxisAlignmentCenter:
		return freeSpace * 0.5
	default:
		return 0
	}
}

func (f Flex) computeSpacing(freeSpace float64, n int) (spacing, offset float64) {
	switch f.Justify {
	case MainAxisAlignmentEnd:
		offset = freeSpace
	case MainAxisAlignmentCenter:
		offset = freeSpace * 0.5
	case MainAxisAlignmentSpaceBetween:
		if n > 1 {
			spacing = freeSpace / float64(n-1)
		}
	case MainAxisAlignmentSpaceAround:
		if n > 0 {
			spacing = freeSpace / float64(n)
			offset = spacing * 0.5
		}
	case MainAxisAlignmentSpaceEvenly:
		if n > 0 {
			spacing = freeSpace / float64(n+1)
			offset = spacing
		}
	}
	return
}

func layoutFlex(children []*Node, cfg banner.ContainerConfig, inner graphics.Size) {
	ParseFlex(cfg, inner).Layout(children, inner)
}

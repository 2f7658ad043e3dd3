// Package banner defines the banner configuration data model: component
// nodes, per-device styles and layout profiles, and their decoding from YAML
// or JSON.
//
// Values in this package are treated as immutable input. The layout packages
// derive their geometry from them without ever writing back.
package banner

import "strings"

// Device names a layout breakpoint.
type Device string

const (
	Desktop Device = "desktop"
	Tablet  Device = "tablet"
	Mobile  Device = "mobile"
)

// Devices lists every supported device in breakpoint order.
var Devices = []Device{Desktop, Tablet, Mobile}

// ParseDevice parses a device name. Empty input yields Desktop.
func ParseDevice(s string) (Device, bool) {
	switch Device(strings.ToLower(strings.TrimSpace(s))) {
	case "", Desktop:
		return Desktop, true
	case Tablet:
		return Tablet, true
	case Mobile:
		return Mobile, true
	}
	return Desktop, false
}

// ComponentType is the "type" discriminator of a node.
type ComponentType string

const (
	TypeText             ComponentType = "text"
	TypeButton           ComponentType = "button"
	TypeImage            ComponentType = "image"
	TypeContainer        ComponentType = "container"
	TypeLanguageSelector ComponentType = "language-selector"
)

// ComponentTypes lists the known component types.
var ComponentTypes = []ComponentType{TypeText, TypeButton, TypeImage, TypeContainer, TypeLanguageSelector}

// ParseComponentType normalizes a raw type string. "languageSelector" and
// "language_selector" are accepted spellings of TypeLanguageSelector.
func ParseComponentType(s string) (ComponentType, bool) {
	switch normalizeKey(s) {
	case "text":
		return TypeText, true
	case "button":
		return TypeButton, true
	case "image":
		return TypeImage, true
	case "container":
		return TypeContainer, true
	case "languageselector":
		return TypeLanguageSelector, true
	}
	return ComponentType(s), false
}

// Action is the fixed vocabulary a button may trigger.
type Action string

const (
	ActionNone            Action = "none"
	ActionShowPreferences Action = "show_preferences"
	ActionAcceptAll       Action = "accept_all"
	ActionRejectAll       Action = "reject_all"
)

// Actions lists the recognised actions.
var Actions = []Action{ActionShowPreferences, ActionAcceptAll, ActionRejectAll, ActionNone}

// ParseAction maps a raw action to the vocabulary. Unrecognised values
// become ActionNone and ok is false.
func ParseAction(s string) (a Action, ok bool) {
	switch Action(strings.ToLower(strings.TrimSpace(s))) {
	case ActionShowPreferences:
		return ActionShowPreferences, true
	case ActionAcceptAll:
		return ActionAcceptAll, true
	case ActionRejectAll:
		return ActionRejectAll, true
	case ActionNone, "":
		return ActionNone, true
	}
	return ActionNone, false
}

// Position is a component's offset inside its reference box.
type Position struct {
	Top  Dimension `yaml:"top"`
	Left Dimension `yaml:"left"`
}

// DisplayMode selects how a container lays out its children.
type DisplayMode string

const (
	DisplayFree DisplayMode = "free"
	DisplayFlex DisplayMode = "flex"
	DisplayGrid DisplayMode = "grid"
)

// ContainerConfig holds the per-device layout settings of a container.
type ContainerConfig struct {
	DisplayMode         DisplayMode `yaml:"displayMode"`
	FlexDirection       string      `yaml:"flexDirection"`
	JustifyContent      string      `yaml:"justifyContent"`
	AlignItems          string      `yaml:"alignItems"`
	FlexWrap            string      `yaml:"flexWrap"`
	Gap                 Dimension   `yaml:"gap"`
	RowGap              Dimension   `yaml:"rowGap"`
	ColumnGap           Dimension   `yaml:"columnGap"`
	GridTemplateColumns string      `yaml:"gridTemplateColumns"`
	GridTemplateRows    string      `yaml:"gridTemplateRows"`
}

// Mode returns the display mode, defaulting to free for empty or
// unrecognised values.
func (c ContainerConfig) Mode() DisplayMode {
	switch DisplayMode(strings.ToLower(string(c.DisplayMode))) {
	case DisplayFlex:
		return DisplayFlex
	case DisplayGrid:
		return DisplayGrid
	default:
		return DisplayFree
	}
}

// Node is one component of the banner tree.
type Node struct {
	ID              string                     `yaml:"id"`
	Type            string                     `yaml:"type"`
	ParentID        string                     `yaml:"parentId,omitempty"`
	Position        map[Device]Position        `yaml:"position,omitempty"`
	Style           map[Device]StyleAttributes `yaml:"style,omitempty"`
	ContainerConfig map[Device]ContainerConfig `yaml:"containerConfig,omitempty"`
	Content         Content                    `yaml:"content,omitempty"`
	Action          string                     `yaml:"action,omitempty"`
	Children        []Node                     `yaml:"children,omitempty"`
}

// IsRoot reports whether the node has no parent.
func (n *Node) IsRoot() bool { return n.ParentID == "" }

// LayoutType is the kind of outer frame a banner uses.
type LayoutType string

const (
	LayoutBanner   LayoutType = "banner"
	LayoutFloating LayoutType = "floating"
	LayoutModal    LayoutType = "modal"
)

// LayoutProfile describes the banner's outer frame for one device.
type LayoutProfile struct {
	Type       LayoutType `yaml:"type"`
	Position   string     `yaml:"position"`
	Background string     `yaml:"background"`
	Width      Dimension  `yaml:"width"`
	Height     Dimension  `yaml:"height"`
	MinHeight  Dimension  `yaml:"minHeight"`
}

// Config is a complete banner configuration as supplied by the
// configuration collaborator.
type Config struct {
	SchemaVersion   string                   `yaml:"schemaVersion,omitempty"`
	DefaultLanguage string                   `yaml:"defaultLanguage,omitempty"`
	Languages       []string                 `yaml:"languages,omitempty"`
	Layout          map[Device]LayoutProfile `yaml:"layout"`
	Components      []Node                   `yaml:"components"`
}

// ResolveStyle returns the node's style for device. A missing device key
// resolves to the empty style, never to an error.
func ResolveStyle(n *Node, device Device) StyleAttributes {
	return n.Style[device]
}

// ResolvePosition returns the node's position for device, or the zero
// position when the device key is absent.
func ResolvePosition(n *Node, device Device) Position {
	return n.Position[device]
}

// ResolveContainerConfig returns the node's container settings for device,
// or the zero config (free mode) when the device key is absent.
func ResolveContainerConfig(n *Node, device Device) ContainerConfig {
	return n.ContainerConfig[device]
}

// ResolveLayout returns the layout profile for device and whether the key
// was present.
func (c *Config) ResolveLayout(device Device) (LayoutProfile, bool) {
	p, ok := c.Layout[device]
	return p, ok
}

package render

import (
	"fmt"

	"github.com/go-drift/bannerkit/pkg/banner"
)

// Component is a decoded banner node. The set of implementations is closed:
// [Text], [Button], [Image], [Container] and [LanguageSelector].
type Component interface {
	// Node returns the configuration node the component was decoded from.
	Node() *banner.Node
	// Type returns the component's type.
	Type() banner.ComponentType
	// Accept calls the visitor method matching the component's variant.
	Accept(v Visitor)

	component()
}

// Visitor handles each component variant.
type Visitor interface {
	VisitText(c *Text)
	VisitButton(c *Button)
	VisitImage(c *Image)
	VisitContainer(c *Container)
	VisitLanguageSelector(c *LanguageSelector)
}

// Text is a static block of (possibly multilingual) text.
type Text struct{ node *banner.Node }

// Button triggers one action of the fixed vocabulary.
type Button struct {
	node *banner.Node
	// Action is the parsed action; unrecognised values are ActionNone.
	Action banner.Action
}

// Image shows an image resolved through the source chain.
type Image struct{ node *banner.Node }

// Container positions its children with one of the layout modes.
type Container struct{ node *banner.Node }

// LanguageSelector is drawn by a [SelectorRenderer].
type LanguageSelector struct{ node *banner.Node }

// Node returns the configuration node the Text was decoded from.
func (c *Text) Node() *banner.Node { return c.node }

// Type returns banner.TypeText.
func (c *Text) Type() banner.ComponentType { return banner.TypeText }

// Accept calls v.VisitText.
func (c *Text) Accept(v Visitor) { v.VisitText(c) }

// Node returns the configuration node the Button was decoded from.
func (c *Button) Node() *banner.Node { return c.node }

// Type returns banner.TypeButton.
func (c *Button) Type() banner.ComponentType { return banner.TypeButton }

// Accept calls v.VisitButton.
func (c *Button) Accept(v Visitor) { v.VisitButton(c) }

// Node returns the configuration node the Image was decoded from.
func (c *Image) Node() *banner.Node { return c.node }

// Type returns banner.TypeImage.
func (c *Image) Type() banner.ComponentType { return banner.TypeImage }

// Accept calls v.VisitImage.
func (c *Image) Accept(v Visitor) { v.VisitImage(c) }

// Node returns the configuration node the Container was decoded from.
func (c *Container) Node() *banner.Node { return c.node }

// Type returns banner.TypeContainer.
func (c *Container) Type() banner.ComponentType { return banner.TypeContainer }

// Accept calls v.VisitContainer.
func (c *Container) Accept(v Visitor) { v.VisitContainer(c) }

// Node returns the configuration node the LanguageSelector was decoded from.
func (c *LanguageSelector) Node() *banner.Node { return c.node }

// Type returns banner.TypeLanguageSelector.
func (c *LanguageSelector) Type() banner.ComponentType { return banner.TypeLanguageSelector }

// Accept calls v.VisitLanguageSelector.
func (c *LanguageSelector) Accept(v Visitor) { v.VisitLanguageSelector(c) }

func (*Text) component()             {}
func (*Button) component()           {}
func (*Image) component()            {}
func (*Container) component()        {}
func (*LanguageSelector) component() {}

// Children returns the container's child nodes in render order.
func (c *Container) Children() []banner.Node { return c.node.Children }

// UnknownTypeError is returned by Decode for a type outside the component
// vocabulary.
type UnknownTypeError struct {
	Type string
	// Suggestion is the closest known type, if any is close enough.
	Suggestion string
}

func (e *UnknownTypeError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("unknown component type %q (did you mean %q?)", e.Type, e.Suggestion)
	}
	return fmt.Sprintf("unknown component type %q", e.Type)
}

// Decode returns the component variant for n.
func Decode(n *banner.Node) (Component, error) {
	typ, ok := banner.ParseComponentType(n.Type)
	if !ok {
		names := make([]string, len(banner.ComponentTypes))
		for i, t := range banner.ComponentTypes {
			names[i] = string(t)
		}
		return nil, &UnknownTypeError{Type: n.Type, Suggestion: banner.Suggest(n.Type, names)}
	}
	switch typ {
	case banner.TypeText:
		return &Text{node: n}, nil
	case banner.TypeButton:
		action, _ := banner.ParseAction(n.Action)
		return &Button{node: n, Action: action}, nil
	case banner.TypeImage:
		return &Image{node: n}, nil
	case banner.TypeContainer:
		return &Container{node: n}, nil
	default:
		return &LanguageSelector{node: n}, nil
	}
}

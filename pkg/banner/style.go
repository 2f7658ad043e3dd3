package banner

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// Property is one opaque CSS declaration carried through layout untouched.
type Property struct {
	Name  string
	Value string
}

// StyleAttributes is the per-device style of a component. Only the size
// fields are interpreted by geometry; everything else is kept in Extra in
// source order.
type StyleAttributes struct {
	Width     Dimension
	Height    Dimension
	MinWidth  Dimension
	MinHeight Dimension
	MaxWidth  Dimension
	MaxHeight Dimension

	// PreviewURL overrides image resolution for editor previews.
	PreviewURL string
	// BlobID names a temporary upload registered with the blob registry.
	BlobID string

	Extra []Property
}

// Get returns the value of an opaque property, matching names
// case-insensitively and ignoring '-' so "textAlign" matches "text-align".
func (s StyleAttributes) Get(name string) (string, bool) {
	key := normalizeKey(name)
	for _, p := range s.Extra {
		if normalizeKey(p.Name) == key {
			return p.Value, true
		}
	}
	return "", false
}

// sizeField returns a pointer to the size field for a normalized key.
func (s *StyleAttributes) sizeField(key string) *Dimension {
	switch key {
	case "width":
		return &s.Width
	case "height":
		return &s.Height
	case "minwidth":
		return &s.MinWidth
	case "minheight":
		return &s.MinHeight
	case "maxwidth":
		return &s.MaxWidth
	case "maxheight":
		return &s.MaxHeight
	}
	return nil
}

// UnmarshalYAML decodes a style mapping, keeping unknown keys in order.
func (s *StyleAttributes) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return shapeError("style", value, "must be a mapping")
	}
	var out StyleAttributes
	for i := 0; i+1 < len(value.Content); i += 2 {
		k, v := value.Content[i], value.Content[i+1]
		key := normalizeKey(k.Value)
		if f := out.sizeField(key); f != nil {
			if err := v.Decode(f); err != nil {
				return err
			}
			continue
		}
		switch key {
		case "previewurl":
			out.PreviewURL = v.Value
		case "blobid":
			out.BlobID = v.Value
		default:
			if v.Kind != yaml.ScalarNode {
				continue
			}
			out.Extra = append(out.Extra, Property{Name: k.Value, Value: v.Value})
		}
	}
	*s = out
	return nil
}

// MarshalYAML encodes the style as a mapping.
func (s StyleAttributes) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	add := func(k, v string) {
		if v == "" {
			return
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: k},
			&yaml.Node{Kind: yaml.ScalarNode, Value: v})
	}
	add("width", s.Width.String())
	add("height", s.Height.String())
	add("minWidth", s.MinWidth.String())
	add("minHeight", s.MinHeight.String())
	add("maxWidth", s.MaxWidth.String())
	add("maxHeight", s.MaxHeight.String())
	add("previewUrl", s.PreviewURL)
	add("blobId", s.BlobID)
	for _, p := range s.Extra {
		add(p.Name, p.Value)
	}
	return node, nil
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.ReplaceAll(s, "-", ""), "_", ""))
}

package banner

import (
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ContentKind identifies which variant a [Content] holds.
type ContentKind int

const (
	// ContentNone is empty content.
	ContentNone ContentKind = iota
	// ContentString is a plain string.
	ContentString
	// ContentText is an object with a "text" field.
	ContentText
	// ContentTexts is an object with a "texts" language map.
	ContentTexts
	// ContentURL is an object with a "url" field.
	ContentURL
)

// Content is a component's content descriptor: a string, {text}, {texts} or
// {url}. Object forms keep every field that was present; Kind names the
// primary variant in the order texts, text, url.
type Content struct {
	Kind  ContentKind
	Text  string
	Texts map[string]string
	URL   string
}

// StringContent returns plain string content.
func StringContent(s string) Content {
	return Content{Kind: ContentString, Text: s}
}

// TextsContent returns multilingual content.
func TextsContent(texts map[string]string) Content {
	return Content{Kind: ContentTexts, Texts: texts}
}

// URLContent returns an object content descriptor with a url field.
func URLContent(url string) Content {
	return Content{Kind: ContentURL, URL: url}
}

// IsEmpty reports whether there is no content at all.
func (c Content) IsEmpty() bool {
	return c.Text == "" && len(c.Texts) == 0 && c.URL == ""
}

// Languages returns the keys of the language map in sorted order.
func (c Content) Languages() []string {
	langs := make([]string, 0, len(c.Texts))
	for lang := range c.Texts {
		langs = append(langs, lang)
	}
	slices.Sort(langs)
	return langs
}

// Display resolves the string to show for lang. Multilingual content tries
// lang, then fallback, then the first language in sorted order.
func (c Content) Display(lang, fallback string) string {
	if len(c.Texts) > 0 {
		for _, key := range []string{lang, fallback} {
			if key == "" {
				continue
			}
			if s, ok := c.Texts[key]; ok && strings.TrimSpace(s) != "" {
				return s
			}
		}
		for _, key := range c.Languages() {
			if s := c.Texts[key]; strings.TrimSpace(s) != "" {
				return s
			}
		}
	}
	if c.Text != "" {
		return c.Text
	}
	return ""
}

// UnmarshalYAML decodes either a scalar or one of the object forms.
func (c *Content) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*c = Content{}
			return nil
		}
		*c = StringContent(value.Value)
		return nil
	case yaml.MappingNode:
		var raw struct {
			Text  string            `yaml:"text"`
			Texts map[string]string `yaml:"texts"`
			URL   string            `yaml:"url"`
		}
		if err := value.Decode(&raw); err != nil {
			return err
		}
		out := Content{Text: raw.Text, Texts: raw.Texts, URL: raw.URL}
		switch {
		case len(raw.Texts) > 0:
			out.Kind = ContentTexts
		case raw.Text != "":
			out.Kind = ContentText
		case raw.URL != "":
			out.Kind = ContentURL
		}
		*c = out
		return nil
	default:
		return shapeError("content", value, "must be a string or an object")
	}
}

// MarshalYAML encodes the content back to its source form.
func (c Content) MarshalYAML() (any, error) {
	switch c.Kind {
	case ContentNone:
		return nil, nil
	case ContentString:
		return c.Text, nil
	}
	out := map[string]any{}
	if c.Text != "" {
		out["text"] = c.Text
	}
	if len(c.Texts) > 0 {
		out["texts"] = c.Texts
	}
	if c.URL != "" {
		out["url"] = c.URL
	}
	return out, nil
}

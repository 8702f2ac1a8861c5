package mdast

import "encoding/json"

type jsonNode struct {
	Type     Kind       `json:"type"`
	Depth    int        `json:"depth,omitempty"`
	Ordered  *bool      `json:"ordered,omitempty"`
	Start    *int       `json:"start,omitempty"`
	Spread   *bool      `json:"spread,omitempty"`
	Checked  *bool      `json:"checked,omitempty"`
	Lang     string     `json:"lang,omitempty"`
	Meta     any        `json:"meta,omitempty"`
	URL      string     `json:"url,omitempty"`
	Title    string     `json:"title,omitempty"`
	Alt      string     `json:"alt,omitempty"`
	Value    *string    `json:"value,omitempty"`
	Children []jsonNode `json:"children,omitempty"`
}

// MarshalJSON encodes the tree rooted at n using mdast field names, with a
// "type" discriminator on every node.
func MarshalJSON(n Node) ([]byte, error) {
	return json.Marshal(toJSON(n))
}

func toJSON(n Node) jsonNode {
	out := jsonNode{Type: n.Kind()}
	switch v := n.(type) {
	case *Root:
		if v.Meta != nil {
			out.Meta = v.Meta
		}
	case *Heading:
		out.Depth = v.Depth
	case *List:
		out.Ordered = &v.Ordered
		out.Start = v.Start
		out.Spread = &v.Spread
	case *ListItem:
		out.Spread = &v.Spread
		out.Checked = v.Checked
	case *Code:
		out.Lang = v.Lang
		if v.Meta != "" {
			out.Meta = v.Meta
		}
		out.Value = &v.Value
	case *Link:
		out.URL = v.URL
		out.Title = v.Title
	case *Image:
		out.URL = v.URL
		out.Title = v.Title
		out.Alt = v.Alt
	case *Text:
		out.Value = &v.Value
	case *InlineCode:
		out.Value = &v.Value
	case *Yaml:
		out.Value = &v.Value
	case *Import:
		out.Value = &v.Value
	case *Export:
		out.Value = &v.Value
	case *JSX:
		out.Value = &v.Value
	case *Paragraph, *Blockquote, *Strong, *Emphasis, *ThematicBreak, *Break:
	}

	if p, ok := n.(Parent); ok {
		out.Children = make([]jsonNode, 0, len(p.GetChildren()))
		for _, child := range p.GetChildren() {
			out.Children = append(out.Children, toJSON(child))
		}
	}
	return out
}

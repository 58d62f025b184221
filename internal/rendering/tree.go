package rendering

// Kind identifies the role of a Block in a rendered document.
type Kind string

// Block kinds. Header, Section, Entry and Row are containers; the rest are leaves.
const (
	KindHeader  Kind = "header"
	KindSection Kind = "section"
	KindEntry   Kind = "entry"
	KindRow     Kind = "row"
	KindHeading Kind = "heading"
	KindText    Kind = "text"
	KindLink    Kind = "link"
	KindBadges  Kind = "badges"
	KindRule    Kind = "rule"
)

// Font is a generic font family. Engines map it to a concrete face.
type Font string

// Font families used by the built-in templates.
const (
	FontMono Font = "mono"
	FontSans Font = "sans"
)

// Align is horizontal text alignment.
type Align string

// Alignments.
const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// Style is the presentation of a single block. Sizes are in points and colors are
// hex strings such as "#1F2937".
type Style struct {
	Font         Font    `json:"font,omitempty"`
	FontSize     float64 `json:"font_size,omitempty"`
	Bold         bool    `json:"bold,omitempty"`
	Italic       bool    `json:"italic,omitempty"`
	Uppercase    bool    `json:"uppercase,omitempty"`
	Color        string  `json:"color,omitempty"`
	Background   string  `json:"background,omitempty"`
	Align        Align   `json:"align,omitempty"`
	MarginTop    float64 `json:"margin_top,omitempty"`
	MarginBottom float64 `json:"margin_bottom,omitempty"`
	Padding      float64 `json:"padding,omitempty"`
	BorderColor  string  `json:"border_color,omitempty"`
}

// Block is one node of the styled box tree.
type Block struct {
	Kind     Kind     `json:"kind"`
	Section  string   `json:"section,omitempty"`
	Text     string   `json:"text,omitempty"`
	Href     string   `json:"href,omitempty"`
	Items    []string `json:"items,omitempty"`
	Style    Style    `json:"style"`
	Children []Block  `json:"children,omitempty"`
}

// Document is the output of a Renderer: a page style and an ordered list of
// top-level blocks. Page geometry is decided by the layout package, not here.
type Document struct {
	Template string  `json:"template"`
	Title    string  `json:"title"`
	Page     Style   `json:"page"`
	Blocks   []Block `json:"blocks"`
}

// Sections returns the section identifiers present in the document, in order.
func (d *Document) Sections() []string {
	var out []string
	for _, b := range d.Blocks {
		if b.Kind == KindSection {
			out = append(out, b.Section)
		}
	}
	return out
}

// Find returns the first section block with the given identifier.
func (d *Document) Find(section string) (Block, bool) {
	for _, b := range d.Blocks {
		if b.Kind == KindSection && b.Section == section {
			return b, true
		}
	}
	return Block{}, false
}

// Walk visits every block depth-first, parents before children.
func (b Block) Walk(fn func(Block)) {
	fn(b)
	for _, c := range b.Children {
		c.Walk(fn)
	}
}

// Texts collects all text content beneath the block.
func (b Block) Texts() []string {
	var out []string
	b.Walk(func(n Block) {
		if n.Text != "" {
			out = append(out, n.Text)
		}
		out = append(out, n.Items...)
	})
	return out
}

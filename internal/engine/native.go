package engine

import (
	"bytes"
	"context"
	"log"
	"math"
	"strconv"

	"github.com/jung-kurt/gofpdf"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/rendering"
)

const (
	defaultPagePadding = 30.0
	defaultFontSize    = 11.0
	lineSpacing        = 1.25
	inlineGap          = 8.0
	badgeGap           = 4.0
)

// NativeEngine draws the box tree directly with gofpdf. It needs no browser and uses the
// PDF core fonts, so text outside Windows-1252 is approximated.
type NativeEngine struct {
	opts Options
}

// NewNativeEngine creates a pure-Go engine.
func NewNativeEngine(opts Options) *NativeEngine {
	return &NativeEngine{opts: opts}
}

// Name implements Engine.
func (e *NativeEngine) Name() string { return KindNative }

// Render implements Engine.
func (e *NativeEngine) Render(ctx context.Context, doc *rendering.Document, pg layout.PageSize) ([]byte, error) {
	if err := checkInput(KindNative, doc, pg); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, &RenderError{Engine: KindNative, Message: "cancelled", Cause: err}
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: pg.Width, Ht: pg.Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(doc.Title, true)
	pdf.SetCreator("resume-builder", false)
	pdf.AddPage()

	d := &drawer{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		page: doc.Page,
	}

	if bg, ok := parseHex(doc.Page.Background); ok {
		d.fill(bg)
		pdf.Rect(0, 0, pg.Width, pg.Height, "F")
	}

	pad := doc.Page.Padding
	if pad <= 0 {
		pad = defaultPagePadding
	}
	d.y = pad
	for _, b := range doc.Blocks {
		d.block(b, pad, pg.Width-2*pad)
	}

	if d.y > pg.Height && e.opts.Verbose {
		log.Printf("[NATIVE] Content height %.0fpt exceeds page height %.0fpt", d.y, pg.Height)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Engine: KindNative, Message: "failed to encode PDF", Cause: err}
	}
	return buf.Bytes(), nil
}

// drawer walks the tree top to bottom. In dry mode it only advances the cursor, which
// is how container backgrounds are sized before their children are drawn.
type drawer struct {
	pdf  *gofpdf.Fpdf
	tr   func(string) string
	page rendering.Style
	y    float64
	dry  bool
}

func (d *drawer) block(b rendering.Block, x, w float64) {
	st := b.Style
	d.y += st.MarginTop

	switch b.Kind {
	case rendering.KindHeading:
		d.textLines(b.Text, st, x, w, "")
		if c, ok := parseHex(st.BorderColor); ok && !d.dry {
			d.draw(c)
			d.pdf.SetLineWidth(1)
			d.pdf.Line(x, d.y+1, x+w, d.y+1)
		}
		d.y += 3
	case rendering.KindText:
		d.textLines(b.Text, st, x, w, "")
	case rendering.KindLink:
		d.textLines(b.Text, st, x, w, b.Href)
	case rendering.KindBadges:
		d.badges(b.Items, st, x, w)
	case rendering.KindRule:
		if c, ok := parseHex(st.BorderColor); ok && !d.dry {
			d.draw(c)
			d.pdf.Line(x, d.y, x+w, d.y)
		}
		d.y += 2
	case rendering.KindRow:
		d.row(b, x, w)
	default:
		d.container(b, x, w)
	}

	d.y += st.MarginBottom
}

func (d *drawer) container(b rendering.Block, x, w float64) {
	st := b.Style
	if bg, ok := parseHex(st.Background); ok && !d.dry {
		top := d.y
		d.dry = true
		d.children(b, x, w)
		height := d.y - top
		d.dry = false
		d.y = top
		d.fill(bg)
		d.pdf.Rect(x, top, w, height, "F")
	}
	d.children(b, x, w)
}

func (d *drawer) children(b rendering.Block, x, w float64) {
	pad := b.Style.Padding
	d.y += pad
	for _, c := range b.Children {
		if c.Style.Align == "" && b.Style.Align != "" && c.Kind != rendering.KindRow {
			c.Style.Align = b.Style.Align
		}
		d.block(c, x+pad, w-2*pad)
	}
	d.y += pad
}

// row lays children out on one line. Right-aligned children are pushed to the right edge
// and a centered row is centered as a whole.
func (d *drawer) row(b rendering.Block, x, w float64) {
	type cell struct {
		b     rendering.Block
		width float64
	}
	var left, right []cell
	var leftWidth, lineHeight float64
	for _, c := range b.Children {
		d.font(c.Style)
		cw := d.pdf.GetStringWidth(d.tr(c.Text)) + 2*c.Style.Padding
		if c.Style.Align == rendering.AlignRight {
			right = append(right, cell{c, cw})
		} else {
			left = append(left, cell{c, cw})
			leftWidth += cw + inlineGap
		}
		lineHeight = math.Max(lineHeight, lineHeightFor(d.size(c.Style))+2*c.Style.Padding)
	}
	leftWidth = math.Max(leftWidth-inlineGap, 0)

	cx := x
	if b.Style.Align == rendering.AlignCenter && len(right) == 0 {
		cx = x + math.Max((w-leftWidth)/2, 0)
	}
	for _, c := range left {
		d.cell(c.b, cx, c.width, lineHeight)
		cx += c.width + inlineGap
	}
	rx := x + w
	for i := len(right) - 1; i >= 0; i-- {
		rx -= right[i].width
		d.cell(right[i].b, rx, right[i].width, lineHeight)
		rx -= inlineGap
	}
	d.y += lineHeight
}

func (d *drawer) cell(b rendering.Block, x, w, h float64) {
	if d.dry {
		return
	}
	st := b.Style
	d.font(st)
	d.color(st.Color)
	fill := false
	if bg, ok := parseHex(st.Background); ok {
		d.fill(bg)
		fill = true
	}
	d.pdf.SetXY(x, d.y)
	d.pdf.CellFormat(w, h, d.tr(b.Text), "", 0, "CM", fill, 0, b.Href)
}

func (d *drawer) textLines(text string, st rendering.Style, x, w float64, href string) {
	if text == "" {
		return
	}
	d.font(st)
	h := lineHeightFor(d.size(st))
	lines := d.pdf.SplitLines([]byte(d.tr(text)), w)
	if d.dry {
		d.y += h * float64(len(lines))
		return
	}
	d.color(st.Color)
	align := "L"
	switch st.Align {
	case rendering.AlignCenter:
		align = "C"
	case rendering.AlignRight:
		align = "R"
	}
	for _, line := range lines {
		d.pdf.SetXY(x, d.y)
		d.pdf.CellFormat(w, h, string(line), "", 0, align, false, 0, href)
		d.y += h
	}
}

func (d *drawer) badges(items []string, st rendering.Style, x, w float64) {
	if len(items) == 0 {
		return
	}
	d.font(st)
	h := lineHeightFor(d.size(st)) + 2*st.Padding
	bg, hasBg := parseHex(st.Background)
	cx := x
	for _, item := range items {
		label := d.tr(item)
		bw := d.pdf.GetStringWidth(label) + 2*math.Max(st.Padding, 2)
		if cx > x && cx+bw > x+w {
			cx = x
			d.y += h + badgeGap
		}
		if !d.dry {
			d.color(st.Color)
			if hasBg {
				d.fill(bg)
			}
			d.pdf.SetXY(cx, d.y)
			d.pdf.CellFormat(bw, h, label, "", 0, "CM", hasBg, 0, "")
		}
		cx += bw + badgeGap
	}
	d.y += h + badgeGap
}

func (d *drawer) font(st rendering.Style) {
	family := st.Font
	if family == "" {
		family = d.page.Font
	}
	name := "Helvetica"
	if family == rendering.FontMono {
		name = "Courier"
	}
	style := ""
	if st.Bold {
		style += "B"
	}
	if st.Italic {
		style += "I"
	}
	d.pdf.SetFont(name, style, d.size(st))
}

func (d *drawer) size(st rendering.Style) float64 {
	if st.FontSize > 0 {
		return st.FontSize
	}
	if d.page.FontSize > 0 {
		return d.page.FontSize
	}
	return defaultFontSize
}

func (d *drawer) color(hex string) {
	c, ok := parseHex(hex)
	if !ok {
		c, ok = parseHex(d.page.Color)
	}
	if !ok {
		c = rgb{}
	}
	d.pdf.SetTextColor(c.r, c.g, c.b)
}

func (d *drawer) fill(c rgb) { d.pdf.SetFillColor(c.r, c.g, c.b) }
func (d *drawer) draw(c rgb) { d.pdf.SetDrawColor(c.r, c.g, c.b) }

func lineHeightFor(size float64) float64 {
	return size * lineSpacing
}

type rgb struct{ r, g, b int }

// parseHex reads #rgb and #rrggbb colors.
func parseHex(s string) (rgb, bool) {
	if len(s) == 0 || s[0] != '#' {
		return rgb{}, false
	}
	s = s[1:]
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return rgb{}, false
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return rgb{}, false
	}
	return rgb{int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff)}, true
}

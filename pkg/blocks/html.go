package blocks

import (
	"fmt"
	"html"
	"strings"
)

// GenerateHTML renders a block tree as one self-contained HTML document with
// the given subject line as its title. The function is pure: no I/O, no
// state, byte-identical output for identical input. All styling is inline or
// in the document's own style block because email clients strip external
// stylesheets and scripts.
//
// Unknown or malformed block types render as an empty string rather than
// failing, so a single bad block never aborts export of the rest of the
// template.
func GenerateHTML(tree []Block, subject string) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html>\n<head>\n")
	b.WriteString("<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(subject))
	b.WriteString("<style>\n")
	fmt.Fprintf(&b, "body{margin:0;padding:0;background-color:%s;font-family:Helvetica,Arial,sans-serif;}\n", defaultBodyBgColor)
	b.WriteString("img{border:0;display:inline-block;max-width:100%;}\n")
	b.WriteString("a{text-decoration:none;}\n")
	b.WriteString("</style>\n")
	b.WriteString("</head>\n<body>\n")
	b.WriteString("<div style=\"max-width:600px;margin:0 auto;background-color:#ffffff;padding:24px;\">\n")

	for i := range tree {
		b.WriteString(renderBlockHTML(tree[i]))
	}

	b.WriteString("</div>\n</body>\n</html>\n")
	return b.String()
}

func renderBlockHTML(block Block) string {
	switch block.Type {
	case BlockText:
		return renderTextHTML(block)
	case BlockImage:
		return renderImageHTML(block)
	case BlockButton:
		return renderButtonHTML(block)
	case BlockDivider:
		return fmt.Sprintf("<hr style=\"border:none;border-top:%s solid %s;margin:16px 0;\">\n",
			dividerWidth(block.Divider), dividerColor(block.Divider))
	case BlockSpacer:
		return fmt.Sprintf("<div style=\"height:%s;line-height:%s;font-size:0;\">&nbsp;</div>\n",
			spacerHeight(block.Spacer), spacerHeight(block.Spacer))
	case BlockSocial:
		return renderSocialHTML(block)
	case BlockColumns:
		return renderColumnsHTML(block)
	case BlockContainer, BlockSection:
		return renderContainerHTML(block)
	default:
		// Lenient policy: an unhandled type contributes nothing.
		return ""
	}
}

func renderTextHTML(block Block) string {
	align, color := AlignStart, defaultTextColor
	var pad string
	if block.Text != nil {
		if block.Text.Align != "" {
			align = block.Text.Align
		}
		if block.Text.TextColor != "" {
			color = block.Text.TextColor
		}
		pad = paddingCSS(block.Text.Padding)
	}
	// Content is authored HTML; it is emitted verbatim.
	return fmt.Sprintf("<div style=\"text-align:%s;color:%s;%smargin-bottom:16px;\">%s</div>\n",
		align.CSSTextAlign(), color, pad, block.Content)
}

func renderImageHTML(block Block) string {
	align := AlignCenter
	var width, height, alt, link string
	if block.Image != nil {
		if block.Image.Align != "" {
			align = block.Image.Align
		}
		width, height = block.Image.Width, block.Image.Height
		alt, link = block.Image.Alt, block.Image.Link
	}

	var attrs strings.Builder
	fmt.Fprintf(&attrs, " src=%q alt=%q", block.Content, alt)
	style := "max-width:100%;"
	if width != "" {
		fmt.Fprintf(&attrs, " width=%q", width)
		style += "width:" + cssLength(width) + ";"
	}
	if height != "" {
		fmt.Fprintf(&attrs, " height=%q", height)
	}
	img := fmt.Sprintf("<img%s style=%q>", attrs.String(), style)
	if link != "" {
		img = fmt.Sprintf("<a href=%q>%s</a>", link, img)
	}
	return fmt.Sprintf("<div style=\"text-align:%s;margin-bottom:16px;\">%s</div>\n",
		align.CSSTextAlign(), img)
}

func renderButtonHTML(block Block) string {
	align := AlignCenter
	link, radius := "#", "4px"
	pad := Padding{Top: "12px", Right: "24px", Bottom: "12px", Left: "24px"}
	if block.Button != nil {
		if block.Button.Align != "" {
			align = block.Button.Align
		}
		if block.Button.Link != "" {
			link = block.Button.Link
		}
		if block.Button.BorderRadius != "" {
			radius = block.Button.BorderRadius
		}
		if !block.Button.Padding.IsZero() {
			pad = block.Button.Padding
		}
	}
	bg, color := buttonColors(block.Button)

	return fmt.Sprintf("<div style=\"text-align:%s;margin-bottom:16px;\">"+
		"<a href=%q style=\"display:inline-block;background-color:%s;color:%s;%sborder-radius:%s;font-weight:bold;\">%s</a></div>\n",
		align.CSSTextAlign(), link, bg, color, paddingCSS(pad), radius, html.EscapeString(block.Content))
}

func renderSocialHTML(block Block) string {
	align, size := AlignCenter, "32px"
	var icons []SocialIcon
	if block.Social != nil {
		if block.Social.Align != "" {
			align = block.Social.Align
		}
		if block.Social.IconSize != "" {
			size = block.Social.IconSize
		}
		icons = block.Social.Icons
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<div style=\"text-align:%s;margin-bottom:16px;\">", align.CSSTextAlign())
	for _, icon := range icons {
		fmt.Fprintf(&b, "<a href=%q style=\"display:inline-block;margin:0 6px;width:%s;height:%s;\">%s</a>",
			icon.URL, size, size, html.EscapeString(icon.Network))
	}
	b.WriteString("</div>\n")
	return b.String()
}

func renderColumnsHTML(block Block) string {
	count, gap := columnLayout(block.Layout)
	if len(block.Children) == 0 && block.Content != "" {
		// Childless column groups may carry raw content directly, like
		// containers.
		return fmt.Sprintf("<div style=\"margin-bottom:16px;\">%s</div>\n", block.Content)
	}
	cols := distributeColumns(block.Children, count)

	var b strings.Builder
	b.WriteString("<table role=\"presentation\" width=\"100%\" cellpadding=\"0\" cellspacing=\"0\" style=\"margin-bottom:16px;\"><tr>\n")
	width := 100 / count
	for i, col := range cols {
		style := "vertical-align:top;"
		if i > 0 {
			style += "padding-left:" + gap + ";"
		}
		// The last column absorbs the rounding remainder so widths total 100%.
		w := width
		if i == count-1 {
			w = 100 - width*(count-1)
		}
		fmt.Fprintf(&b, "<td width=\"%d%%\" style=%q>\n", w, style)
		for j := range col {
			b.WriteString(renderBlockHTML(col[j]))
		}
		b.WriteString("</td>\n")
	}
	b.WriteString("</tr></table>\n")
	return b.String()
}

func renderContainerHTML(block Block) string {
	var bg, pad string
	if block.Layout != nil {
		bg = block.Layout.BgColor
		pad = paddingCSS(block.Layout.Padding)
	}
	style := pad
	if bg != "" {
		style = "background-color:" + bg + ";" + style
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<div style=%q>\n", style)
	if len(block.Children) > 0 {
		for i := range block.Children {
			b.WriteString(renderBlockHTML(block.Children[i]))
		}
	} else if block.Content != "" {
		// Childless containers may carry raw content directly.
		b.WriteString(block.Content)
		b.WriteString("\n")
	}
	b.WriteString("</div>\n")
	return b.String()
}

// cssLength normalizes a bare numeric width ("600") to pixels for inline CSS
// while leaving explicit units ("50%", "10em") untouched.
func cssLength(v string) string {
	if v == "" {
		return v
	}
	for _, r := range v {
		if r < '0' || r > '9' {
			return v
		}
	}
	return v + "px"
}

package blocks

// Default colors shared by the HTML generator and the preview renderer. Both
// renderers must consume these and the helpers below rather than carrying
// their own copies of the layout rules.
const (
	defaultTextColor       = "#1f2933"
	defaultButtonBgColor   = "#2563eb"
	defaultButtonTextColor = "#ffffff"
	defaultDividerColor    = "#e5e7eb"
	defaultBodyBgColor     = "#f4f4f7"
	defaultDividerWidth    = "1px"
	defaultSpacerHeight    = "16px"
	defaultColumnGap       = "16px"
)

// CSSTextAlign maps a logical alignment to the CSS text-align value. Any
// value outside start/end, including the empty string, centers the block.
func (a Alignment) CSSTextAlign() string {
	switch a {
	case AlignStart:
		return "left"
	case AlignEnd:
		return "right"
	default:
		return "center"
	}
}

// distributeColumns assigns children to count logical columns round-robin by
// position (child index mod count). The distribution is always recomputed
// from the ordered children, never stored, so both renderers agree by
// construction. A count below 1 is treated as a single column.
func distributeColumns(children []Block, count int) [][]Block {
	if count < 1 {
		count = 1
	}
	cols := make([][]Block, count)
	for i := range children {
		c := i % count
		cols[c] = append(cols[c], children[i])
	}
	return cols
}

// dividerColor returns the configured divider color or the default.
func dividerColor(attrs *DividerAttrs) string {
	if attrs != nil && attrs.Color != "" {
		return attrs.Color
	}
	return defaultDividerColor
}

// dividerWidth returns the configured divider thickness or the default.
func dividerWidth(attrs *DividerAttrs) string {
	if attrs != nil && attrs.Width != "" {
		return attrs.Width
	}
	return defaultDividerWidth
}

// spacerHeight returns the configured spacer height or the default.
func spacerHeight(attrs *SpacerAttrs) string {
	if attrs != nil && attrs.Height != "" {
		return attrs.Height
	}
	return defaultSpacerHeight
}

// buttonColors returns the background and text colors for a button block,
// falling back to the shared defaults.
func buttonColors(attrs *ButtonAttrs) (bg, text string) {
	bg, text = defaultButtonBgColor, defaultButtonTextColor
	if attrs != nil {
		if attrs.BgColor != "" {
			bg = attrs.BgColor
		}
		if attrs.TextColor != "" {
			text = attrs.TextColor
		}
	}
	return bg, text
}

// columnLayout returns the column count and gap for a columns block.
func columnLayout(attrs *LayoutAttrs) (count int, gap string) {
	count, gap = 1, defaultColumnGap
	if attrs != nil {
		if attrs.ColumnCount > 0 {
			count = attrs.ColumnCount
		}
		if attrs.ColumnGap != "" {
			gap = attrs.ColumnGap
		}
	}
	return count, gap
}

// paddingCSS renders a Padding as CSS declarations, one per set side.
func paddingCSS(p Padding) string {
	var css string
	if p.Top != "" {
		css += "padding-top:" + p.Top + ";"
	}
	if p.Right != "" {
		css += "padding-right:" + p.Right + ";"
	}
	if p.Bottom != "" {
		css += "padding-bottom:" + p.Bottom + ";"
	}
	if p.Left != "" {
		css += "padding-left:" + p.Left + ";"
	}
	return css
}

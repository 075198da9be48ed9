package blocks

// PreviewNode is the on-screen representation of one block: the same layout
// decisions as the generated HTML, expressed as a structured node the host
// UI walks to draw the live preview. Unlike the exported document it carries
// interactive affordances (edit/delete controls) which must never leak into
// the generated HTML.
type PreviewNode struct {
	BlockID   string            `json:"blockId"`
	Type      BlockType         `json:"type"`
	TextAlign string            `json:"textAlign"`
	Styles    map[string]string `json:"styles,omitempty"`
	Content   string            `json:"content,omitempty"`
	Editable  bool              `json:"editable"`
	Deletable bool              `json:"deletable"`
	Columns   [][]*PreviewNode  `json:"columns,omitempty"`
	Children  []*PreviewNode    `json:"children,omitempty"`
}

// BuildPreview renders a block tree as preview nodes. It consumes the same
// rule table as GenerateHTML (alignment mapping, default colors, column
// distribution), so the two renderers cannot drift rule by rule.
func BuildPreview(tree []Block) []*PreviewNode {
	nodes := make([]*PreviewNode, 0, len(tree))
	for i := range tree {
		if node := buildPreviewNode(tree[i]); node != nil {
			nodes = append(nodes, node)
		}
	}
	return nodes
}

func buildPreviewNode(block Block) *PreviewNode {
	node := &PreviewNode{
		BlockID:   block.ID,
		Type:      block.Type,
		Content:   block.Content,
		Deletable: true,
		Styles:    map[string]string{},
	}

	switch block.Type {
	case BlockText:
		align, color := AlignStart, defaultTextColor
		if block.Text != nil {
			if block.Text.Align != "" {
				align = block.Text.Align
			}
			if block.Text.TextColor != "" {
				color = block.Text.TextColor
			}
		}
		node.TextAlign = align.CSSTextAlign()
		node.Styles["color"] = color
		node.Editable = true

	case BlockImage:
		align := AlignCenter
		if block.Image != nil && block.Image.Align != "" {
			align = block.Image.Align
		}
		node.TextAlign = align.CSSTextAlign()
		if block.Image != nil && block.Image.Width != "" {
			node.Styles["width"] = cssLength(block.Image.Width)
		}

	case BlockButton:
		align := AlignCenter
		if block.Button != nil && block.Button.Align != "" {
			align = block.Button.Align
		}
		bg, color := buttonColors(block.Button)
		node.TextAlign = align.CSSTextAlign()
		node.Styles["background-color"] = bg
		node.Styles["color"] = color
		node.Editable = true

	case BlockDivider:
		node.Styles["border-top-color"] = dividerColor(block.Divider)

	case BlockSpacer:
		node.Styles["height"] = spacerHeight(block.Spacer)

	case BlockSocial:
		align := AlignCenter
		if block.Social != nil && block.Social.Align != "" {
			align = block.Social.Align
		}
		node.TextAlign = align.CSSTextAlign()

	case BlockColumns:
		count, gap := columnLayout(block.Layout)
		node.Styles["column-gap"] = gap
		for _, col := range distributeColumns(block.Children, count) {
			column := make([]*PreviewNode, 0, len(col))
			for i := range col {
				if child := buildPreviewNode(col[i]); child != nil {
					column = append(column, child)
				}
			}
			node.Columns = append(node.Columns, column)
		}

	case BlockContainer, BlockSection:
		if block.Layout != nil && block.Layout.BgColor != "" {
			node.Styles["background-color"] = block.Layout.BgColor
		}
		node.Children = BuildPreview(block.Children)

	default:
		// Same lenient policy as the HTML generator.
		return nil
	}

	return node
}

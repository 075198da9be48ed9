package blocks

import (
	"fmt"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"
)

// BlockType identifies the variant of a content block.
type BlockType string

const (
	BlockText      BlockType = "text"
	BlockImage     BlockType = "image"
	BlockButton    BlockType = "button"
	BlockDivider   BlockType = "divider"
	BlockSpacer    BlockType = "spacer"
	BlockSocial    BlockType = "social"
	BlockContainer BlockType = "container"
	BlockColumns   BlockType = "columns"
	BlockSection   BlockType = "section"
)

// Alignment is a logical horizontal alignment. Both renderers map it to a
// visual side through the same rule (see layout.go).
type Alignment string

const (
	AlignStart  Alignment = "start"
	AlignCenter Alignment = "center"
	AlignEnd    Alignment = "end"
)

// Padding holds per-side spacing in CSS units ("10px", "1em", ...).
type Padding struct {
	Top    string `json:"top,omitempty"`
	Right  string `json:"right,omitempty"`
	Bottom string `json:"bottom,omitempty"`
	Left   string `json:"left,omitempty"`
}

// IsZero reports whether no side is set.
func (p Padding) IsZero() bool {
	return p.Top == "" && p.Right == "" && p.Bottom == "" && p.Left == ""
}

// TextAttrs styles a text block. Content carries the authored HTML snippet.
type TextAttrs struct {
	Align     Alignment `json:"align,omitempty"`
	TextColor string    `json:"textColor,omitempty"`
	Padding   Padding   `json:"padding,omitempty"`
}

// ImageAttrs styles an image block. Content carries the image source, either
// a hosted URL or a data URL not yet resolved by the asset resolver.
type ImageAttrs struct {
	Align  Alignment `json:"align,omitempty"`
	Width  string    `json:"width,omitempty"`
	Height string    `json:"height,omitempty"`
	Alt    string    `json:"alt,omitempty"`
	Link   string    `json:"link,omitempty"`
}

// ButtonAttrs styles a button block. Content carries the label text.
type ButtonAttrs struct {
	Align        Alignment `json:"align,omitempty"`
	Link         string    `json:"link,omitempty"`
	BgColor      string    `json:"bgColor,omitempty"`
	TextColor    string    `json:"textColor,omitempty"`
	BorderRadius string    `json:"borderRadius,omitempty"`
	Padding      Padding   `json:"padding,omitempty"`
}

// DividerAttrs styles a divider block.
type DividerAttrs struct {
	Color string `json:"color,omitempty"`
	Width string `json:"width,omitempty"`
}

// SpacerAttrs styles a spacer block.
type SpacerAttrs struct {
	Height string `json:"height,omitempty"`
}

// SocialIcon is one entry in a social block.
type SocialIcon struct {
	Network string `json:"network"`
	URL     string `json:"url"`
}

// SocialAttrs styles a social block.
type SocialAttrs struct {
	Align    Alignment    `json:"align,omitempty"`
	IconSize string       `json:"iconSize,omitempty"`
	Icons    []SocialIcon `json:"icons,omitempty"`
}

// LayoutAttrs styles the container-capable blocks: container, section and
// columns. ColumnCount and ColumnGap are only meaningful for columns.
type LayoutAttrs struct {
	Align       Alignment `json:"align,omitempty"`
	BgColor     string    `json:"bgColor,omitempty"`
	Padding     Padding   `json:"padding,omitempty"`
	ColumnCount int       `json:"columnCount,omitempty"`
	ColumnGap   string    `json:"columnGap,omitempty"`
}

// Block is one node of an email template's content tree. Exactly one variant
// attribute pointer is set, matching Type, so invalid attribute combinations
// are unrepresentable. Children are only meaningful for container-capable
// types; everything else is a leaf.
type Block struct {
	ID       string    `json:"id"`
	Type     BlockType `json:"type"`
	Content  string    `json:"content,omitempty"`
	ImageKey string    `json:"imageKey,omitempty"`
	Children []Block   `json:"children,omitempty"`

	Text    *TextAttrs    `json:"text,omitempty"`
	Image   *ImageAttrs   `json:"image,omitempty"`
	Button  *ButtonAttrs  `json:"button,omitempty"`
	Divider *DividerAttrs `json:"divider,omitempty"`
	Spacer  *SpacerAttrs  `json:"spacer,omitempty"`
	Social  *SocialAttrs  `json:"social,omitempty"`
	Layout  *LayoutAttrs  `json:"layout,omitempty"`
}

// IsContainer reports whether the block type may hold children.
func (t BlockType) IsContainer() bool {
	switch t {
	case BlockContainer, BlockColumns, BlockSection:
		return true
	}
	return false
}

// IsKnown reports whether the type belongs to the variant set.
func (t BlockType) IsKnown() bool {
	switch t {
	case BlockText, BlockImage, BlockButton, BlockDivider, BlockSpacer,
		BlockSocial, BlockContainer, BlockColumns, BlockSection:
		return true
	}
	return false
}

// New creates a block of the given type with a fresh ID and the default
// content and attributes for that variant. Unknown types get a bare block
// with just an ID so downstream rendering can skip them leniently.
func New(t BlockType) Block {
	b := Block{
		ID:   uuid.New().String(),
		Type: t,
	}

	switch t {
	case BlockText:
		b.Content = "<p>Write something...</p>"
		b.Text = &TextAttrs{Align: AlignStart, TextColor: defaultTextColor}
	case BlockImage:
		b.Image = &ImageAttrs{Align: AlignCenter, Width: "600"}
	case BlockButton:
		b.Content = "Click me"
		b.Button = &ButtonAttrs{
			Align:        AlignCenter,
			BgColor:      defaultButtonBgColor,
			TextColor:    defaultButtonTextColor,
			BorderRadius: "4px",
			Padding:      Padding{Top: "12px", Right: "24px", Bottom: "12px", Left: "24px"},
		}
	case BlockDivider:
		b.Divider = &DividerAttrs{Color: defaultDividerColor, Width: "1px"}
	case BlockSpacer:
		b.Spacer = &SpacerAttrs{Height: "24px"}
	case BlockSocial:
		b.Social = &SocialAttrs{Align: AlignCenter, IconSize: "32px"}
	case BlockContainer, BlockSection:
		b.Layout = &LayoutAttrs{Padding: Padding{Top: "16px", Bottom: "16px"}}
	case BlockColumns:
		b.Layout = &LayoutAttrs{ColumnCount: 2, ColumnGap: "16px"}
	}

	return b
}

// Clone returns a deep copy of the block: attributes are copied and children
// are cloned recursively, so the result shares no memory with the receiver.
func (b Block) Clone() Block {
	out := b
	out.Text = clonePtr(b.Text)
	out.Image = clonePtr(b.Image)
	out.Button = clonePtr(b.Button)
	out.Divider = clonePtr(b.Divider)
	out.Spacer = clonePtr(b.Spacer)
	out.Social = cloneSocial(b.Social)
	out.Layout = clonePtr(b.Layout)
	out.Children = CloneTree(b.Children)
	return out
}

// CloneTree deep-copies an ordered block sequence. A nil input yields nil.
func CloneTree(tree []Block) []Block {
	if tree == nil {
		return nil
	}
	out := make([]Block, len(tree))
	for i := range tree {
		out[i] = tree[i].Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneSocial(p *SocialAttrs) *SocialAttrs {
	if p == nil {
		return nil
	}
	v := *p
	if p.Icons != nil {
		v.Icons = make([]SocialIcon, len(p.Icons))
		copy(v.Icons, p.Icons)
	}
	return &v
}

// Validate checks the block and its subtree against the model invariants:
// non-empty unique ids, known types, variant attributes matching the type,
// children only under container-capable blocks, and columnCount >= 1 for
// columns blocks.
func (b Block) Validate() error {
	seen := make(map[string]struct{})
	return b.validate(seen)
}

// ValidateTree validates every block of a top-level sequence and enforces id
// uniqueness across the whole tree.
func ValidateTree(tree []Block) error {
	seen := make(map[string]struct{})
	for i := range tree {
		if err := tree[i].validate(seen); err != nil {
			return err
		}
	}
	return nil
}

func (b Block) validate(seen map[string]struct{}) error {
	if b.ID == "" {
		return fmt.Errorf("invalid block: id is required")
	}
	if _, dup := seen[b.ID]; dup {
		return fmt.Errorf("invalid block %s: duplicate id", b.ID)
	}
	seen[b.ID] = struct{}{}

	if !b.Type.IsKnown() {
		return fmt.Errorf("invalid block %s: unknown type %q", b.ID, b.Type)
	}
	if err := b.validateVariant(); err != nil {
		return err
	}
	if len(b.Children) > 0 && !b.Type.IsContainer() {
		return fmt.Errorf("invalid block %s: type %s cannot have children", b.ID, b.Type)
	}
	if b.Type == BlockColumns {
		if b.Layout == nil || b.Layout.ColumnCount < 1 {
			return fmt.Errorf("invalid block %s: columns block needs columnCount >= 1", b.ID)
		}
	}
	if b.Type == BlockButton && b.Button != nil && b.Button.Link != "" {
		if !govalidator.IsURL(b.Button.Link) {
			return fmt.Errorf("invalid block %s: button link is not a valid URL", b.ID)
		}
	}

	for i := range b.Children {
		if err := b.Children[i].validate(seen); err != nil {
			return err
		}
	}
	return nil
}

func (b Block) validateVariant() error {
	variants := map[BlockType]bool{
		BlockText:      b.Text != nil,
		BlockImage:     b.Image != nil,
		BlockButton:    b.Button != nil,
		BlockDivider:   b.Divider != nil,
		BlockSpacer:    b.Spacer != nil,
		BlockSocial:    b.Social != nil,
		BlockContainer: b.Layout != nil,
		BlockColumns:   b.Layout != nil,
		BlockSection:   b.Layout != nil,
	}
	for t, set := range variants {
		if !set {
			continue
		}
		if t == b.Type {
			continue
		}
		// Layout attrs are shared by the three container-capable types.
		if b.Layout != nil && t.IsContainer() && b.Type.IsContainer() {
			continue
		}
		return fmt.Errorf("invalid block %s: %s attributes on %s block", b.ID, t, b.Type)
	}
	return nil
}

// FindByID returns the block with the given id anywhere in the tree, or nil.
func FindByID(tree []Block, id string) *Block {
	for i := range tree {
		if tree[i].ID == id {
			return &tree[i]
		}
		if found := FindByID(tree[i].Children, id); found != nil {
			return found
		}
	}
	return nil
}

package blocks

// Editor owns the live, in-session block tree and exposes the mutation
// operations behind the builder UI. Every operation rebuilds the tree by
// structural copy and returns the new top-level sequence; the previous tree
// is never mutated in place, so snapshots handed out earlier stay valid.
// Operations on unknown ids are silent no-ops: drag-and-drop and async edit
// callbacks can race against a tree that has since changed shape, and that
// must never panic or error.
//
// Editor is not safe for concurrent use. The builder runs on a single event
// loop; all mutations are synchronous and atomic with respect to each other.
type Editor struct {
	tree []Block

	editing *editSession
}

type editSession struct {
	blockID string
	draft   string
}

// NewEditor bootstraps an editor from the host's initial block sequence. The
// input is cloned, so the host's slice is never aliased.
func NewEditor(initial []Block) *Editor {
	return &Editor{tree: CloneTree(initial)}
}

// Blocks returns a read-only snapshot of the current tree.
func (e *Editor) Blocks() []Block {
	return CloneTree(e.tree)
}

// AddBlock appends a new default block of the given type to the top-level
// sequence, or to the children of parentID when given. A parentID that does
// not resolve to a container-capable block is a no-op.
func (e *Editor) AddBlock(t BlockType, parentID string) []Block {
	next := CloneTree(e.tree)

	if parentID == "" {
		next = append(next, New(t))
		e.tree = next
		return e.Blocks()
	}

	parent := FindByID(next, parentID)
	if parent == nil || !parent.Type.IsContainer() {
		return e.Blocks()
	}
	parent.Children = append(parent.Children, New(t))
	e.tree = next
	return e.Blocks()
}

// Reorder moves the block with activeID into the position currently held by
// overID, within the same containment level: pick up the block under
// activeID, drop it where overID sits. Equal ids or an id that is missing
// from the level leaves the tree unchanged, guarding redundant drag events.
func (e *Editor) Reorder(activeID, overID string) []Block {
	if activeID == overID {
		return e.Blocks()
	}
	next := CloneTree(e.tree)
	if reorderLevel(&next, activeID, overID) {
		e.tree = next
	}
	return e.Blocks()
}

func reorderLevel(level *[]Block, activeID, overID string) bool {
	from, to := -1, -1
	for i := range *level {
		switch (*level)[i].ID {
		case activeID:
			from = i
		case overID:
			to = i
		}
	}
	if from >= 0 && to >= 0 {
		moved := (*level)[from]
		rest := append((*level)[:from:from], (*level)[from+1:]...)
		out := make([]Block, 0, len(rest)+1)
		out = append(out, rest[:to]...)
		out = append(out, moved)
		out = append(out, rest[to:]...)
		*level = out
		return true
	}
	// Both ids must live on the same level; recurse into children.
	for i := range *level {
		if len((*level)[i].Children) == 0 {
			continue
		}
		if reorderLevel(&(*level)[i].Children, activeID, overID) {
			return true
		}
	}
	return false
}

// UpdateContent replaces the content of the block matching id, recursing
// into children when it is not found at the top level. Unknown ids no-op.
func (e *Editor) UpdateContent(id, content string) []Block {
	next := CloneTree(e.tree)
	if b := FindByID(next, id); b != nil {
		b.Content = content
		e.tree = next
	}
	return e.Blocks()
}

// Delete removes the block matching id from wherever it occurs, dropping
// its whole subtree. Unknown ids no-op.
func (e *Editor) Delete(id string) []Block {
	next, removed := deleteFromLevel(CloneTree(e.tree), id)
	if removed {
		e.tree = next
		if e.editing != nil && e.editing.blockID == id {
			e.editing = nil
		}
	}
	return e.Blocks()
}

func deleteFromLevel(level []Block, id string) ([]Block, bool) {
	for i := range level {
		if level[i].ID == id {
			return append(level[:i:i], level[i+1:]...), true
		}
	}
	for i := range level {
		if children, ok := deleteFromLevel(level[i].Children, id); ok {
			level[i].Children = children
			return level, true
		}
	}
	return level, false
}

// StartEdit opens an in-place edit session for the block with the given id,
// seeding the draft with the block's current content. Only one block may be
// editing at a time: starting a new edit discards any in-progress draft
// without applying it. Unknown ids no-op.
func (e *Editor) StartEdit(id string) {
	b := FindByID(e.tree, id)
	if b == nil {
		return
	}
	e.editing = &editSession{blockID: id, draft: b.Content}
}

// Editing returns the id of the block currently being edited, or "".
func (e *Editor) Editing() string {
	if e.editing == nil {
		return ""
	}
	return e.editing.blockID
}

// Draft returns the in-progress draft content, or "" when idle.
func (e *Editor) Draft() string {
	if e.editing == nil {
		return ""
	}
	return e.editing.draft
}

// SetDraft updates the in-progress draft without touching the tree.
func (e *Editor) SetDraft(content string) {
	if e.editing != nil {
		e.editing.draft = content
	}
}

// SaveEdit applies the draft to the edited block and returns to idle. When
// no edit is in progress the tree is returned unchanged.
func (e *Editor) SaveEdit() []Block {
	if e.editing == nil {
		return e.Blocks()
	}
	session := e.editing
	e.editing = nil
	return e.UpdateContent(session.blockID, session.draft)
}

// CancelEdit discards the draft and returns to idle; the block keeps its
// original content.
func (e *Editor) CancelEdit() {
	e.editing = nil
}

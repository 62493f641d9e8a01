package editor

import (
	"case_strategy_editor/services/document"
)

// StepMap records one replaced range: OldSize positions starting at Pos were
// replaced by NewSize positions.
type StepMap struct {
	Pos     int
	OldSize int
	NewSize int
}

// Mapping maps positions from the document a transaction started with to the
// document it produced.
type Mapping struct {
	steps []StepMap
}

// MapPos maps pos through every step. assoc decides which side a position
// sticks to when content is inserted exactly at it: negative keeps it before
// the insertion, positive moves it after.
func (m Mapping) MapPos(pos int, assoc int) int {
	for _, st := range m.steps {
		end := st.Pos + st.OldSize
		switch {
		case pos < st.Pos:
		case pos == st.Pos && st.OldSize == 0:
			if assoc > 0 {
				pos += st.NewSize
			}
		case pos >= end:
			pos += st.NewSize - st.OldSize
		default:
			if assoc < 0 {
				pos = st.Pos
			} else {
				pos = st.Pos + st.NewSize
			}
		}
	}
	return pos
}

// Empty reports whether the mapping contains no steps.
func (m Mapping) Empty() bool {
	return len(m.steps) == 0
}

// Transaction accumulates changes on top of a state. Build one with
// State.Tr, then hand it to View.Dispatch or State.Apply.
type Transaction struct {
	before       *State
	doc          *document.Document
	selection    Selection
	selectionSet bool
	mapping      Mapping
	meta         map[string]any
}

// Before returns the state the transaction started from.
func (tr *Transaction) Before() *State { return tr.before }

// Doc returns the document as modified so far.
func (tr *Transaction) Doc() *document.Document { return tr.doc }

// Selection returns the selection as modified so far.
func (tr *Transaction) Selection() Selection { return tr.selection }

// Mapping returns the position mapping accumulated by the transaction.
func (tr *Transaction) Mapping() Mapping { return tr.mapping }

// DocChanged reports whether any step touched the document.
func (tr *Transaction) DocChanged() bool { return !tr.mapping.Empty() }

// SelectionSet reports whether the selection was explicitly set.
func (tr *Transaction) SelectionSet() bool { return tr.selectionSet }

// SetMeta attaches metadata under key. Plugins use it to tag their own
// transactions.
func (tr *Transaction) SetMeta(key string, value any) *Transaction {
	if tr.meta == nil {
		tr.meta = make(map[string]any)
	}
	tr.meta[key] = value
	return tr
}

// Meta returns the metadata stored under key, or nil.
func (tr *Transaction) Meta(key string) any {
	if tr.meta == nil {
		return nil
	}
	return tr.meta[key]
}

// ReplaceBlocks replaces top-level blocks [from, to) with nodes and maps the
// selection through the change unless it was set explicitly.
func (tr *Transaction) ReplaceBlocks(from, to int, nodes ...*document.Node) error {
	start, err := tr.doc.PosOfIndex(from)
	if err != nil {
		return err
	}
	end, err := tr.doc.PosOfIndex(to)
	if err != nil {
		return err
	}
	next, err := tr.doc.Replace(from, to, nodes...)
	if err != nil {
		return err
	}
	newSize := 0
	for _, n := range nodes {
		newSize += n.Size()
	}

	step := StepMap{Pos: start, OldSize: end - start, NewSize: newSize}
	tr.mapping.steps = append(tr.mapping.steps, step)
	tr.doc = next
	if !tr.selectionSet {
		single := Mapping{steps: []StepMap{step}}
		tr.selection = Selection{
			Anchor: single.MapPos(tr.selection.Anchor, 1),
			Head:   single.MapPos(tr.selection.Head, 1),
		}
	}
	return nil
}

// ReplaceDoc swaps the whole document content.
func (tr *Transaction) ReplaceDoc(doc *document.Document) error {
	return tr.ReplaceBlocks(0, tr.doc.ChildCount(), doc.Blocks()...)
}

// SetSelection sets the selection explicitly.
func (tr *Transaction) SetSelection(sel Selection) *Transaction {
	tr.selection = sel
	tr.selectionSet = true
	return tr
}

// rebase replays a transaction that does not touch the document on top of
// state, keeping its metadata and explicit selection.
func (tr *Transaction) rebase(state *State) *Transaction {
	next := state.Tr()
	for k, v := range tr.meta {
		next.SetMeta(k, v)
	}
	if tr.selectionSet {
		next.SetSelection(tr.selection)
	}
	return next
}

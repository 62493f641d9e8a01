package editor

import (
	"errors"
	"fmt"

	"case_strategy_editor/services/document"
)

// ErrCommandRejected is returned by a command that cannot run on a state.
var ErrCommandRejected = errors.New("command rejected")

// Command is a pure function from a state to the transaction that would
// perform the edit. It never mutates the state it receives.
type Command func(state *State) (*Transaction, error)

// Exec runs cmd against state and returns the resulting state.
func Exec(state *State, cmd Command) (*State, *Transaction, error) {
	tr, err := cmd(state)
	if err != nil {
		return state, nil, err
	}
	return state.Apply(tr), tr, nil
}

// SetContent replaces the whole document and puts the caret at the start.
func SetContent(doc *document.Document) Command {
	return func(state *State) (*Transaction, error) {
		if doc == nil {
			return nil, fmt.Errorf("%w: nil document", ErrCommandRejected)
		}
		tr := state.Tr()
		if err := tr.ReplaceDoc(doc); err != nil {
			return nil, err
		}
		tr.SetSelection(Caret(0))
		return tr, nil
	}
}

// InsertBlock inserts node before the block at index (index == ChildCount
// appends).
func InsertBlock(index int, node *document.Node) Command {
	return func(state *State) (*Transaction, error) {
		if node == nil || !node.IsBlock() {
			return nil, fmt.Errorf("%w: insert requires a block node", ErrCommandRejected)
		}
		tr := state.Tr()
		if err := tr.ReplaceBlocks(index, index, node); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCommandRejected, err)
		}
		return tr, nil
	}
}

// ReplaceBlock swaps the block at index for node.
func ReplaceBlock(index int, node *document.Node) Command {
	return func(state *State) (*Transaction, error) {
		if node == nil || !node.IsBlock() {
			return nil, fmt.Errorf("%w: replace requires a block node", ErrCommandRejected)
		}
		if index < 0 || index >= state.Doc().ChildCount() {
			return nil, fmt.Errorf("%w: no block at index %d", ErrCommandRejected, index)
		}
		tr := state.Tr()
		if err := tr.ReplaceBlocks(index, index+1, node); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCommandRejected, err)
		}
		return tr, nil
	}
}

// DeleteBlock removes the block at index. The last remaining block is
// replaced by an empty paragraph instead.
func DeleteBlock(index int) Command {
	return func(state *State) (*Transaction, error) {
		doc := state.Doc()
		if index < 0 || index >= doc.ChildCount() {
			return nil, fmt.Errorf("%w: no block at index %d", ErrCommandRejected, index)
		}
		tr := state.Tr()
		var err error
		if doc.ChildCount() == 1 {
			err = tr.ReplaceBlocks(0, 1, document.Paragraph())
		} else {
			err = tr.ReplaceBlocks(index, index+1)
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCommandRejected, err)
		}
		return tr, nil
	}
}

// AppendText types text at the end of a paragraph or heading and moves the
// caret after it.
func AppendText(index int, text string) Command {
	return func(state *State) (*Transaction, error) {
		doc := state.Doc()
		if index < 0 || index >= doc.ChildCount() {
			return nil, fmt.Errorf("%w: no block at index %d", ErrCommandRejected, index)
		}
		block := doc.Child(index)
		if block.Type != document.TypeParagraph && block.Type != document.TypeHeading {
			return nil, fmt.Errorf("%w: cannot type into %s", ErrCommandRejected, block.Type)
		}
		if text == "" {
			return nil, fmt.Errorf("%w: empty text", ErrCommandRejected)
		}

		updated := &document.Node{Type: block.Type, Attrs: block.Attrs}
		updated.Content = append([]*document.Node{}, block.Content...)
		if n := len(updated.Content); n > 0 && updated.Content[n-1].IsText() && len(updated.Content[n-1].Marks) == 0 {
			updated.Content[n-1] = document.Text(updated.Content[n-1].Text + text)
		} else {
			updated.Content = append(updated.Content, document.Text(text))
		}
		tr := state.Tr()
		if err := tr.ReplaceBlocks(index, index+1, updated); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCommandRejected, err)
		}
		start, _ := tr.Doc().PosOfIndex(index)
		tr.SetSelection(Caret(start + updated.Size() - 1))
		return tr, nil
	}
}

// SetSelection moves the selection without touching the document.
func SetSelection(sel Selection) Command {
	return func(state *State) (*Transaction, error) {
		size := state.Doc().Size()
		if sel.Anchor < 0 || sel.Head < 0 || sel.Anchor > size || sel.Head > size {
			return nil, fmt.Errorf("%w: selection %d-%d outside document", ErrCommandRejected, sel.Anchor, sel.Head)
		}
		return state.Tr().SetSelection(sel), nil
	}
}

// Package editor provides the editing-framework collaborator used by the
// pagination engine: immutable per-revision editor states, transactions,
// pure commands, decorations and a view that keeps a rendered surface in
// sync with the current state.
package editor

import (
	"case_strategy_editor/services/document"
)

// Selection is a caret or range expressed in document positions.
type Selection struct {
	Anchor int `json:"anchor"`
	Head   int `json:"head"`
}

// Caret returns a collapsed selection at pos.
func Caret(pos int) Selection {
	return Selection{Anchor: pos, Head: pos}
}

// Eq reports whether both selections cover the same range.
func (s Selection) Eq(other Selection) bool {
	return s.Anchor == other.Anchor && s.Head == other.Head
}

// Empty reports whether the selection is collapsed.
func (s Selection) Empty() bool {
	return s.Anchor == s.Head
}

func (s Selection) clamp(size int) Selection {
	return Selection{Anchor: clampPos(s.Anchor, size), Head: clampPos(s.Head, size)}
}

func clampPos(pos, size int) int {
	if pos < 0 {
		return 0
	}
	if pos > size {
		return size
	}
	return pos
}

// State is an immutable snapshot of the editor for one revision.
type State struct {
	doc       *document.Document
	selection Selection
	revision  int64
	plugins   []*Plugin
	fields    map[string]any
}

// NewState creates the initial state and initialises every plugin's field.
func NewState(doc *document.Document, plugins ...*Plugin) *State {
	if doc == nil {
		doc = document.Empty()
	}
	s := &State{
		doc:       doc,
		selection: Caret(0),
		plugins:   plugins,
		fields:    make(map[string]any, len(plugins)),
	}
	for _, p := range plugins {
		if p.Init != nil {
			s.fields[p.Key] = p.Init(s)
		}
	}
	return s
}

// Doc returns the document of this revision.
func (s *State) Doc() *document.Document { return s.doc }

// Selection returns the selection of this revision.
func (s *State) Selection() Selection { return s.selection }

// Revision increases by one with every applied transaction.
func (s *State) Revision() int64 { return s.revision }

// Plugins returns the plugins the state was configured with.
func (s *State) Plugins() []*Plugin { return s.plugins }

// PluginState returns the field value of the plugin registered under key.
func (s *State) PluginState(key string) any {
	return s.fields[key]
}

// Tr starts a transaction on top of this state.
func (s *State) Tr() *Transaction {
	return &Transaction{
		before:    s,
		doc:       s.doc,
		selection: s.selection,
	}
}

// Apply produces the next state. The receiver is left untouched.
func (s *State) Apply(tr *Transaction) *State {
	next := &State{
		doc:       tr.doc,
		selection: tr.selection.clamp(tr.doc.Size()),
		revision:  s.revision + 1,
		plugins:   s.plugins,
		fields:    make(map[string]any, len(s.fields)),
	}
	for _, p := range s.plugins {
		value := s.fields[p.Key]
		if p.Apply != nil {
			value = p.Apply(tr, value, next)
		}
		next.fields[p.Key] = value
	}
	return next
}

package document

import (
	"encoding/json"
	"fmt"
)

type jsonDoc struct {
	Type    string  `json:"type"`
	Content []*Node `json:"content"`
}

// MarshalJSON encodes the document as {"type":"doc","content":[...]}.
func (d *Document) MarshalJSON() ([]byte, error) {
	blocks := d.blocks
	if blocks == nil {
		blocks = []*Node{}
	}
	return json.Marshal(jsonDoc{Type: "doc", Content: blocks})
}

// UnmarshalJSON decodes the {"type":"doc"} envelope.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw jsonDoc
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Type != "" && raw.Type != "doc" {
		return fmt.Errorf("unexpected root node type %q", raw.Type)
	}
	*d = *New(raw.Content...)
	return nil
}

package components

import (
	"encoding/json"
	"log"
)

// JSON marshals v for embedding in an inline script, returning "{}" on
// error. encoding/json escapes <, > and & so the result cannot close the
// script element.
func JSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WARNING] Error marshaling JSON for page: %v", err)
		return "{}"
	}
	return string(b)
}

// Package printdoc renders the standalone HTML documents loaded into
// headless Chrome: the print document handed to the PDF engine and the shell
// of the live layout surface.
package printdoc

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"case_strategy_editor/services/pagination"

	"github.com/a-h/templ"
)

// DefaultFontStylesheet is the web font used by the editor.
const DefaultFontStylesheet = "https://fonts.googleapis.com/css2?family=Inter:wght@400;500;600;700&display=swap"

// SurfaceRootID is the id of the element the layout surface renders into.
const SurfaceRootID = "editor"

// DocumentProps configures the print document.
type DocumentProps struct {
	// Markup is sanitized editor HTML, inserted verbatim.
	Markup         string
	Geometry       pagination.Geometry
	FontStylesheet string
	Title          string
}

// Document is the print document: editor typography, hidden pagination
// artifacts, the @page rule and the markup inside .content-wrapper.
func Document(p DocumentProps) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := p.Title
		if title == "" {
			title = "Document"
		}
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n"); err != nil {
			return err
		}
		if err := head(w, title, p.FontStylesheet, pagination.PrintStylesheet(p.Geometry)); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "</head>\n<body>\n<div class=\"content-wrapper\">%s</div>\n</body>\n</html>\n", p.Markup)
		return err
	})
}

// Surface is the empty shell of the layout surface. Content is injected
// into the SurfaceRootID element on every sync.
func Surface(g pagination.Geometry, fontStylesheet string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, "<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n"); err != nil {
			return err
		}
		if err := head(w, "Layout", fontStylesheet, pagination.SurfaceStylesheet(g)); err != nil {
			return err
		}
		_, err := fmt.Fprintf(w, "</head>\n<body>\n<div id=\"%s\" class=\"ProseMirror\"></div>\n</body>\n</html>\n", SurfaceRootID)
		return err
	})
}

func head(w io.Writer, title, fontStylesheet, css string) error {
	if _, err := fmt.Fprintf(w, "<title>%s</title>\n", templ.EscapeString(title)); err != nil {
		return err
	}
	if fontStylesheet != "" {
		if _, err := fmt.Fprintf(w, "<link rel=\"stylesheet\" href=\"%s\">\n", templ.EscapeString(fontStylesheet)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "<style>\n%s</style>\n", css)
	return err
}

// Render renders c to a string.
func Render(ctx context.Context, c templ.Component) (string, error) {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

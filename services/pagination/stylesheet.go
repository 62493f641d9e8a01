package pagination

import (
	"fmt"
	"strings"
)

// MarkerClass is the class of every page-break widget.
const MarkerClass = "page-break-marker"

// MarkerAttr flags page-break widgets independently of their class.
const MarkerAttr = "data-page-break"

// ArtifactSelectors lists every pagination-only element of the live editor.
// The print path hides them so native print pagination is the only source of
// page breaks.
var ArtifactSelectors = []string{
	"." + MarkerClass,
	".rm-pagination-gap",
	".tiptap-page-break-background",
	".rm-page-number",
	".rm-page-header",
	".rm-page-footer",
	".rm-pages-wrapper",
	"[" + MarkerAttr + "]",
	"[data-rm-pagination]",
}

// typography is applied identically by the live surface and the print
// document. Any change here moves breaks in both places at once.
const typography = `
* {
  box-sizing: border-box;
  margin: 0;
  padding: 0;
}

html, body {
  background: white;
  -webkit-print-color-adjust: exact;
  print-color-adjust: exact;
  -webkit-font-smoothing: antialiased;
}

body, .ProseMirror {
  font-family: 'Inter', -apple-system, BlinkMacSystemFont, sans-serif;
  font-size: 24px;
  font-weight: 400;
  line-height: 40px;
  color: rgb(54, 65, 83);
}

h1 { font-size: 60px; font-weight: 800; line-height: 64px; color: rgb(16, 24, 40); margin-top: 0; margin-bottom: 48px; }
h2 { font-size: 48px; font-weight: 700; line-height: 52px; color: rgb(16, 24, 40); margin-top: 72px; margin-bottom: 40px; }
h3 { font-size: 36px; font-weight: 600; line-height: 40px; color: rgb(16, 24, 40); margin-top: 56px; margin-bottom: 32px; }
h4 { font-size: 28px; font-weight: 600; line-height: 36px; color: rgb(16, 24, 40); margin-top: 40px; margin-bottom: 24px; }
h1:first-child, h2:first-child, h3:first-child, h4:first-child { margin-top: 0; }

p {
  font-size: 24px;
  line-height: 40px;
  margin-top: 0;
  margin-bottom: 32px;
  orphans: 3;
  widows: 3;
}
p:last-child { margin-bottom: 0; }

strong, b { font-weight: 600; color: rgb(16, 24, 40); }
em, i { font-style: italic; }
u { text-decoration: underline; }

ul, ol { font-size: 24px; line-height: 40px; margin-top: 0; margin-bottom: 32px; padding-left: 32px; }
ul { list-style-type: disc; }
ol { list-style-type: decimal; }
li { margin-top: 8px; margin-bottom: 8px; line-height: 40px; }
li:first-child { margin-top: 0; }
li > p { margin: 0; display: inline; }
ul ul, ol ul { list-style-type: circle; margin: 8px 0; }
ul ul ul, ol ul ul { list-style-type: square; }

blockquote { border-left: 4px solid rgb(229, 231, 235); padding-left: 24px; margin: 32px 0; font-style: italic; color: rgb(107, 114, 128); }

code { font-family: monospace; font-size: 21px; background-color: rgb(243, 244, 246); padding: 2px 6px; border-radius: 4px; }
pre { font-family: monospace; font-size: 21px; background-color: rgb(31, 41, 55); color: rgb(229, 231, 235); padding: 24px; border-radius: 8px; overflow-x: auto; margin: 32px 0; }
pre code { background: transparent; padding: 0; color: inherit; }

table { width: 100%; border-collapse: collapse; margin: 32px 0; font-size: 24px; table-layout: fixed; }
th, td { border: 1px solid #ced4da; padding: 12px 16px; text-align: left; vertical-align: top; position: relative; }
th { background-color: #f1f3f5; font-weight: 600; color: rgb(16, 24, 40); }

hr { border: none; border-top: 1px solid rgb(229, 231, 235); margin: 48px 0; }

[style*="text-align: left"] { text-align: left; }
[style*="text-align: center"] { text-align: center; }
[style*="text-align: right"] { text-align: right; }
[style*="text-align: justify"] { text-align: justify; }
`

const printRules = `
@media print {
  body {
    -webkit-print-color-adjust: exact !important;
    print-color-adjust: exact !important;
  }
  h1, h2, h3, h4, h5, h6 {
    page-break-after: avoid;
    break-after: avoid;
  }
  p, li, blockquote {
    page-break-inside: avoid;
    break-inside: avoid;
  }
}
`

// Typography returns the per-element rules shared by both render paths.
func Typography() string {
	return typography
}

// HideArtifactsRule forces every pagination artifact out of the layout.
func HideArtifactsRule() string {
	return strings.Join(ArtifactSelectors, ",\n") + " {\n  display: none !important;\n}\n"
}

// PrintStylesheet is the complete style sheet of the exported document:
// typography, hidden artifacts, the @page rule derived from g and the
// break-avoidance rules.
func PrintStylesheet(g Geometry) string {
	var sb strings.Builder
	sb.WriteString(typography)
	sb.WriteString(".content-wrapper {\n  width: 100%;\n  margin: 0 auto;\n  background: white;\n}\n")
	sb.WriteString(HideArtifactsRule())
	sb.WriteString(g.PageRule())
	sb.WriteString(printRules)
	return sb.String()
}

// SurfaceStylesheet is the style sheet of the live editing surface. Widgets
// are absolutely positioned so they paint over the document without taking
// part in the flow being measured.
func SurfaceStylesheet(g Geometry) string {
	var sb strings.Builder
	sb.WriteString(typography)
	fmt.Fprintf(&sb, `
body { margin: 0; }
.ProseMirror {
  position: relative;
  box-sizing: border-box;
  width: %spx;
  min-height: %spx;
  padding: 0 %spx 0 %spx;
  outline: none;
}
.%s {
  position: absolute;
  left: 0;
  right: 0;
  height: 0;
  border-top: 1px dashed #9ca3af;
  pointer-events: none;
  user-select: none;
}
.%s::after {
  content: attr(data-label);
  position: absolute;
  right: 8px;
  top: 2px;
  font-size: 12px;
  line-height: 16px;
  color: #9ca3af;
}
`, num(g.PageWidth), num(g.PageHeight), num(g.Margins.Right), num(g.Margins.Left), MarkerClass, MarkerClass)
	return sb.String()
}

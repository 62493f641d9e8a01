package pages

import (
	"context"
	"fmt"
	"io"
	"time"

	"case_strategy_editor/middleware"
	"case_strategy_editor/services/pagination"
	"case_strategy_editor/templates/components"
	paper "case_strategy_editor/templates/partials/editor"

	"github.com/a-h/templ"
)

const editorChrome = `
body.editor-page { background: #f3f4f6; }
.toolbar {
  position: sticky;
  top: 0;
  z-index: 10;
  display: flex;
  align-items: center;
  gap: 16px;
  padding: 12px 24px;
  background: white;
  border-bottom: 1px solid #e5e7eb;
  font-size: 14px;
  line-height: 20px;
}
.toolbar input {
  flex: 1;
  font: inherit;
  font-size: 16px;
  font-weight: 600;
  border: none;
  outline: none;
  color: rgb(16, 24, 40);
}
.toolbar .save-status { color: #6b7280; white-space: nowrap; }
.toolbar .save-status[data-status="unsaved"] { color: #b45309; }
.toolbar .page-count { color: #6b7280; white-space: nowrap; }
.toolbar button {
  font: inherit;
  padding: 8px 16px;
  border: none;
  border-radius: 6px;
  background: rgb(16, 24, 40);
  color: white;
  cursor: pointer;
}
.toolbar button:disabled { opacity: 0.5; cursor: wait; }
.sheet-container { padding: 32px 0 96px; }
.ProseMirror {
  margin: 0 auto;
  background: white;
  box-shadow: 0 1px 3px rgba(0, 0, 0, 0.1);
}
`

// editorScript keeps the draft saved, shows the server's page breaks as
// widgets and drives the export button. Widgets are stripped from every
// payload the page sends.
const editorScript = `
(function () {
  var cfg = JSON.parse(document.getElementById("editor-config").textContent);
  var editor = document.getElementById("editor");
  var titleInput = document.getElementById("doc-title");
  var statusEl = document.getElementById("save-status");
  var pagesEl = document.getElementById("page-count");
  var exportBtn = document.getElementById("export-pdf");
  var markerSelector = "." + cfg.markerClass + ",[" + cfg.markerAttr + "]";
  var labels = { saved: "Saved", saving: "Saving...", unsaved: "Unsaved changes" };
  var saveTimer = null, paginateTimer = null, saving = false, dirty = false;

  function contentHTML() {
    var clone = editor.cloneNode(true);
    clone.querySelectorAll(markerSelector).forEach(function (el) { el.remove(); });
    return clone.innerHTML;
  }

  function setStatus(status, text) {
    statusEl.dataset.status = status;
    statusEl.textContent = text || labels[status];
  }

  function postJSON(method, url, body) {
    return fetch(url, {
      method: method,
      headers: { "Content-Type": "application/json" },
      body: JSON.stringify(body)
    });
  }

  function save() {
    if (saving) { dirty = true; return; }
    saving = true;
    dirty = false;
    setStatus("saving");
    var body = { title: titleInput.value, html: contentHTML() };
    var req;
    if (cfg.documentId) {
      body.base_version = cfg.version;
      req = postJSON("PUT", "/api/documents/" + cfg.documentId, body);
    } else {
      req = postJSON("POST", "/api/documents", body);
    }
    req.then(function (res) {
      if (res.status === 409) { throw new Error("This draft was changed elsewhere. Reload to continue."); }
      if (!res.ok) { throw new Error("Save failed"); }
      return res.json();
    }).then(function (data) {
      if (data.id && !cfg.documentId) {
        cfg.documentId = data.id;
        history.replaceState(null, "", "/documents/" + data.id);
      }
      cfg.version = data.version;
      setStatus(dirty ? "unsaved" : "saved");
    }).catch(function (err) {
      setStatus("unsaved", err.message);
    }).finally(function () {
      saving = false;
      if (dirty) { scheduleSave(); }
    });
  }

  function scheduleSave() {
    setStatus("unsaved");
    clearTimeout(saveTimer);
    saveTimer = setTimeout(save, cfg.autosaveDelayMs);
  }

  function applyBreaks(result) {
    editor.querySelectorAll(markerSelector).forEach(function (el) { el.remove(); });
    var blocks = Array.prototype.slice.call(editor.children);
    result.boundaries.forEach(function (b, i) {
      var block = blocks[result.block_indexes[i]];
      if (!block) { return; }
      var marker = document.createElement("div");
      marker.className = cfg.markerClass;
      marker.setAttribute(cfg.markerAttr, "");
      marker.setAttribute("contenteditable", "false");
      marker.setAttribute("data-page", String(b.page));
      marker.setAttribute("data-label", "Page " + b.page);
      editor.insertBefore(marker, block);
    });
    pagesEl.textContent = result.pages === 1 ? "1 page" : result.pages + " pages";
  }

  function paginate() {
    var html = contentHTML();
    if (!html.trim()) { return; }
    postJSON("POST", "/api/paginate", { html: html }).then(function (res) {
      return res.ok ? res.json() : null;
    }).then(function (result) {
      if (result) { applyBreaks(result); }
    }).catch(function () {});
  }

  function schedulePaginate() {
    clearTimeout(paginateTimer);
    paginateTimer = setTimeout(paginate, cfg.paginateDelayMs);
  }

  function exportPDF() {
    var label = exportBtn.textContent;
    exportBtn.disabled = true;
    exportBtn.textContent = "Generating...";
    postJSON("POST", "/api/generate-pdf", { html: contentHTML() }).then(function (res) {
      if (!res.ok) {
        return res.json().then(function (data) {
          throw new Error(data.details || data.error || "Failed to generate PDF");
        });
      }
      return res.blob();
    }).then(function (blob) {
      var url = URL.createObjectURL(blob);
      var a = document.createElement("a");
      a.href = url;
      a.download = "document.pdf";
      document.body.appendChild(a);
      a.click();
      a.remove();
      URL.revokeObjectURL(url);
    }).catch(function (err) {
      alert(err.message);
    }).finally(function () {
      exportBtn.disabled = false;
      exportBtn.textContent = label;
    });
  }

  editor.addEventListener("input", function () { scheduleSave(); schedulePaginate(); });
  titleInput.addEventListener("input", scheduleSave);
  exportBtn.addEventListener("click", exportPDF);
  paginate();
})();
`

// Editor renders the editor page. The sheet uses the same stylesheet as the
// layout surface so text wraps identically in both.
func Editor(p EditorPage) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		nonce := middleware.GetNonce(ctx)
		ew := &errWriter{w: w}

		ew.printf("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
		ew.printf("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
		ew.printf("<title>%s</title>\n", templ.EscapeString(p.Title))
		if p.FontStylesheet != "" {
			ew.printf("<link rel=\"stylesheet\" href=\"%s\">\n", templ.EscapeString(p.FontStylesheet))
		}
		ew.printf("<style>\n%s%s</style>\n", pagination.SurfaceStylesheet(p.Geometry), editorChrome)
		ew.printf("</head>\n<body class=\"editor-page\">\n")

		ew.printf("<header class=\"toolbar\">\n")
		ew.printf("<input id=\"doc-title\" type=\"text\" value=\"%s\" aria-label=\"Title\">\n", templ.EscapeString(p.Title))
		ew.printf("<span id=\"save-status\" class=\"save-status\" data-status=\"%s\">%s</span>\n",
			templ.EscapeString(p.SaveStatus), templ.EscapeString(paper.SaveStatusLabel(p.SaveStatus, p.LastSavedAt, time.Now())))
		ew.printf("<span id=\"page-count\" class=\"page-count\">1 page</span>\n")
		ew.printf("<button id=\"export-pdf\" type=\"button\">Export PDF</button>\n")
		ew.printf("</header>\n")

		// Content is normalized server-side before it is stored.
		ew.printf("<main class=\"sheet-container\">\n<div id=\"editor\" class=\"ProseMirror\" contenteditable=\"true\" spellcheck=\"true\" data-page-height=\"%s\" style=\"%s\">%s</div>\n</main>\n",
			paper.GetPageHeight(p.Geometry), templ.EscapeString(paper.GetPaperStyle(p.Geometry)), p.Content)

		ew.printf("<script type=\"application/json\" id=\"editor-config\">%s</script>\n", components.JSON(p.config()))
		ew.printf("<script nonce=\"%s\">%s</script>\n", templ.EscapeString(nonce), editorScript)
		ew.printf("</body>\n</html>\n")
		return ew.err
	})
}

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...interface{}) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}

package handler

import (
	"errors"
	"io/fs"
	"net/http"
	"os"
	"strings"

	"go-watchlist/pkg/apierror"
)

const swaggerPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>Watchlist API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
        persistAuthorization: true,
        tryItOutEnabled: true
      });
    </script>
  </body>
</html>`

const swaggerCSP = "default-src 'self'; script-src 'self' 'unsafe-inline' https://unpkg.com; " +
	"style-src 'self' 'unsafe-inline' https://unpkg.com; img-src 'self' data:"

// DocsHandler serves the OpenAPI document from disk and a Swagger UI page
// that loads it.
type DocsHandler struct {
	specPath string
}

func NewDocsHandler(specPath string) *DocsHandler {
	return &DocsHandler{specPath: strings.TrimSpace(specPath)}
}

// OpenAPI streams the spec file. Conditional requests are answered from its
// modification time.
func (h *DocsHandler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	if h.specPath == "" {
		writeError(w, r, apierror.NotFound("DOCS_NOT_CONFIGURED", "API documentation is not configured"))
		return
	}

	file, err := os.Open(h.specPath)
	if errors.Is(err, fs.ErrNotExist) {
		writeError(w, r, apierror.NotFound("DOCS_NOT_FOUND", "API documentation not found"))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/yaml")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, "openapi.yaml", info.ModTime(), file)
}

func (h *DocsHandler) SwaggerUI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Security-Policy", swaggerCSP)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(swaggerPage))
}

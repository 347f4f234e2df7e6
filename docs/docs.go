// Package docs embeds the OpenAPI document and serves it with a Swagger UI
// page.
package docs

import (
	"bytes"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"html/template"
	"net/http"
	"time"
)

//go:embed swagger.json
var Spec []byte

var specETag = func() string {
	sum := sha256.Sum256(Spec)
	return `"` + hex.EncodeToString(sum[:8]) + `"`
}()

var uiTemplate = template.Must(template.New("swagger-ui").Parse(`<!DOCTYPE html>
<html>
  <head>
    <title>{{.Title}}</title>
    <meta charset="utf-8"/>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({url: {{.SpecURL}}, dom_id: "#swagger-ui", deepLinking: true});
    </script>
  </body>
</html>`))

// SpecHandler serves the OpenAPI document with an ETag so browsers can
// revalidate instead of refetching.
func SpecHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", specETag)
		http.ServeContent(w, r, "swagger.json", time.Time{}, bytes.NewReader(Spec))
	})
}

// UIHandler serves a Swagger UI page titled title that loads specURL.
func UIHandler(title, specURL string) http.Handler {
	var page bytes.Buffer
	if err := uiTemplate.Execute(&page, struct{ Title, SpecURL string }{title, specURL}); err != nil {
		panic(err)
	}
	body := page.Bytes()

	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	})
}

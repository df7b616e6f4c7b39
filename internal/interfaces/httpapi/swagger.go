package httpapi

import (
	_ "embed"
	"net/http"
)

//go:embed openapi.yaml
var openAPIDocument []byte

const swaggerPage = `<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Chit Fund API Docs</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
  </head>
  <body style="margin:0">
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis],
        requestInterceptor: (req) => {
          const actor = localStorage.getItem('chit-actor-id');
          if (actor) req.headers['X-Actor-ID'] = actor;
          return req;
        },
      });
    </script>
  </body>
</html>`

// OpenAPI serves the embedded document describing every /v1 route.
func (h *Handler) OpenAPI(w http.ResponseWriter, r *http.Request) {
	_, span := startRequestSpan(r, "OpenAPI")
	defer span.End()

	w.Header().Set("Content-Type", "application/yaml; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = w.Write(openAPIDocument)
}

// SwaggerUI serves a docs page. Requests made from it carry the X-Actor-ID stored under
// "chit-actor-id" in local storage.
func (h *Handler) SwaggerUI(w http.ResponseWriter, r *http.Request) {
	_, span := startRequestSpan(r, "SwaggerUI")
	defer span.End()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(swaggerPage))
}

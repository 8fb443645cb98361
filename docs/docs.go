// Package docs embeds the OpenAPI document served under /swagger.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed swagger.json
var swaggerJSON []byte

func ServeJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(swaggerJSON)
}

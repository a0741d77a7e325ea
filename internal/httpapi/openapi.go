package httpapi

import (
	"net/http"

	"github.com/swaggo/swag"

	_ "creditrisk/docs"
)

// openapi serves the registered OpenAPI document.
func openapi(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(doc))
}

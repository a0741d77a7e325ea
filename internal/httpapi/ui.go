package httpapi

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"creditrisk/internal/prompt"
)

//go:embed web/ui.html
var webFS embed.FS

var uiTemplate = template.Must(template.ParseFS(webFS, "web/ui.html"))

type uiPanel struct {
	Name        string
	DisplayName string
	Ready       bool
}

type uiData struct {
	Panels           []uiPanel
	Example          prompt.CreditRecord
	PaymentBehaviors []string
}

// ui godoc
// @Summary      Live comparison page
// @Tags         ui
// @Produce      html
// @Success      200
// @Router       /ui [get]
func (h *handlers) ui(w http.ResponseWriter, r *http.Request) {
	health := h.svc.Health()
	data := uiData{Example: prompt.ExampleRecord(), PaymentBehaviors: prompt.PaymentBehaviors}
	for _, b := range h.svc.Backends() {
		data.Panels = append(data.Panels, uiPanel{Name: b.Name, DisplayName: b.DisplayName, Ready: health[b.Name]})
	}
	var buf bytes.Buffer
	if err := uiTemplate.Execute(&buf, data); err != nil {
		writeJSONError(w, http.StatusInternalServerError, "render ui: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

package adapthttp

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"tasklist/internal/domain"

	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

func mustParseViews() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

type pageData struct {
	User       string
	SSOEnabled bool
	Tasks      []domain.Task
	Task       *domain.Task
}

// render executes the named view into a buffer so a template failure never
// leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, name string, data pageData) {
	data.SSOEnabled = s.oidcConfig.Enabled

	var buf bytes.Buffer
	if err := s.views.ExecuteTemplate(&buf, name, data); err != nil {
		s.log.Error("render view", zap.String("view", name), zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

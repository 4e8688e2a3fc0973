package export

import (
	"embed"
	"fmt"
	"io"

	"github.com/google/safehtml/template"
)

//go:embed templates/*
var templateFS embed.FS

var registerTemplate = template.Must(
	template.New("register.html").
		Funcs(template.FuncMap{"date": Plain}).
		ParseFS(template.TrustedFSFromEmbed(templateFS), "templates/register.html"))

// RegisterHTML writes r as a standalone, printable HTML page.
func RegisterHTML(w io.Writer, r Report) error {
	if len(r.Rows) == 0 {
		return ErrNoRows
	}
	if err := registerTemplate.Execute(w, r); err != nil {
		return fmt.Errorf("render register: %w", err)
	}
	return nil
}

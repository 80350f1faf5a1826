package httpapp

import (
	"encoding/json"
	"net/http"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

func (s *Server) serveOpenAPIJSON(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_, _ = w.Write([]byte(doc))
}

func (s *Server) serveOpenAPIYAML(w http.ResponseWriter, r *http.Request) {
	doc, err := swag.ReadDoc()
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	var tree any
	if err := json.Unmarshal([]byte(doc), &tree); err != nil {
		s.fail(w, r, err, "")
		return
	}
	out, err := yaml.Marshal(tree)
	if err != nil {
		s.fail(w, r, err, "")
		return
	}
	w.Header().Set("Content-Type", "application/x-yaml; charset=utf-8")
	_, _ = w.Write(out)
}

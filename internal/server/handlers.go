package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/apilink/pkg/buildinfo"
	"github.com/matzehuels/apilink/pkg/errors"
	"github.com/matzehuels/apilink/pkg/render"
	"github.com/matzehuels/apilink/pkg/resolver"
	"github.com/matzehuels/apilink/pkg/symbol"
)

// maxBatch bounds the number of refs in one POST /v1/resolve.
const maxBatch = 1000

type healthResponse struct {
	Status   string         `json:"status"`
	Build    buildinfo.Info `json:"build"`
	Mappings int            `json:"mappings"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:   "ok",
		Build:    buildinfo.Get(),
		Mappings: s.Resolver().Table().Len(),
	})
}

// refFromQuery reads a ref from ?ref= (compact form) or from the separate
// name, package and display parameters.
func refFromQuery(r *http.Request) (symbol.Ref, error) {
	q := r.URL.Query()
	if compact := q.Get("ref"); compact != "" {
		return symbol.Parse(compact)
	}
	ref := symbol.Ref{
		Name:        strings.TrimSpace(q.Get("name")),
		Package:     strings.TrimSpace(q.Get("package")),
		DisplayName: q.Get("display"),
	}
	if ref.Name == "" {
		return ref, errors.New(errors.ErrCodeInvalidSymbol, "missing name parameter")
	}
	return ref, nil
}

func (s *Server) handleResolve(w http.ResponseWriter, r *http.Request) {
	ref, err := refFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	link, err := s.Resolver().Resolve(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, link)
}

type batchRequest struct {
	Refs []symbol.Ref `json:"refs"`
}

type batchResult struct {
	Link  *resolver.Link `json:"link,omitempty"`
	Error *errorBody     `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchResult `json:"results"`
}

func (s *Server) handleResolveBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}
	if len(req.Refs) > maxBatch {
		writeError(w, r, errors.New(errors.ErrCodeInvalidInput, "too many refs: %d (max %d)", len(req.Refs), maxBatch))
		return
	}

	links, errs := s.Resolver().ResolveAll(r.Context(), req.Refs)
	resp := batchResponse{Results: make([]batchResult, len(links))}
	for i := range links {
		if errs[i] != nil {
			resp.Results[i].Error = newErrorBody(errs[i])
			continue
		}
		resp.Results[i].Link = &links[i]
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	format := render.FormatHTML
	if f := r.URL.Query().Get("format"); f != "" {
		var err error
		if format, err = render.ParseFormat(f); err != nil {
			writeError(w, r, err)
			return
		}
	}
	ref, err := refFromQuery(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	link, err := s.Resolver().Resolve(r.Context(), ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	body, err := render.String(link, format)
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch format {
	case render.FormatHTML:
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	case render.FormatMarkdown:
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	case render.FormatJSON:
		w.Header().Set("Content-Type", "application/json")
	default:
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleMapping(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Resolver().Table())
}

func (s *Server) handleRedirect(w http.ResponseWriter, r *http.Request) {
	ref := symbol.Ref{
		Name:    chi.URLParam(r, "name"),
		Package: r.URL.Query().Get("package"),
	}
	url, err := s.Resolver().URL(ref)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if strings.HasPrefix(url, "/") {
		url = s.opts.SiteURL + url
	}
	http.Redirect(w, r, url, http.StatusFound)
}

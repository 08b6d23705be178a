// Package api serves built chain specs over HTTP.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/zihgir1/BEVM/chainspec"
	"github.com/zihgir1/BEVM/common"
	"github.com/zihgir1/BEVM/log"
	"github.com/zihgir1/BEVM/metrics"
	"github.com/zihgir1/BEVM/storage"
)

const (
	moduleName = "api"
)

// ChainSpecAPI is the chain spec distribution API.
type ChainSpecAPI struct {
	router  *chi.Mux
	catalog *Catalog
	// store is optional.
	store  storage.PublicationStore
	logger *log.Logger
}

// NewChainSpecAPI creates a new API serving the catalog. Without a store
// the publications route is not registered.
func NewChainSpecAPI(catalog *Catalog, store storage.PublicationStore, corsOrigins []string, m metrics.RequestMetrics, l *log.Logger) *ChainSpecAPI {
	a := &ChainSpecAPI{
		router:  chi.NewRouter(),
		catalog: catalog,
		store:   store,
		logger:  l.WithModule(moduleName),
	}

	r := a.router
	r.Use(MetricsMiddleware(m, a.logger))
	r.Use(middleware.Recoverer)
	r.Use(NewCorsMiddleware(corsOrigins))
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		HumanReadableJsonErrorHandler(w, r, fmt.Errorf("%w: %s", ErrNotFound, r.URL.Path))
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/chainspecs", a.listChainSpecs)
		r.Route("/chainspecs/{profile}", func(r chi.Router) {
			r.Use(ProfileFromURLMiddleware)
			r.Get("/", a.getChainSpec)
			r.Get("/summary", a.getSummary)
		})
		if store != nil {
			r.Get("/publications", a.listPublications)
		}
	})

	return a
}

// Router gets the router for this API.
func (a *ChainSpecAPI) Router() http.Handler {
	return a.router
}

func (a *ChainSpecAPI) writeJSON(w http.ResponseWriter, r *http.Request, v interface{}) {
	w.Header().Set("content-type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("failed to write response",
			"request_id", r.Context().Value(common.RequestIDContextKey),
			"error", err,
		)
	}
}

func (a *ChainSpecAPI) entry(w http.ResponseWriter, r *http.Request) (*Entry, bool) {
	profile, ok := r.Context().Value(common.ProfileContextKey).(common.Profile)
	if !ok {
		HumanReadableJsonErrorHandler(w, r, fmt.Errorf("%w: no profile", ErrBadRequest))
		return nil, false
	}
	e, err := a.catalog.Get(profile)
	if err != nil {
		HumanReadableJsonErrorHandler(w, r, err)
		return nil, false
	}
	return e, true
}

func (a *ChainSpecAPI) listChainSpecs(w http.ResponseWriter, r *http.Request) {
	entries := a.catalog.Entries()
	summaries := make([]*chainspec.Summary, 0, len(entries))
	for _, e := range entries {
		summaries = append(summaries, e.Summary)
	}
	a.writeJSON(w, r, summaries)
}

func (a *ChainSpecAPI) getChainSpec(w http.ResponseWriter, r *http.Request) {
	e, ok := a.entry(w, r)
	if !ok {
		return
	}
	etag := strconv.Quote(e.Summary.SpecHash)
	if r.Header.Get("if-none-match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("content-type", "application/json; charset=utf-8")
	w.Header().Set("etag", etag)
	w.Header().Set("content-length", strconv.Itoa(len(e.Encoded)))
	_, _ = w.Write(e.Encoded)
}

func (a *ChainSpecAPI) getSummary(w http.ResponseWriter, r *http.Request) {
	e, ok := a.entry(w, r)
	if !ok {
		return
	}
	a.writeJSON(w, r, e.Summary)
}

func parseUintParam(r *http.Request, name string, def uint64) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrBadRequest, name, err)
	}
	return v, nil
}

func (a *ChainSpecAPI) listPublications(w http.ResponseWriter, r *http.Request) {
	var filter storage.PublicationFilter
	var err error
	if filter.Limit, err = parseUintParam(r, "limit", defaultLimit); err != nil {
		HumanReadableJsonErrorHandler(w, r, err)
		return
	}
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}
	if filter.Offset, err = parseUintParam(r, "offset", 0); err != nil {
		HumanReadableJsonErrorHandler(w, r, err)
		return
	}
	if raw := r.URL.Query().Get("profile"); raw != "" {
		profile, err := common.ParseProfile(raw)
		if err != nil {
			HumanReadableJsonErrorHandler(w, r, fmt.Errorf("%w: %v", ErrBadRequest, err))
			return
		}
		filter.Profile = &profile
	}

	publications, err := a.store.Publications(r.Context(), filter)
	if err != nil {
		HumanReadableJsonErrorHandler(w, r, ErrStorageError{err})
		return
	}
	a.writeJSON(w, r, publications)
}

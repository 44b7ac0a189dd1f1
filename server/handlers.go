package server

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/viniciuslks7/API-Starwars/catalog"
	"github.com/viniciuslks7/API-Starwars/images"
	"github.com/viniciuslks7/API-Starwars/models"
	"github.com/viniciuslks7/API-Starwars/observe"
	"github.com/viniciuslks7/API-Starwars/query"
	"github.com/viniciuslks7/API-Starwars/swapi"
)

// handlerFunc is an HTTP handler whose error is written by the server.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

type matcher[T any] interface {
	Match(T) bool
}

// filterOf adapts a query filter parser to a predicate parser.
func filterOf[T any, F matcher[T]](parse func(url.Values) (F, error)) func(url.Values) (func(T) bool, error) {
	return func(v url.Values) (func(T) bool, error) {
		f, err := parse(v)
		if err != nil {
			return nil, err
		}
		return f.Match, nil
	}
}

// listHandler serves a filtered, sorted and paginated list of summaries.
func listHandler[T, S any](
	load func(context.Context) ([]T, error),
	parse func(url.Values) (func(T) bool, error),
	keys query.Keys[T],
	summary func(T) S,
) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		v := r.URL.Query()
		lp, err := query.ParseListParams(v)
		if err != nil {
			return err
		}
		match, err := parse(v)
		if err != nil {
			return err
		}
		items, err := load(r.Context())
		if err != nil {
			return err
		}
		items, err = query.Sort(query.Filter(items, match), keys, lp.SortBy, lp.Order)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, query.Map(query.Paginate(items, lp.Page, lp.PageSize), summary))
		return nil
	}
}

// detailHandler serves one entity by the {id} path value.
func detailHandler[T any](what string, load func(context.Context, int) (T, error)) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		v, err := load(r.Context(), id)
		if err != nil {
			return notFound(err, what, id)
		}
		writeJSON(w, http.StatusOK, v)
		return nil
	}
}

// searchHandler serves upstream search results by the q parameter.
func searchHandler[T, S any](search func(context.Context, string) ([]T, error), summary func(T) S) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		q := strings.TrimSpace(r.URL.Query().Get("q"))
		if q == "" {
			return badRequest("query parameter q is required")
		}
		items, err := search(r.Context(), q)
		if err != nil {
			return err
		}
		out := make([]S, len(items))
		for i, it := range items {
			out[i] = summary(it)
		}
		writeJSON(w, http.StatusOK, out)
		return nil
	}
}

// relationHandler serves the entities linked to {id} through the named
// relation.
func (s *Server) relationHandler(from swapi.Resource, name, what string) handlerFunc {
	rel, ok := catalog.LookupRelation(from, name)
	if !ok {
		panic("server: undefined relation " + string(from) + "/" + name)
	}
	return func(w http.ResponseWriter, r *http.Request) error {
		id, err := pathID(r)
		if err != nil {
			return err
		}
		related, err := s.catalog.Related(r.Context(), rel, id)
		if err != nil {
			return notFound(err, what, id)
		}
		writeJSON(w, http.StatusOK, related)
		return nil
	}
}

func pathID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id < 1 {
		return 0, badRequest("invalid id %q: must be a positive integer", raw)
	}
	return id, nil
}

// parseIDs accepts repeated and comma-separated ids parameters.
func parseIDs(v url.Values) ([]int, error) {
	var ids []int
	for _, raw := range v["ids"] {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.Atoi(part)
			if err != nil || id < 1 {
				return nil, badRequest("invalid id %q in ids", part)
			}
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func jsonHandler[T any](load func(context.Context) (T, error)) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		v, err := load(r.Context())
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, v)
		return nil
	}
}

// RootResponse describes the service at /.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Health  string `json:"health"`
	API     string `json:"api"`
	Images  string `json:"images,omitempty"`
}

func (s *Server) root(w http.ResponseWriter, r *http.Request) error {
	resp := RootResponse{
		Name:    s.cfg.Service.Name,
		Version: s.cfg.Service.Version,
		Health:  "/health",
		API:     s.cfg.Server.APIPrefix,
	}
	if s.images != nil {
		resp.Images = s.cfg.Server.APIPrefix + "/images/{type}/{id}"
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) ranking(w http.ResponseWriter, r *http.Request) error {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > catalog.MaxRankingLimit {
			return badRequest("limit must be an integer between 1 and %d", catalog.MaxRankingLimit)
		}
		limit = n
	}
	name := r.PathValue("name")
	ranking, err := s.catalog.Ranking(r.Context(), name, limit)
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, ranking)
	return nil
}

// RankingsResponse lists the available rankings.
type RankingsResponse struct {
	Rankings []string `json:"rankings"`
}

func (s *Server) rankings(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, RankingsResponse{Rankings: catalog.RankingNames()})
	return nil
}

func (s *Server) eras(w http.ResponseWriter, r *http.Request) error {
	writeJSON(w, http.StatusOK, s.catalog.Eras())
	return nil
}

func (s *Server) journey(w http.ResponseWriter, r *http.Request) error {
	id, err := pathID(r)
	if err != nil {
		return err
	}
	j, err := s.catalog.CharacterJourney(r.Context(), id)
	if err != nil {
		return notFound(err, "Character", id)
	}
	writeJSON(w, http.StatusOK, j)
	return nil
}

func compareHandler(compare func(context.Context, []int) (catalog.Comparison, error)) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request) error {
		ids, err := parseIDs(r.URL.Query())
		if err != nil {
			return err
		}
		c, err := compare(r.Context(), ids)
		if err != nil {
			return err
		}
		writeJSON(w, http.StatusOK, c)
		return nil
	}
}

// CacheStatsResponse reports both caches for admins.
type CacheStatsResponse struct {
	Responses any `json:"responses"`
	Images    any `json:"images,omitempty"`
}

// ClearResponse reports how many entries a purge removed.
type ClearResponse struct {
	Removed int    `json:"removed"`
	Prefix  string `json:"prefix,omitempty"`
}

func (s *Server) cacheStats(w http.ResponseWriter, r *http.Request) error {
	resp := CacheStatsResponse{Responses: s.store.Stats()}
	if s.images != nil {
		resp.Images = s.images.Store().Stats()
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) cacheClear(w http.ResponseWriter, r *http.Request) error {
	prefix := strings.TrimSpace(r.URL.Query().Get("prefix"))
	var removed int
	if prefix != "" {
		removed = s.store.ClearPrefix(r.Context(), prefix)
	} else {
		removed = s.store.Clear(r.Context())
		if s.images != nil {
			removed += s.images.Store().Clear(r.Context())
			s.images.Invalidate()
		}
	}
	s.client.Invalidate()
	s.logger.Info(r.Context(), "cache purged",
		observe.String("prefix", prefix),
		observe.Int("removed", removed),
	)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusOK, ClearResponse{Removed: removed, Prefix: prefix})
	return nil
}

func (s *Server) image(w http.ResponseWriter, r *http.Request) error {
	kind, err := images.ParseKind(r.PathValue("type"))
	if err != nil {
		return err
	}
	id, err := pathID(r)
	if err != nil {
		return err
	}
	img := s.images.Image(r.Context(), kind, id)
	h := w.Header()
	h.Set("Content-Type", img.ContentType)
	h.Set("Cache-Control", "public, max-age=86400")
	h.Set("Content-Length", strconv.Itoa(len(img.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(img.Data)
	return nil
}

// Summary adapters keep the list handlers generic over record types.
var (
	personSummary   = models.Person.Summary
	filmSummary     = models.Film.Summary
	starshipSummary = models.Starship.Summary
	planetSummary   = models.Planet.Summary
	speciesSummary  = models.Species.Summary
	vehicleSummary  = models.Vehicle.Summary
)

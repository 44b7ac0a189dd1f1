package server

import (
	"net/http"

	"github.com/viniciuslks7/API-Starwars/health"
	"github.com/viniciuslks7/API-Starwars/models"
	"github.com/viniciuslks7/API-Starwars/query"
	"github.com/viniciuslks7/API-Starwars/swapi"
)

func (s *Server) routes(mux *http.ServeMux) {
	p := s.cfg.Server.APIPrefix
	get := func(path string, h handlerFunc, mws ...Middleware) {
		s.handle(mux, "GET "+p+path, h, mws...)
	}

	s.handle(mux, "GET /{$}", s.root)
	s.handleHTTP(mux, "GET /health", health.StatusHandler(s.cfg.Service.Name, s.cfg.Service.Version))
	s.handleHTTP(mux, "GET /health/ready", health.ReadinessHandler(s.health))
	s.handleHTTP(mux, "GET /health/live", health.LivenessHandler())
	s.handleHTTP(mux, "GET /metrics", s.obs.MetricsHandler())

	get("/people", listHandler(s.catalog.People, filterOf[models.Person](query.ParsePersonFilter), query.PeopleSortKeys, personSummary))
	get("/people/search", searchHandler(s.catalog.SearchPeople, personSummary))
	get("/people/{id}", detailHandler("Character", s.catalog.Person))
	get("/people/{id}/films", s.relationHandler(swapi.People, "films", "Character"))
	get("/people/{id}/starships", s.relationHandler(swapi.People, "starships", "Character"))
	get("/people/{id}/vehicles", s.relationHandler(swapi.People, "vehicles", "Character"))
	get("/people/{id}/species", s.relationHandler(swapi.People, "species", "Character"))

	get("/films", listHandler(s.catalog.Films, filterOf[models.Film](query.ParseFilmFilter), query.FilmSortKeys, filmSummary))
	get("/films/{id}", detailHandler("Film", s.catalog.Film))
	get("/films/{id}/characters", s.relationHandler(swapi.Films, "characters", "Film"))
	get("/films/{id}/planets", s.relationHandler(swapi.Films, "planets", "Film"))
	get("/films/{id}/starships", s.relationHandler(swapi.Films, "starships", "Film"))
	get("/films/{id}/vehicles", s.relationHandler(swapi.Films, "vehicles", "Film"))
	get("/films/{id}/species", s.relationHandler(swapi.Films, "species", "Film"))

	get("/starships", listHandler(s.catalog.Starships, filterOf[models.Starship](query.ParseStarshipFilter), query.StarshipSortKeys, starshipSummary))
	get("/starships/search", searchHandler(s.catalog.SearchStarships, starshipSummary))
	get("/starships/{id}", detailHandler("Starship", s.catalog.Starship))
	get("/starships/{id}/pilots", s.relationHandler(swapi.Starships, "pilots", "Starship"))
	get("/starships/{id}/films", s.relationHandler(swapi.Starships, "films", "Starship"))

	get("/planets", listHandler(s.catalog.Planets, filterOf[models.Planet](query.ParsePlanetFilter), query.PlanetSortKeys, planetSummary))
	get("/planets/search", searchHandler(s.catalog.SearchPlanets, planetSummary))
	get("/planets/{id}", detailHandler("Planet", s.catalog.Planet))
	get("/planets/{id}/residents", s.relationHandler(swapi.Planets, "residents", "Planet"))
	get("/planets/{id}/films", s.relationHandler(swapi.Planets, "films", "Planet"))

	get("/vehicles", listHandler(s.catalog.Vehicles, filterOf[models.Vehicle](query.ParseVehicleFilter), query.VehicleSortKeys, vehicleSummary))
	get("/vehicles/{id}", detailHandler("Vehicle", s.catalog.Vehicle))
	get("/vehicles/{id}/pilots", s.relationHandler(swapi.Vehicles, "pilots", "Vehicle"))

	get("/species", listHandler(s.catalog.SpeciesList, filterOf[models.Species](query.ParseSpeciesFilter), query.SpeciesSortKeys, speciesSummary))
	get("/species/{id}", detailHandler("Species", s.catalog.Species))
	get("/species/{id}/people", s.relationHandler(swapi.Species, "people", "Species"))

	get("/statistics", jsonHandler(s.catalog.Overview))
	get("/statistics/films", jsonHandler(s.catalog.FilmStatistics))
	get("/statistics/characters", jsonHandler(s.catalog.CharacterStatistics))
	get("/statistics/planets", jsonHandler(s.catalog.PlanetStatistics))

	get("/rankings", s.rankings)
	get("/rankings/{name}", s.ranking)

	get("/timeline/films/release-order", jsonHandler(s.catalog.ReleaseOrder))
	get("/timeline/films/chronological", jsonHandler(s.catalog.Chronological))
	get("/timeline/eras", s.eras)
	get("/timeline/character-journey/{id}", s.journey)

	get("/compare/characters", compareHandler(s.catalog.CompareCharacters))
	get("/compare/starships", compareHandler(s.catalog.CompareStarships))
	get("/compare/planets", compareHandler(s.catalog.ComparePlanets))

	// Admin routes exist only behind authentication.
	if s.authMW != nil {
		get("/admin/cache", s.cacheStats, s.authMW.RequireAdmin)
		s.handle(mux, "DELETE "+p+"/admin/cache", s.cacheClear, s.authMW.RequireAdmin)
	}

	if s.images != nil {
		get("/images/{type}/{id}", s.image)
	}

	s.handle(mux, "/", func(w http.ResponseWriter, r *http.Request) error {
		return &httpError{status: http.StatusNotFound, msg: "no route for " + r.Method + " " + r.URL.Path}
	})
}

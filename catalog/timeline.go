package catalog

import (
	"cmp"
	"context"
	"slices"

	"github.com/viniciuslks7/API-Starwars/models"
	"github.com/viniciuslks7/API-Starwars/swapi"
)

// TimelineFilm is a film positioned on a timeline.
type TimelineFilm struct {
	ID                 int          `json:"id"`
	EpisodeID          int          `json:"episode_id"`
	Title              string       `json:"title"`
	ReleaseDate        *models.Date `json:"release_date"`
	Director           string       `json:"director"`
	Era                string       `json:"era"`
	ChronologicalOrder int          `json:"chronological_order,omitempty"`
}

// JourneyCharacter identifies the character of a journey.
type JourneyCharacter struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	BirthYear   string `json:"birth_year"`
	HomeworldID *int   `json:"homeworld_id"`
}

// JourneyStop is one film appearance of a character.
type JourneyStop struct {
	EpisodeID   int          `json:"episode_id"`
	Title       string       `json:"title"`
	ReleaseDate *models.Date `json:"release_date"`
	Era         string       `json:"era"`
}

// Journey lists the films a character appears in, in episode order.
type Journey struct {
	Character  JourneyCharacter `json:"character"`
	TotalFilms int              `json:"total_films"`
	Journey    []JourneyStop    `json:"journey"`
}

func timelineFilm(f models.Film) TimelineFilm {
	return TimelineFilm{
		ID:          f.ID,
		EpisodeID:   f.EpisodeID,
		Title:       f.Title,
		ReleaseDate: f.ReleaseDate,
		Director:    f.Director,
		Era:         f.Era(),
	}
}

// ReleaseOrder returns films by release date. Films without a date come
// last.
func (s *Service) ReleaseOrder(ctx context.Context) ([]TimelineFilm, error) {
	films, err := s.Films(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TimelineFilm, len(films))
	for i, f := range films {
		out[i] = timelineFilm(f)
	}
	slices.SortStableFunc(out, func(a, b TimelineFilm) int {
		switch {
		case a.ReleaseDate == nil && b.ReleaseDate == nil:
			return 0
		case a.ReleaseDate == nil:
			return 1
		case b.ReleaseDate == nil:
			return -1
		}
		return a.ReleaseDate.Compare(b.ReleaseDate.Time)
	})
	return out, nil
}

// Chronological returns films in story order, which is episode order.
func (s *Service) Chronological(ctx context.Context) ([]TimelineFilm, error) {
	films, err := s.Films(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]TimelineFilm, len(films))
	for i, f := range films {
		out[i] = timelineFilm(f)
		out[i].ChronologicalOrder = f.EpisodeID
	}
	slices.SortStableFunc(out, func(a, b TimelineFilm) int {
		return cmp.Compare(a.ChronologicalOrder, b.ChronologicalOrder)
	})
	return out, nil
}

// Eras returns the fixed list of saga eras.
func (s *Service) Eras() []models.EraInfo { return models.Eras() }

// CharacterJourney returns the films of one character. A missing
// character is reported as swapi.ErrNotFound.
func (s *Service) CharacterJourney(ctx context.Context, id int) (Journey, error) {
	person, err := get(ctx, s, swapi.People, id, models.DecodePerson)
	if err != nil {
		return Journey{}, err
	}
	films, err := s.Films(ctx)
	if err != nil {
		return Journey{}, err
	}

	appears := make(map[int]struct{}, len(person.FilmIDs))
	for _, fid := range person.FilmIDs {
		appears[fid] = struct{}{}
	}
	stops := make([]models.Film, 0, len(person.FilmIDs))
	for _, f := range films {
		if _, ok := appears[f.ID]; ok {
			stops = append(stops, f)
		}
	}
	slices.SortStableFunc(stops, func(a, b models.Film) int { return cmp.Compare(a.EpisodeID, b.EpisodeID) })

	j := Journey{
		Character: JourneyCharacter{
			ID:          person.ID,
			Name:        person.Name,
			BirthYear:   person.BirthYear,
			HomeworldID: person.HomeworldID,
		},
		TotalFilms: len(stops),
		Journey:    make([]JourneyStop, len(stops)),
	}
	for i, f := range stops {
		j.Journey[i] = JourneyStop{EpisodeID: f.EpisodeID, Title: f.Title, ReleaseDate: f.ReleaseDate, Era: f.Era()}
	}
	return j, nil
}

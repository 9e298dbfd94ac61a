package movie

import (
	"github.com/google/uuid"
)

type Movie struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Year    uint16    `json:"year"`
	WasGood bool      `json:"was_good"`
}

// NewMovie returns a movie with a freshly generated random identifier.
func NewMovie(name string, year uint16, wasGood bool) Movie {
	return Movie{
		ID:      uuid.New(),
		Name:    name,
		Year:    year,
		WasGood: wasGood,
	}
}

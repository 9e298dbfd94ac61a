package movie

import (
	"sync"

	"github.com/google/uuid"
)

type Store struct {
	sync.RWMutex
	movies map[uuid.UUID]Movie
}

func NewStore() *Store {
	return &Store{
		movies: make(map[uuid.UUID]Movie),
	}
}

// Find returns a copy of the movie stored under id.
func (s *Store) Find(id uuid.UUID) (Movie, bool) {
	s.RLock()
	defer s.RUnlock()
	m, exists := s.movies[id]
	return m, exists
}

func (s *Store) Save(m Movie) {
	s.Lock()
	defer s.Unlock()
	s.movies[m.ID] = m
}

func (s *Store) Len() int {
	s.RLock()
	defer s.RUnlock()
	return len(s.movies)
}

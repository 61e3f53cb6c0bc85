package store

import (
	"sync"

	"recoveryos/internal/domain"
)

// ConsentStore guarda el consentimiento vigente por sujeto. Cada Put
// reemplaza el registro completo; entre escrituras concurrentes gana la
// última y nunca se observa un registro a medio escribir.
type ConsentStore struct {
	mu    sync.Mutex // protege el mapa de celdas, no su contenido
	cells map[string]*consentCell
}

type consentCell struct {
	mu  sync.Mutex
	rec domain.ConsentRecord
	set bool
}

// NewConsentStore crea un almacén vacío.
func NewConsentStore() *ConsentStore {
	return &ConsentStore{cells: make(map[string]*consentCell)}
}

// Put registra o reemplaza el consentimiento del sujeto.
func (s *ConsentStore) Put(subject string, rec domain.ConsentRecord) {
	cell := s.cellFor(subject)
	cell.mu.Lock()
	cell.rec = rec
	cell.set = true
	cell.mu.Unlock()
}

// Get devuelve el consentimiento vigente y si existe alguno.
func (s *ConsentStore) Get(subject string) (domain.ConsentRecord, bool) {
	cell := s.cellFor(subject)
	cell.mu.Lock()
	defer cell.mu.Unlock()
	return cell.rec, cell.set
}

func (s *ConsentStore) cellFor(subject string) *consentCell {
	s.mu.Lock()
	defer s.mu.Unlock()
	cell, ok := s.cells[subject]
	if !ok {
		cell = &consentCell{}
		s.cells[subject] = cell
	}
	return cell
}

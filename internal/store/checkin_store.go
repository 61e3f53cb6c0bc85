// Package store contiene los almacenes en memoria del servicio. Todo el
// estado vive en el proceso; un reinicio lo descarta (sin persistencia).
package store

import (
	"sync"
	"sync/atomic"

	"recoveryos/internal/domain"
)

// CheckinStore conserva el historial de check-ins por sujeto. Cada sujeto
// tiene su propio lock: escribir para uno nunca bloquea la lectura de otro.
type CheckinStore struct {
	mu    sync.Mutex // protege el mapa de logs, no su contenido
	logs  map[string]*subjectLog
	total atomic.Int64
}

type subjectLog struct {
	mu      sync.Mutex
	records []domain.CheckinRecord
}

// NewCheckinStore crea un almacén vacío.
func NewCheckinStore() *CheckinStore {
	return &CheckinStore{logs: make(map[string]*subjectLog)}
}

// Append agrega un registro al final del historial del sujeto.
func (s *CheckinStore) Append(subject string, rec domain.CheckinRecord) {
	log := s.logFor(subject)
	log.mu.Lock()
	log.records = append(log.records, rec)
	log.mu.Unlock()
	s.total.Add(1)
}

// ReadAll devuelve una copia del historial del sujeto en orden de inserción.
// La copia aísla al llamador de escrituras posteriores.
func (s *CheckinStore) ReadAll(subject string) []domain.CheckinRecord {
	log := s.logFor(subject)
	log.mu.Lock()
	defer log.mu.Unlock()
	return snapshot(log.records)
}

// AppendAndReadAll agrega el registro y devuelve el historial resultante en
// una sola sección crítica, de modo que la lectura siempre contiene la
// escritura recién hecha aunque otros escritores compitan por el sujeto.
func (s *CheckinStore) AppendAndReadAll(subject string, rec domain.CheckinRecord) []domain.CheckinRecord {
	log := s.logFor(subject)
	log.mu.Lock()
	log.records = append(log.records, rec)
	out := snapshot(log.records)
	log.mu.Unlock()
	s.total.Add(1)
	return out
}

// Count devuelve el total de registros de todos los sujetos.
func (s *CheckinStore) Count() int64 {
	return s.total.Load()
}

func (s *CheckinStore) logFor(subject string) *subjectLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	log, ok := s.logs[subject]
	if !ok {
		log = &subjectLog{}
		s.logs[subject] = log
	}
	return log
}

func snapshot(records []domain.CheckinRecord) []domain.CheckinRecord {
	out := make([]domain.CheckinRecord, len(records))
	copy(out, records)
	return out
}

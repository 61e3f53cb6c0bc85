// Package ratelimit implementa un sliding-window log en memoria con
// exclusión por clave: el burst de un cliente nunca serializa a los demás.
package ratelimit

import (
	"fmt"
	"sync"
	"time"
)

// Limiter decide admisiones por clave dentro de una ventana deslizante.
// La pertenencia a la ventana es el intervalo semiabierto (now-window, now]:
// un timestamp exactamente en now-window ya está expirado.
type Limiter struct {
	mu       sync.Mutex // protege el mapa de ventanas, no su contenido
	windows  map[string]*rateWindow
	capacity int
	window   time.Duration
}

// rateWindow guarda los timestamps admitidos aún vigentes para una clave.
type rateWindow struct {
	mu   sync.Mutex
	hits []time.Time
}

// NewLimiter crea un limiter con capacidad y ventana fijas.
// Una configuración no positiva es un error de programación y hace panic.
func NewLimiter(capacity int, window time.Duration) *Limiter {
	if capacity <= 0 {
		panic(fmt.Sprintf("ratelimit: capacity must be positive, got %d", capacity))
	}
	if window <= 0 {
		panic(fmt.Sprintf("ratelimit: window must be positive, got %v", window))
	}
	return &Limiter{
		windows:  make(map[string]*rateWindow),
		capacity: capacity,
		window:   window,
	}
}

// Admit decide la admisión de key usando el reloj del sistema.
func (l *Limiter) Admit(key string) bool {
	return l.AdmitAt(key, time.Now().UTC())
}

// AdmitAt poda las entradas expiradas de la ventana de key y admite si el
// conteo restante queda por debajo de la capacidad. Todo el
// read-modify-write ocurre bajo el lock de esa clave.
func (l *Limiter) AdmitAt(key string, now time.Time) bool {
	w := l.windowFor(key)

	w.mu.Lock()
	defer w.mu.Unlock()

	cutoff := now.Add(-l.window)
	kept := w.hits[:0]
	for _, ts := range w.hits {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.capacity {
		w.hits = kept
		return false
	}
	w.hits = append(kept, now)
	return true
}

// Capacity devuelve el máximo de admisiones por ventana.
func (l *Limiter) Capacity() int {
	return l.capacity
}

// Window devuelve la duración de la ventana deslizante.
func (l *Limiter) Window() time.Duration {
	return l.window
}

// windowFor obtiene o crea la ventana de una clave. El lock global solo
// cubre el lookup; las claves ociosas conservan su ventana (sin eviction).
func (l *Limiter) windowFor(key string) *rateWindow {
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.windows[key]
	if !ok {
		w = &rateWindow{}
		l.windows[key] = w
	}
	return w
}

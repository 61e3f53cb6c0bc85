package store

import (
	"fmt"
	"sync"

	"recoveryos/internal/domain"
)

// AuditLog es un buffer circular de decisiones de agentes. Al llenarse
// descarta las entradas más viejas; el tamaño en memoria queda acotado.
type AuditLog struct {
	mu      sync.Mutex
	entries []domain.AuditEntry
	next    int
	size    int
}

// NewAuditLog crea un log con capacidad fija. Una capacidad no positiva es
// un error de programación y hace panic.
func NewAuditLog(capacity int) *AuditLog {
	if capacity <= 0 {
		panic(fmt.Sprintf("store: audit log capacity must be positive, got %d", capacity))
	}
	return &AuditLog{entries: make([]domain.AuditEntry, capacity)}
}

// Append registra una entrada, desplazando la más vieja si no hay lugar.
func (l *AuditLog) Append(e domain.AuditEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[l.next] = e
	l.next = (l.next + 1) % len(l.entries)
	if l.size < len(l.entries) {
		l.size++
	}
}

// Recent devuelve hasta n entradas, de la más nueva a la más vieja.
func (l *AuditLog) Recent(n int) []domain.AuditEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	if n <= 0 || l.size == 0 {
		return nil
	}
	if n > l.size {
		n = l.size
	}
	out := make([]domain.AuditEntry, 0, n)
	for i := 1; i <= n; i++ {
		idx := (l.next - i + len(l.entries)) % len(l.entries)
		out = append(out, l.entries[idx])
	}
	return out
}

// Len devuelve cuántas entradas hay retenidas.
func (l *AuditLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.size
}

package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// CheckinRecord es un auto-reporte de bienestar inmutable.
// Los rangos se validan en el borde HTTP; el núcleo los asume correctos.
type CheckinRecord struct {
	Adherence  int       `json:"adherence"`   // 0-100
	MoodTrend  int       `json:"mood_trend"`  // -10..10
	Cravings   int       `json:"cravings"`    // 0-100
	SleepHours float64   `json:"sleep_hours"` // 0-24
	Isolation  int       `json:"isolation"`   // 0-100
	RecordedAt time.Time `json:"recorded_at"`
}

// SubjectHash devuelve el hash sha256 (hex) de un identificador de sujeto.
// Los logs y el audit trail solo ven este valor, nunca el identificador crudo.
func SubjectHash(subject string) string {
	sum := sha256.Sum256([]byte(subject))
	return hex.EncodeToString(sum[:])
}

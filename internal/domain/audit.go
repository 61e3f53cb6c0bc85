package domain

import "time"

// AuditEntry es una decisión de agente registrada en el audit trail.
// SubjectHash siempre va pseudonimizado, nunca el identificador crudo.
type AuditEntry struct {
	Agent       string         `json:"agent"`
	Decision    string         `json:"decision"`
	SubjectHash string         `json:"subject_hash"`
	InputRefs   map[string]any `json:"input_refs,omitempty"`
	RulesFired  []string       `json:"rules_fired,omitempty"`
	Outputs     map[string]any `json:"outputs,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

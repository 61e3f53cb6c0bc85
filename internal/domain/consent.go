package domain

import "time"

// ConsentRecord es el consentimiento vigente de un sujeto. Una escritura
// reemplaza por completo el registro anterior (last-write-wins).
type ConsentRecord struct {
	Accepted     bool      `json:"accepted"`
	TermsVersion string    `json:"terms_version"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// Tipos de contenido saliente que pasan por el gate de seguridad.
const (
	ContentMemberMessage      = "member_message"
	ContentClinicianBriefing  = "clinician_briefing"
	ContentFamilyUpdate       = "family_update"
)

// Permisos de compartición otorgables por consentimiento.
const (
	PermSendMemberMessages = "send_member_messages"
	PermShareWithClinician = "share_with_clinician"
	PermShareWithFamily    = "share_with_family"
)

// ConsentScope es la vista derivada de un ConsentRecord que consume el
// auditor de seguridad. Scope nil significa default deny.
type ConsentScope struct {
	Status      string   `json:"status"` // "active" o "revoked"
	Permissions []string `json:"permissions"`
}

// Allows reporta si el scope otorga el permiso indicado.
func (s *ConsentScope) Allows(permission string) bool {
	if s == nil {
		return false
	}
	for _, p := range s.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

package service

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"recoveryos/internal/domain"
)

/*
========================
 Patrones de política
========================
*/

// Decisiones posibles del auditor.
const (
	DecisionApproved = "APPROVED"
	DecisionBlocked  = "BLOCKED"
)

var crisisPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(kill|harm|hurt)\s+(myself|yourself|themselves)\b`),
	regexp.MustCompile(`(?i)\bsuicid(e|al)\b`),
	regexp.MustCompile(`(?i)\bend\s+(my|your|their)\s+life\b`),
	regexp.MustCompile(`(?i)\bwant\s+to\s+die\b`),
	regexp.MustCompile(`(?i)\bbetter\s+off\s+dead\b`),
	regexp.MustCompile(`(?i)\bno\s+reason\s+to\s+live\b`),
}

// Lenguaje estigmatizante a bloquear fuera de contexto clínico; el lenguaje
// preferido es "person in recovery", "substance use", "in recovery".
var stigmaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\baddict\b`),
	regexp.MustCompile(`(?i)\bjunkie\b`),
	regexp.MustCompile(`(?i)\bcrackhead\b`),
	regexp.MustCompile(`(?i)\bdrug\s+abuse\b`),
	regexp.MustCompile(`(?i)\bclean\b`),
	regexp.MustCompile(`(?i)\bdirty\b`),
	regexp.MustCompile(`(?i)\brelapse\b.*\bfail(ed|ure)\b`),
}

var piiPatterns = []struct {
	re          *regexp.Regexp
	replacement string
}{
	{regexp.MustCompile(`(?i)\b\d{3}-\d{2}-\d{4}\b`), "[SSN_REDACTED]"},
	{regexp.MustCompile(`(?i)\b\d{3}-\d{3}-\d{4}\b`), "[PHONE_REDACTED]"},
	{regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`), "[EMAIL_REDACTED]"},
	{regexp.MustCompile(`(?i)\b\d{1,5}\s+[\w\s]+(street|st|avenue|ave|road|rd|boulevard|blvd)\b`), "[ADDRESS_REDACTED]"},
}

var clinicalAllowlist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)craving\s+assessment`),
	regexp.MustCompile(`(?i)craving\s+scale`),
	regexp.MustCompile(`(?i)substance\s+use\s+disorder`),
	regexp.MustCompile(`(?i)recovery\s+plan`),
}

var safetyResourceIndicators = []*regexp.Regexp{
	regexp.MustCompile(`(?i)crisis\s+(line|hotline)`),
	regexp.MustCompile(`988`),
	regexp.MustCompile(`1-800-273-8255`),
	regexp.MustCompile(`(?i)emergency\s+services`),
	regexp.MustCompile(`(?i)if\s+you\s+are\s+in\s+danger`),
}

/*
========================
 Safety Auditor
========================
*/

// Redaction registra un patrón de PII aplicado y su reemplazo.
type Redaction struct {
	Pattern     string `json:"pattern"`
	Replacement string `json:"replacement"`
}

// SafetyAuditResult es el fallo del auditor con su rastro completo.
type SafetyAuditResult struct {
	Decision           string         `json:"decision"`
	PolicyRulesFired   []string       `json:"policy_rules_triggered"`
	Redactions         []Redaction    `json:"redactions"`
	ConsentVerdict     string         `json:"consent_verdict,omitempty"`
	EscalationRequired bool           `json:"escalation_required"`
	SanitizedContent   string         `json:"sanitized_content"`
	AuditMetadata      map[string]any `json:"audit_metadata"`
}

// SafetyAuditor es la compuerta final antes de que cualquier salida llegue
// a miembros, familiares o clínicos. Reglas deterministas, veredicto
// explicado y default deny para consentimiento.
type SafetyAuditor struct{}

// NewSafetyAuditor crea el auditor. Los patrones se compilan al cargar el
// paquete; la instancia no guarda estado.
func NewSafetyAuditor() *SafetyAuditor {
	return &SafetyAuditor{}
}

// Audit revisa el contenido en capas: lenguaje de crisis, lenguaje
// estigmatizante, redacción de PII y política de consentimiento. Un mensaje
// al miembro con lenguaje de crisis solo pasa si trae recursos de ayuda, y
// aun así queda marcado para escalamiento.
func (a *SafetyAuditor) Audit(content, contentType, subject string, scope *domain.ConsentScope) SafetyAuditResult {
	var rules []string
	escalation := false

	if matchesAny(content, crisisPatterns) {
		rules = append(rules, "CRISIS_LANGUAGE_DETECTED")
		escalation = true
		if contentType != domain.ContentMemberMessage || !isSafetyResource(content) {
			return SafetyAuditResult{
				Decision:           DecisionBlocked,
				PolicyRulesFired:   rules,
				EscalationRequired: true,
				SanitizedContent:   content,
				AuditMetadata:      auditMetadata(subject, "Crisis language detected"),
			}
		}
	}

	if matchesAny(content, stigmaPatterns) && !matchesAny(content, clinicalAllowlist) {
		rules = append(rules, "STIGMA_LANGUAGE_DETECTED")
		return SafetyAuditResult{
			Decision:         DecisionBlocked,
			PolicyRulesFired: rules,
			SanitizedContent: content,
			AuditMetadata:    auditMetadata(subject, "Stigmatizing language detected outside clinical context"),
		}
	}

	sanitized, redactions := redactPII(content)
	if len(redactions) > 0 {
		rules = append(rules, "PII_PHI_REDACTED")
	}

	verdict := consentVerdict(contentType, scope)
	if !strings.HasPrefix(verdict, "ALLOWED") {
		rules = append(rules, "CONSENT_DENIED")
		return SafetyAuditResult{
			Decision:         DecisionBlocked,
			PolicyRulesFired: rules,
			Redactions:       redactions,
			ConsentVerdict:   verdict,
			SanitizedContent: sanitized,
			AuditMetadata:    auditMetadata(subject, verdict),
		}
	}

	return SafetyAuditResult{
		Decision:           DecisionApproved,
		PolicyRulesFired:   rules,
		Redactions:         redactions,
		ConsentVerdict:     verdict,
		EscalationRequired: escalation,
		SanitizedContent:   sanitized,
		AuditMetadata:      auditMetadata(subject, ""),
	}
}

/*
========================
 Chequeos individuales
========================
*/

func matchesAny(content string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(content) {
			return true
		}
	}
	return false
}

// isSafetyResource reconoce contenido que comparte recursos de ayuda
// (línea de crisis, 988) en lugar de expresar la crisis misma.
func isSafetyResource(content string) bool {
	return matchesAny(content, safetyResourceIndicators)
}

func redactPII(content string) (string, []Redaction) {
	sanitized := content
	var redactions []Redaction
	for _, p := range piiPatterns {
		if p.re.MatchString(sanitized) {
			sanitized = p.re.ReplaceAllString(sanitized, p.replacement)
			redactions = append(redactions, Redaction{Pattern: p.re.String(), Replacement: p.replacement})
		}
	}
	return sanitized, redactions
}

// consentVerdict aplica la política de compartir con default deny: sin
// scope no sale nada, y cada tipo de contenido exige su permiso explícito.
func consentVerdict(contentType string, scope *domain.ConsentScope) string {
	if scope == nil {
		return "DENIED: No consent scope provided (default deny)"
	}
	if scope.Status != "active" {
		status := scope.Status
		if status == "" {
			status = "unknown"
		}
		return fmt.Sprintf("DENIED: Consent status is %s", status)
	}

	required := requiredPermission(contentType)
	if !scope.Allows(required) {
		return fmt.Sprintf("DENIED: Permission '%s' not granted", required)
	}
	return "ALLOWED: Consent scope permits this content type"
}

func requiredPermission(contentType string) string {
	switch contentType {
	case domain.ContentMemberMessage:
		return domain.PermSendMemberMessages
	case domain.ContentClinicianBriefing:
		return domain.PermShareWithClinician
	case domain.ContentFamilyUpdate:
		return domain.PermShareWithFamily
	default:
		return ""
	}
}

func auditMetadata(subject, reason string) map[string]any {
	meta := map[string]any{
		"timestamp":    time.Now().UTC().Format(time.RFC3339Nano),
		"user_id_hash": domain.SubjectHash(subject),
	}
	if reason != "" {
		meta["reason"] = reason
	}
	return meta
}

package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"recoveryos/internal/domain"
	"recoveryos/internal/store"
)

/*
========================
 Orquestador de agentes
========================
*/

// ClinicianBriefing es el resultado del flujo de briefing: el análisis de
// patrones, el contenido compuesto y el fallo del auditor sobre ese
// contenido. Content queda vacío cuando el auditor bloquea.
type ClinicianBriefing struct {
	Analysis domain.PatternsAnalysis `json:"analysis"`
	Content  string                  `json:"content,omitempty"`
	Audit    SafetyAuditResult       `json:"audit"`
}

// Orchestrator coordina analista y auditor, y deja cada decisión de agente
// en el audit trail. Ninguna salida llega a un clínico sin pasar por el
// auditor con el scope de consentimiento del sujeto.
type Orchestrator struct {
	logger  *zap.Logger
	analyst *PatternsAnalyst
	auditor *SafetyAuditor
	trail   *store.AuditLog
}

func NewOrchestrator(logger *zap.Logger, analyst *PatternsAnalyst, auditor *SafetyAuditor, trail *store.AuditLog) *Orchestrator {
	return &Orchestrator{
		logger:  logger,
		analyst: analyst,
		auditor: auditor,
		trail:   trail,
	}
}

// AnalyzeCheckins corre el analista de patrones sobre el historial y
// registra la decisión en el audit trail.
func (o *Orchestrator) AnalyzeCheckins(subject string, history []domain.CheckinRecord) domain.PatternsAnalysis {
	analysis := o.analyst.Analyze(subject, history)

	outputs := map[string]any{
		"risk_band":     string(analysis.RiskBand),
		"confidence":    analysis.Confidence,
		"signals_count": len(analysis.Signals),
	}
	if analysis.Score != nil {
		outputs["score"] = *analysis.Score
	}
	o.logDecision("patterns_analyst", strings.ToUpper(string(analysis.RiskBand)), subject,
		map[string]any{"checkins_count": len(history)},
		analysis.ReasonCodes,
		outputs,
		nil,
	)

	return analysis
}

// PrepareClinicianBriefing analiza el historial, compone el briefing
// determinista y lo somete al auditor bajo el scope del sujeto. El
// contenido solo se entrega si el auditor lo aprueba.
func (o *Orchestrator) PrepareClinicianBriefing(subject string, history []domain.CheckinRecord, scope *domain.ConsentScope) ClinicianBriefing {
	analysis := o.AnalyzeCheckins(subject, history)
	content := composeBriefing(analysis)

	audit := o.auditor.Audit(content, domain.ContentClinicianBriefing, subject, scope)
	o.logDecision("safety_auditor", audit.Decision, subject,
		map[string]any{"content_type": domain.ContentClinicianBriefing, "content_length": len(content)},
		audit.PolicyRulesFired,
		map[string]any{
			"decision":            audit.Decision,
			"redactions_count":    len(audit.Redactions),
			"consent_verdict":     audit.ConsentVerdict,
			"escalation_required": audit.EscalationRequired,
		},
		audit.AuditMetadata,
	)

	briefing := ClinicianBriefing{Analysis: analysis, Audit: audit}
	if audit.Decision == DecisionApproved {
		briefing.Content = audit.SanitizedContent
	}
	return briefing
}

// RecentAuditEntries expone el tramo más nuevo del audit trail.
func (o *Orchestrator) RecentAuditEntries(n int) []domain.AuditEntry {
	return o.trail.Recent(n)
}

func (o *Orchestrator) logDecision(agent, decision, subject string, inputRefs map[string]any, rulesFired []string, outputs, metadata map[string]any) {
	o.trail.Append(domain.AuditEntry{
		Agent:       agent,
		Decision:    decision,
		SubjectHash: domain.SubjectHash(subject),
		InputRefs:   inputRefs,
		RulesFired:  rulesFired,
		Outputs:     outputs,
		Metadata:    metadata,
		CreatedAt:   time.Now().UTC(),
	})
}

/*
========================
 Composición del briefing
========================
*/

// reasonCodeSummaries traduce códigos de razón a lenguaje clínico neutro.
// El texto evita términos estigmatizantes para pasar el gate del auditor.
var reasonCodeSummaries = map[string]string{
	"SLEEP_DISRUPTION":        "Sleep disruption across the recent window",
	"SOCIAL_WITHDRAWAL":       "Increasing social withdrawal",
	"ADHERENCE_DECLINE":       "Decline in plan adherence",
	"CRAVING_SPIKE":           "Elevated craving intensity",
	"MOOD_DETERIORATION":      "Sustained mood deterioration",
	"SLEEP_ISOLATION_PATTERN": "Combined sleep and isolation pattern",
	"MOOD_ADHERENCE_PATTERN":  "Combined mood and adherence pattern",
	"MULTIPLE_RISK_FACTORS":   "Multiple concurrent risk factors",
	"INSUFFICIENT_DATA":       "Not enough check-ins for pattern analysis",
}

// composeBriefing arma el texto del briefing a partir del análisis. Mismo
// análisis, mismo texto: sin modelos, sin aleatoriedad.
func composeBriefing(analysis domain.PatternsAnalysis) string {
	var b strings.Builder
	b.WriteString("Member status briefing.\n")
	b.WriteString(fmt.Sprintf("Risk band: %s (confidence %.2f).\n", analysis.RiskBand, analysis.Confidence))
	if analysis.Score != nil {
		b.WriteString(fmt.Sprintf("Pattern risk score: %d/100.\n", *analysis.Score))
	}

	if len(analysis.ReasonCodes) == 0 {
		b.WriteString("No risk signals detected in the analyzed windows.\n")
		return b.String()
	}

	b.WriteString("Findings:\n")
	codes := append([]string(nil), analysis.ReasonCodes...)
	sort.Strings(codes)
	for _, code := range codes {
		summary, ok := reasonCodeSummaries[code]
		if !ok {
			summary = code
		}
		b.WriteString("- " + summary + "\n")
	}

	for _, sig := range analysis.Signals {
		b.WriteString(fmt.Sprintf("- Signal %s in %s window: value %.1f vs baseline %.1f\n",
			sig.SignalType, sig.Window, sig.Value, sig.Baseline))
	}
	return b.String()
}

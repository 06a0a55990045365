package insight

import "patient-care-api/internal/model"

// LowAdherenceThreshold is the medication score below which the adherence
// alert fires.
const LowAdherenceThreshold = 80

// Inputs is what every rule sees. Appointments is nil when the appointment
// lookup failed; rules that need it skip themselves.
type Inputs struct {
	MedScore     float64
	AptScore     float64
	HealthScore  int
	Appointments []model.Appointment
}

// Rule returns an insight and true when it applies.
type Rule func(in Inputs) (model.Insight, bool)

// DefaultRules in evaluation order. Every rule runs; there is no early exit.
var DefaultRules = []Rule{
	LowAdherence,
	NoCheckupHistory,
}

func LowAdherence(in Inputs) (model.Insight, bool) {
	if in.MedScore >= LowAdherenceThreshold {
		return model.Insight{}, false
	}
	return model.Insight{
		Type:     model.InsightAlert,
		Title:    "Medication Adherence low",
		Message:  "You missed doses this week. Consistency is key for your health.",
		Category: "medication",
	}, true
}

func NoCheckupHistory(in Inputs) (model.Insight, bool) {
	if in.Appointments == nil {
		return model.Insight{}, false
	}
	for _, a := range in.Appointments {
		if a.Status == model.StatusCompleted {
			return model.Insight{}, false
		}
	}
	return model.Insight{
		Type:     model.InsightWarning,
		Title:    "No checkup history",
		Message:  "Schedule your first checkup to establish a baseline.",
		Category: "checkup",
	}, true
}

func evaluate(rules []Rule, in Inputs) []model.Insight {
	out := []model.Insight{}
	for _, r := range rules {
		if ins, ok := r(in); ok {
			out = append(out, ins)
		}
	}
	return out
}

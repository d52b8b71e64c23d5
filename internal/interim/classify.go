package interim

import "github.com/csg33k/aca1095c-generator/internal/domain"

const (
	minimumValuePlan = "PlanA"
	familyTier       = "EMPFAM"
)

type codeSet map[string]struct{}

func newCodeSet(codes ...string) codeSet {
	s := make(codeSet, len(codes))
	for _, c := range codes {
		s[c] = struct{}{}
	}
	return s
}

func (s codeSet) has(c string) bool {
	_, ok := s[c]
	return ok
}

func (s codeSet) intersects(o codeSet) bool {
	for c := range s {
		if o.has(c) {
			return true
		}
	}
	return false
}

var (
	minimumValueTiers = newCodeSet("EMPFAM", "EMP", "EMPCHILD", "EMPSPOUSE")
	employeeTiers     = newCodeSet("EMP", "EMPFAM", "EMPSPOUSE")
	spouseTiers       = newCodeSet("EMPFAM", "EMPSPOUSE")
)

// EligibilityFlags are the eligibility columns of one interim row.
type EligibilityFlags struct {
	MinimumValue bool
	Employee     bool
	Spouse       bool
	Child        bool
}

// EnrollmentFlags are the enrollment columns of one interim row.
type EnrollmentFlags struct {
	Employee bool
	Spouse   bool
	Child    bool
}

// ClassifyEligibility pools the plan and tier codes of every record and
// tests them against the tier sets. All flags are false for no records.
func ClassifyEligibility(records []domain.EligibilityInterval) EligibilityFlags {
	var f EligibilityFlags
	if len(records) == 0 {
		return f
	}
	plans, tiers := codeSet{}, codeSet{}
	for _, r := range records {
		plans[r.Plan] = struct{}{}
		tiers[r.Tier] = struct{}{}
	}
	onlyPlanA := len(plans) == 1 && plans.has(minimumValuePlan)

	f.MinimumValue = onlyPlanA && tiers.intersects(minimumValueTiers)
	f.Employee = tiers.intersects(employeeTiers)
	f.Spouse = tiers.intersects(spouseTiers)
	f.Child = tiers.has(familyTier)
	return f
}

// ClassifyEnrollment mirrors ClassifyEligibility over enrollment tiers.
// Blank tiers are ignored and there is no minimum-value flag.
func ClassifyEnrollment(records []domain.EnrollmentInterval) EnrollmentFlags {
	var f EnrollmentFlags
	tiers := codeSet{}
	for _, r := range records {
		if r.Tier != "" {
			tiers[r.Tier] = struct{}{}
		}
	}
	if len(tiers) == 0 {
		return f
	}
	f.Employee = tiers.intersects(employeeTiers)
	f.Spouse = tiers.intersects(spouseTiers)
	f.Child = tiers.has(familyTier)
	return f
}

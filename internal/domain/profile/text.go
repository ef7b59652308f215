package profile

import "strings"

// Truncation bounds for the text projection. The projected summary is the
// unit sent to the embedding provider and the rerank oracle, so these keep
// it inside provider input limits. Contractual, not tuning knobs.
const (
	maxExperienceEntries = 5
	maxEducationEntries  = 3
	maxPortfolioEntries  = 10
)

const fragmentSeparator = " | "

// Text renders the record as one flattened summary in a fixed field order.
// Absent fields contribute nothing. Deterministic: the same record yields a
// byte-identical string on every call.
func (r *Record) Text() string {
	var parts []string

	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+value)
		}
	}

	add("Name: ", r.Name)
	add("Headline: ", r.Personal.Headline)
	add("Location: ", r.Personal.Location)
	add("Current Role: ", r.Personal.CurrentRole)
	add("Company: ", r.Personal.Company)
	add("Summary: ", r.Personal.Summary)

	if len(r.Personal.Experience) > 0 {
		entries := r.Personal.Experience
		if len(entries) > maxExperienceEntries {
			entries = entries[:maxExperienceEntries]
		}
		rendered := make([]string, len(entries))
		for i, e := range entries {
			rendered[i] = e.Title + " at " + e.Company
		}
		parts = append(parts, "Experience: "+strings.Join(rendered, "; "))
	}

	if len(r.Personal.Education) > 0 {
		entries := r.Personal.Education
		if len(entries) > maxEducationEntries {
			entries = entries[:maxEducationEntries]
		}
		rendered := make([]string, len(entries))
		for i, e := range entries {
			rendered[i] = e.Degree + " from " + e.School
		}
		parts = append(parts, "Education: "+strings.Join(rendered, "; "))
	}

	if r.Investment.IsInvestor {
		parts = append(parts, "Is an investor")
	}
	add("Investment Role: ", r.Investment.InvestmentRole)
	if len(r.Investment.InvestmentFocus) > 0 {
		parts = append(parts, "Investment Focus: "+strings.Join(r.Investment.InvestmentFocus, ", "))
	}
	if len(r.Investment.PortfolioCompanies) > 0 {
		companies := r.Investment.PortfolioCompanies
		if len(companies) > maxPortfolioEntries {
			companies = companies[:maxPortfolioEntries]
		}
		parts = append(parts, "Portfolio Companies: "+strings.Join(companies, ", "))
	}
	if len(r.Investment.SectorsOfInterest) > 0 {
		parts = append(parts, "Sectors of Interest: "+strings.Join(r.Investment.SectorsOfInterest, ", "))
	}
	if len(r.Investment.InvestmentStage) > 0 {
		parts = append(parts, "Investment Stage: "+strings.Join(r.Investment.InvestmentStage, ", "))
	}

	return strings.Join(parts, fragmentSeparator)
}

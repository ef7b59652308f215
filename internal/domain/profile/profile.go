// Package profile holds the profile record aggregate and its deterministic
// text projection used for embedding and reranking.
package profile

import "encoding/json"

// Extraction status tags supplied by the profile source. Informational only;
// the search core does not validate them.
const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
	StatusPartial = "partial"
)

// Experience is one position in a profile's work history.
type Experience struct {
	Title       string `json:"title,omitempty"`
	Company     string `json:"company,omitempty"`
	Duration    string `json:"duration,omitempty"`
	Description string `json:"description,omitempty"`
}

// Education is one entry in a profile's education history.
type Education struct {
	School string `json:"school,omitempty"`
	Degree string `json:"degree,omitempty"`
}

// PersonalInfo holds the biographical part of a record.
type PersonalInfo struct {
	Headline    string       `json:"headline,omitempty"`
	Location    string       `json:"location,omitempty"`
	CurrentRole string       `json:"current_role,omitempty"`
	Company     string       `json:"company,omitempty"`
	Summary     string       `json:"summary,omitempty"`
	Experience  []Experience `json:"experience,omitempty"`
	Education   []Education  `json:"education,omitempty"`
	Skills      []string     `json:"skills,omitempty"`
	Languages   []string     `json:"languages,omitempty"`
}

// InvestmentProfile holds the investment part of a record.
type InvestmentProfile struct {
	IsInvestor         bool     `json:"is_investor"`
	InvestmentRole     string   `json:"investment_role,omitempty"`
	InvestmentFocus    []string `json:"investment_focus,omitempty"`
	PortfolioCompanies []string `json:"portfolio_companies,omitempty"`
	SectorsOfInterest  []string `json:"sectors_of_interest,omitempty"`
	InvestmentStage    []string `json:"investment_stage,omitempty"`
	InvestmentMentions []string `json:"investment_mentions,omitempty"`
}

// Record is one business-angel profile as supplied by the profile source.
// Beyond the typed fields the record is opaque: the raw decoded object is
// retained so filtering and API responses see every field the source sent,
// not just the ones this package knows about.
type Record struct {
	Name             string            `json:"name"`
	LinkedInURL      string            `json:"linkedin_url,omitempty"`
	AvatarURL        string            `json:"avatar_url,omitempty"`
	Personal         PersonalInfo      `json:"personal_info,omitempty"`
	Investment       InvestmentProfile `json:"investment_profile,omitempty"`
	ExtractionStatus string            `json:"extraction_status,omitempty"`

	raw map[string]any
}

// Raw returns the record as the raw decoded JSON object. Nil for records
// built in code rather than decoded from the source.
func (r *Record) Raw() map[string]any { return r.raw }

// UnmarshalJSON decodes both the typed view and the raw object from the
// same bytes. Records are immutable once loaded; the two views never diverge.
func (r *Record) UnmarshalJSON(data []byte) error {
	type alias Record
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record(a)
	r.raw = raw
	return nil
}

// MarshalJSON serves the raw object when present so fields unknown to the
// typed schema survive the round trip.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return json.Marshal(r.raw)
	}
	type alias Record
	return json.Marshal(alias(r))
}

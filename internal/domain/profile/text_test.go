package profile

import (
	"fmt"
	"strings"
	"testing"
)

func fullRecord() Record {
	return Record{
		Name: "Mari Tamm",
		Personal: PersonalInfo{
			Headline:    "Founder & Angel",
			Location:    "Tallinn, Estonia",
			CurrentRole: "CEO",
			Company:     "Northwind",
			Summary:     "Serial founder.",
			Experience: []Experience{
				{Title: "CEO", Company: "Northwind"},
				{Title: "CTO", Company: "Eastgale"},
			},
			Education: []Education{
				{Degree: "MSc", School: "TalTech"},
			},
		},
		Investment: InvestmentProfile{
			IsInvestor:         true,
			InvestmentRole:     "Lead angel",
			InvestmentFocus:    []string{"B2B SaaS"},
			PortfolioCompanies: []string{"Alpha", "Beta"},
			SectorsOfInterest:  []string{"FinTech", "AI"},
			InvestmentStage:    []string{"seed"},
		},
	}
}

func TestText_Deterministic(t *testing.T) {
	rec := fullRecord()
	first := rec.Text()
	for i := 0; i < 5; i++ {
		if got := rec.Text(); got != first {
			t.Fatalf("projection not deterministic: %q vs %q", got, first)
		}
	}
}

func TestText_FieldOrderAndLabels(t *testing.T) {
	rec := fullRecord()
	want := "Name: Mari Tamm | Headline: Founder & Angel | Location: Tallinn, Estonia | " +
		"Current Role: CEO | Company: Northwind | Summary: Serial founder. | " +
		"Experience: CEO at Northwind; CTO at Eastgale | Education: MSc from TalTech | " +
		"Is an investor | Investment Role: Lead angel | Investment Focus: B2B SaaS | " +
		"Portfolio Companies: Alpha, Beta | Sectors of Interest: FinTech, AI | " +
		"Investment Stage: seed"
	if got := rec.Text(); got != want {
		t.Errorf("projection mismatch:\n got: %s\nwant: %s", got, want)
	}
}

func TestText_AbsentFieldsContributeNothing(t *testing.T) {
	rec := Record{Name: "Solo"}
	if got := rec.Text(); got != "Name: Solo" {
		t.Errorf("expected single fragment, got %q", got)
	}

	empty := Record{}
	if got := empty.Text(); got != "" {
		t.Errorf("empty record should project to empty string, got %q", got)
	}
}

func TestText_TruncationBounds(t *testing.T) {
	rec := Record{Name: "Max"}
	for i := 0; i < 8; i++ {
		rec.Personal.Experience = append(rec.Personal.Experience,
			Experience{Title: fmt.Sprintf("Role%d", i), Company: fmt.Sprintf("Co%d", i)})
	}
	for i := 0; i < 6; i++ {
		rec.Personal.Education = append(rec.Personal.Education,
			Education{Degree: fmt.Sprintf("Deg%d", i), School: fmt.Sprintf("School%d", i)})
	}
	for i := 0; i < 15; i++ {
		rec.Investment.PortfolioCompanies = append(rec.Investment.PortfolioCompanies,
			fmt.Sprintf("Portfolio%d", i))
	}

	text := rec.Text()

	if strings.Contains(text, "Role5") {
		t.Error("more than 5 experience entries projected")
	}
	if !strings.Contains(text, "Role4") {
		t.Error("fifth experience entry missing")
	}
	if strings.Contains(text, "Deg3") {
		t.Error("more than 3 education entries projected")
	}
	if !strings.Contains(text, "Deg2") {
		t.Error("third education entry missing")
	}
	if strings.Contains(text, "Portfolio10") {
		t.Error("more than 10 portfolio companies projected")
	}
	if !strings.Contains(text, "Portfolio9") {
		t.Error("tenth portfolio company missing")
	}
}

func TestText_NonInvestorHasNoMarker(t *testing.T) {
	rec := Record{Name: "Bo", Investment: InvestmentProfile{IsInvestor: false}}
	if strings.Contains(rec.Text(), "Is an investor") {
		t.Error("non-investor projected the investor marker")
	}
}

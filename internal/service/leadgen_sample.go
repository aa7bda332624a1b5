package service

import (
	"context"
	"fmt"
	"math/rand"
	"strings"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

// SampleGenerator produces plausible synthetic leads. It backs
// generation in development and demo environments where no external
// prospecting provider is configured.
type SampleGenerator struct {
	Rand *rand.Rand
}

var _ LeadGenerator = (*SampleGenerator)(nil)

var sampleCompanyStems = []string{
	"Atelier", "Groupe", "Studio", "Maison", "Cabinet", "Agence", "Societe", "Comptoir",
}

var sampleCompanySuffixes = []string{
	"Durand", "Lefevre", "Moreau", "Bernard", "Petit", "Rousseau", "Fontaine", "Garnier",
}

var sampleCities = []string{
	"Paris", "Lyon", "Marseille", "Bordeaux", "Nantes", "Lille", "Toulouse", "Rennes",
}

func (g *SampleGenerator) Generate(_ context.Context, req GenerateRequest, emit func(model.Lead) error) error {
	for i := 0; i < req.Count; i++ {
		stem := sampleCompanyStems[g.intn(len(sampleCompanyStems))]
		suffix := sampleCompanySuffixes[g.intn(len(sampleCompanySuffixes))]
		city := req.City
		if city == "" {
			city = sampleCities[g.intn(len(sampleCities))]
		}

		company := fmt.Sprintf("%s %s %d", stem, suffix, g.intn(900)+100)
		slug := strings.ToLower(strings.ReplaceAll(company, " ", "-"))

		lead := model.Lead{
			CompanyName: company,
			ContactName: suffix,
			Email:       fmt.Sprintf("contact@%s.fr", slug),
			Phone:       fmt.Sprintf("01%08d", g.intn(100000000)),
			Website:     fmt.Sprintf("https://%s.fr", slug),
			City:        city,
			Sector:      req.Sector,
			Status:      "new",
		}
		if err := emit(lead); err != nil {
			return nil
		}
	}
	return nil
}

func (g *SampleGenerator) intn(n int) int {
	if g.Rand != nil {
		return g.Rand.Intn(n)
	}
	return rand.Intn(n)
}

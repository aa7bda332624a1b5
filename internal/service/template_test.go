package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

func TestPersonalizeContentSubstitutesFields(t *testing.T) {
	lead := &model.Lead{
		CompanyName: "Boulangerie Martin",
		ContactName: "Jean Martin",
		Email:       "jean@martin.fr",
	}

	out := PersonalizeContent("Bonjour {contact_name}, une offre pour {company_name} ({email}).", lead)
	assert.Equal(t, "Bonjour Jean Martin, une offre pour Boulangerie Martin (jean@martin.fr).", out)
}

func TestPersonalizeContentDropsNameFromGreeting(t *testing.T) {
	lead := &model.Lead{CompanyName: "Garage Leroy"}

	out := PersonalizeContent("Bonjour {contact_name}, comment va {company_name} ?", lead)
	assert.Equal(t, "Bonjour, comment va Garage Leroy ?", out)
}

func TestPersonalizeContentGreetingVariants(t *testing.T) {
	lead := &model.Lead{CompanyName: "X"}

	assert.Equal(t, "Hello! Bienvenue.", PersonalizeContent("Hello {contact_name}! Bienvenue.", lead))
	assert.Equal(t, "Chère, bonjour.", PersonalizeContent("Chère {contact_name}, bonjour.", lead))

	// The greeting match is case-insensitive.
	assert.Equal(t, "bonjour, ça va ?", PersonalizeContent("bonjour {contact_name}, ça va ?", lead))
	assert.Equal(t, "SALUT!", PersonalizeContent("SALUT {contact_name}!", lead))
}

func TestPersonalizeContentDefaultsCompanyName(t *testing.T) {
	lead := &model.Lead{ContactName: "Paul"}

	out := PersonalizeContent("Une offre pour {company_name}.", lead)
	assert.Equal(t, "Une offre pour votre entreprise.", out)
}

func TestPersonalizeContentCollapsesLeftoverSpaces(t *testing.T) {
	lead := &model.Lead{CompanyName: "X"}

	out := PersonalizeContent("Salut  {contact_name}  !", lead)
	assert.NotContains(t, out, "  ")
}

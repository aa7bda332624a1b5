package dedupe

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jean@acme.fr", NormalizeEmail("  Jean@ACME.fr "))
	assert.Equal(t, "", NormalizeEmail(""))
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "0612345678", NormalizePhone("06 12 34 56 78"))
	assert.Equal(t, "0612345678", NormalizePhone("+33 6 12 34 56 78"))
	assert.Equal(t, "0612345678", NormalizePhone("0033612345678"))
	assert.Equal(t, "0612345678", NormalizePhone("06.12.34.56.78"))
	// Short numbers starting with 33 are not international.
	assert.Equal(t, "3312", NormalizePhone("33 12"))
}

func TestNormalizeSiret(t *testing.T) {
	assert.Equal(t, "12345678901234", NormalizeSiret("123 456 789 01234"))
	assert.Equal(t, "", NormalizeSiret("12345"))
	assert.Equal(t, "", NormalizeSiret(""))
}

func TestNormalizeCompanyName(t *testing.T) {
	assert.Equal(t, "cafedelouest", NormalizeCompanyName("Café de l'Ouest"))
	assert.Equal(t, "cafedelouest", NormalizeCompanyName("CAFE DE L OUEST"))
	assert.Equal(t, "boulangerie2000", NormalizeCompanyName("Boulangerie 2000 !"))
	assert.Equal(t, "", NormalizeCompanyName(""))
}

func TestNormalizePostalCode(t *testing.T) {
	assert.Equal(t, "75001", NormalizePostalCode("75001"))
	assert.Equal(t, "07500", NormalizePostalCode("7500"))
	assert.Equal(t, "75001", NormalizePostalCode("75 001 Paris"))
	assert.Equal(t, "", NormalizePostalCode("cedex"))
}

func TestNormalizeWebsite(t *testing.T) {
	assert.Equal(t, "acme.fr", NormalizeWebsite("https://www.acme.fr/contact"))
	assert.Equal(t, "acme.fr", NormalizeWebsite("acme.fr"))
	assert.Equal(t, "acme.fr", NormalizeWebsite("HTTP://ACME.FR"))
	assert.Equal(t, "", NormalizeWebsite(""))
	assert.Equal(t, "", NormalizeWebsite("://not a url"))
}

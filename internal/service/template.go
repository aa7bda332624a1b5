package service

import (
	"regexp"
	"strings"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

// greetingRe matches a greeting word followed by the contact name
// placeholder, so "Bonjour {contact_name}," degrades to "Bonjour,"
// when the lead has no contact name.
var greetingRe = regexp.MustCompile(`(?i)\b(Bonjour|Bonsoir|Cher|Chère|Hello|Hi|Salut)\s+\{contact_name\}\s*([,!]?)`)

var multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)

// PersonalizeContent substitutes lead placeholders into template content.
func PersonalizeContent(content string, lead *model.Lead) string {
	result := content

	if strings.TrimSpace(lead.ContactName) == "" {
		result = greetingRe.ReplaceAllString(result, "$1$2")
	}
	result = strings.ReplaceAll(result, "{contact_name}", lead.ContactName)

	companyName := lead.CompanyName
	if strings.TrimSpace(companyName) == "" {
		companyName = "votre entreprise"
	}
	result = strings.ReplaceAll(result, "{company_name}", companyName)
	result = strings.ReplaceAll(result, "{email}", lead.Email)

	return multiSpaceRe.ReplaceAllString(result, " ")
}

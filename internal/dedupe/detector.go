package dedupe

import (
	"fmt"
	"sort"
	"strings"

	"github.com/leadsynch/leadsynch-backend/internal/model"
)

// Match types, ordered by confidence.
const (
	MatchEmail      = "email"
	MatchSiret      = "siret"
	MatchPhone      = "phone"
	MatchWebsite    = "website"
	MatchNamePostal = "name_postal"
)

// Confidence per match type. Email and SIRET are treated as certain.
var Confidence = map[string]int{
	MatchEmail:      100,
	MatchSiret:      100,
	MatchPhone:      95,
	MatchWebsite:    90,
	MatchNamePostal: 80,
}

// AutoMergeThreshold: detections at or above this confidence are safe
// to merge without review.
const AutoMergeThreshold = 95

// Match is one candidate duplicate of a lead.
type Match struct {
	Lead       model.Lead
	MatchType  string
	Confidence int
	Details    string
}

// Pair is a detected duplicate pair. Primary is always the older lead.
type Pair struct {
	Primary    model.Lead
	Duplicate  model.Lead
	MatchType  string
	Confidence int
}

// FindMatches compares one lead against candidates and returns every
// distinct candidate that shares a matching key, strongest match first.
// The lead itself is skipped by id.
func FindMatches(lead model.Lead, candidates []model.Lead) []Match {
	var matches []Match
	seen := map[string]bool{}

	add := func(c model.Lead, matchType, details string) {
		if c.ID == lead.ID || seen[c.ID.String()] {
			return
		}
		seen[c.ID.String()] = true
		matches = append(matches, Match{
			Lead:       c,
			MatchType:  matchType,
			Confidence: Confidence[matchType],
			Details:    details,
		})
	}

	email := NormalizeEmail(lead.Email)
	siret := NormalizeSiret(lead.Siret)
	phone := NormalizePhone(firstNonEmpty(lead.Phone, lead.DirectLine))
	website := NormalizeWebsite(lead.Website)
	name := NormalizeCompanyName(lead.CompanyName)
	postal := NormalizePostalCode(lead.PostalCode)

	for _, c := range candidates {
		if email != "" && NormalizeEmail(c.Email) == email {
			add(c, MatchEmail, "identical email: "+email)
			continue
		}
		if siret != "" && NormalizeSiret(c.Siret) == siret {
			add(c, MatchSiret, "identical SIRET: "+siret)
			continue
		}
		if phone != "" && len(phone) >= 10 {
			if p := NormalizePhone(firstNonEmpty(c.Phone, c.DirectLine)); p == phone {
				add(c, MatchPhone, "identical phone: "+phone)
				continue
			}
		}
		if website != "" && NormalizeWebsite(c.Website) == website {
			add(c, MatchWebsite, "identical website: "+website)
			continue
		}
		if name != "" && len(name) >= 3 && postal != "" {
			if NormalizeCompanyName(c.CompanyName) == name && NormalizePostalCode(c.PostalCode) == postal {
				add(c, MatchNamePostal, fmt.Sprintf("same name and postal code: %s (%s)", lead.CompanyName, lead.PostalCode))
			}
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Confidence > matches[j].Confidence
	})
	return matches
}

// ScanAll cross-checks a tenant's leads and returns each duplicate pair
// once. The primary of every pair is the lead with the earliest
// created_at (ids break ties), the record kept on merge.
func ScanAll(leads []model.Lead) []Pair {
	ordered := make([]model.Lead, len(leads))
	copy(ordered, leads)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].CreatedAt.Equal(ordered[j].CreatedAt) {
			return ordered[i].ID.String() < ordered[j].ID.String()
		}
		return ordered[i].CreatedAt.Before(ordered[j].CreatedAt)
	})

	var pairs []Pair
	seen := map[string]bool{}

	for _, lead := range ordered {
		for _, m := range FindMatches(lead, ordered) {
			key := pairKey(lead.ID.String(), m.Lead.ID.String())
			if seen[key] {
				continue
			}
			seen[key] = true

			primary, duplicate := lead, m.Lead
			if Older(m.Lead, lead) {
				primary, duplicate = m.Lead, lead
			}
			pairs = append(pairs, Pair{
				Primary:    primary,
				Duplicate:  duplicate,
				MatchType:  m.MatchType,
				Confidence: m.Confidence,
			})
		}
	}
	return pairs
}

// Older reports whether a was created strictly before b, falling back
// to id ordering on identical timestamps so the choice stays stable.
func Older(a, b model.Lead) bool {
	if a.CreatedAt.Equal(b.CreatedAt) {
		return a.ID.String() < b.ID.String()
	}
	return a.CreatedAt.Before(b.CreatedAt)
}

// MergeFields returns the primary's empty merge-relevant fields that the
// duplicate can fill, as column->value.
func MergeFields(primary, duplicate model.Lead) map[string]string {
	take := map[string]string{}
	pick := func(column, kept, merged string) {
		if strings.TrimSpace(kept) == "" && strings.TrimSpace(merged) != "" {
			take[column] = merged
		}
	}
	pick("email", primary.Email, duplicate.Email)
	pick("phone", primary.Phone, duplicate.Phone)
	pick("direct_line", primary.DirectLine, duplicate.DirectLine)
	pick("siret", primary.Siret, duplicate.Siret)
	pick("website", primary.Website, duplicate.Website)
	pick("address", primary.Address, duplicate.Address)
	pick("city", primary.City, duplicate.City)
	pick("postal_code", primary.PostalCode, duplicate.PostalCode)
	pick("contact_name", primary.ContactName, duplicate.ContactName)
	pick("sector", primary.Sector, duplicate.Sector)
	return take
}

func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "-" + b
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

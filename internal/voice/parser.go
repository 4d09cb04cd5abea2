// Package voice turns a spoken-profile transcript (English, Hindi or
// Hinglish) into a profile delta.
package voice

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"scheme-eligibility/internal/models"
)

const hectaresPerAcre = 0.4047

// ParsedField is one attribute extracted from a transcript.
type ParsedField struct {
	Field      string      `json:"field"`
	Value      interface{} `json:"value"`
	Confidence float64     `json:"confidence"`
}

var (
	agePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:meri umar|my age|i am|main)\s*(\d+)\s*(?:saal|years?|hai)?`),
		regexp.MustCompile(`(?i)(\d+)\s*(?:saal|years?)\s*(?:ka|ki|ke|of age)?`),
	}
	landPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:acre|acres|एकड़|aker)`),
		regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(?:hectare|hectares|हेक्टेयर)`),
		regexp.MustCompile(`(?i)(?:mere paas|i have|meri)\s*(\d+(?:\.\d+)?)\s*(?:acre|bigha|hectare)`),
	}
	incomePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:income|kamai|aay)\s*(?:hai|is)?\s*(?:₹|rs\.?|rupees?)?\s*(\d+(?:,\d+)*(?:\.\d+)?)\s*(?:lakh|lac)?`),
		regexp.MustCompile(`(?i)(\d+(?:,\d+)*)\s*(?:rupees?|₹|rs\.?)`),
	}
	familyPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+)\s*(?:log|members?|logo|jan|family|parivaar)`),
		regexp.MustCompile(`(?i)(?:family|parivaar|ghar)\s*(?:mein|me|has)?\s*(\d+)`),
	}

	categoryPatterns = []struct {
		re    *regexp.Regexp
		value models.SocialCategory
	}{
		{regexp.MustCompile(`(?i)general|samanya|सामान्य`), models.SocialCategoryGeneral},
		{regexp.MustCompile(`(?i)obc|pichda|other backward|अन्य पिछड़ा वर्ग`), models.SocialCategoryOBC},
		{regexp.MustCompile(`(?i)\bsc\b|scheduled caste|anusuchit jati|अनुसूचित जाति`), models.SocialCategorySC},
		{regexp.MustCompile(`(?i)\bst\b|scheduled tribe|anusuchit janjati|अनुसूचित जनजाति`), models.SocialCategoryST},
	}

	bplPattern   = regexp.MustCompile(`(?i)bpl|below poverty|गरीबी रेखा|गरीब`)
	ruralPattern = regexp.MustCompile(`(?i)village|gaon|gramin|rural|ग्रामीण`)
	urbanPattern = regexp.MustCompile(`(?i)city|sheher|urban|शहरी`)
)

// Parse extracts profile attributes from a transcript. Each attribute is
// taken from the first pattern that matches; fields appear in a fixed order.
func Parse(transcript string) []ParsedField {
	text := strings.TrimSpace(transcript)
	lower := strings.ToLower(text)
	var out []ParsedField

	if m := firstMatch(agePatterns, text); m != "" {
		if age, err := strconv.Atoi(m); err == nil {
			out = append(out, ParsedField{Field: "age", Value: age, Confidence: 0.95})
		}
	}

	if m := firstMatch(landPatterns, text); m != "" {
		if value, err := strconv.ParseFloat(m, 64); err == nil {
			if strings.Contains(lower, "acre") || strings.Contains(lower, "एकड़") {
				value *= hectaresPerAcre
			}
			out = append(out,
				ParsedField{Field: "landHolding", Value: math.Round(value*100) / 100, Confidence: 0.9},
				ParsedField{Field: "hasLand", Value: true, Confidence: 0.9},
			)
		}
	}

	if m := firstMatch(incomePatterns, text); m != "" {
		if value, err := strconv.ParseFloat(strings.ReplaceAll(m, ",", ""), 64); err == nil {
			if strings.Contains(lower, "lakh") || strings.Contains(lower, "lac") {
				value *= 100000
			}
			out = append(out, ParsedField{Field: "annualIncome", Value: math.Round(value), Confidence: 0.88})
		}
	}

	if m := firstMatch(familyPatterns, text); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			out = append(out, ParsedField{Field: "familyMembers", Value: n, Confidence: 0.92})
		}
	}

	for _, p := range categoryPatterns {
		if p.re.MatchString(text) {
			out = append(out, ParsedField{Field: "category", Value: string(p.value), Confidence: 0.95})
			break
		}
	}

	if bplPattern.MatchString(text) {
		out = append(out, ParsedField{Field: "hasBPLCard", Value: true, Confidence: 0.94})
	}

	switch {
	case ruralPattern.MatchString(text):
		out = append(out, ParsedField{Field: "isRural", Value: true, Confidence: 0.93})
	case urbanPattern.MatchString(text):
		out = append(out, ParsedField{Field: "isRural", Value: false, Confidence: 0.93})
	}

	return out
}

func firstMatch(patterns []*regexp.Regexp, text string) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return m[1]
		}
	}
	return ""
}

// ToDelta converts parsed fields into a profile delta for merging.
func ToDelta(fields []ParsedField) models.UserProfile {
	var delta models.UserProfile
	for _, f := range fields {
		switch v := f.Value.(type) {
		case int:
			switch f.Field {
			case "age":
				delta.Age = models.Ptr(v)
			case "familyMembers":
				delta.FamilyMembers = models.Ptr(v)
			}
		case float64:
			switch f.Field {
			case "landHolding":
				delta.LandHolding = models.Ptr(v)
			case "annualIncome":
				delta.AnnualIncome = models.Ptr(v)
			}
		case bool:
			switch f.Field {
			case "hasLand":
				delta.HasLand = models.Ptr(v)
			case "hasBPLCard":
				delta.HasBPLCard = models.Ptr(v)
			case "isRural":
				delta.IsRural = models.Ptr(v)
			}
		case string:
			if f.Field == "category" {
				delta.Category = models.Ptr(models.SocialCategory(v))
			}
		}
	}
	return delta
}

package explanation

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"scheme-eligibility/internal/eligibility"
)

const notProvided = "Not provided"

const SystemPrompt = `You are an official government scheme eligibility advisor for India.
Your role is to provide clear, authoritative explanations about eligibility for government welfare schemes.
Always maintain a professional, helpful tone while being accurate about eligibility criteria.
Use simple language that a first-time applicant can follow.
Cite specific eligibility rules when explaining decisions.
If the applicant is not fully eligible, be empathetic and suggest what they might do or alternative options.
Keep responses under 300 words but comprehensive.`

// BuildUserPrompt renders the assessment request for the model.
func BuildUserPrompt(req Request) string {
	isEligible, _, passed := eligibility.Score(req.RuleResults)
	p := req.Profile

	var b strings.Builder
	b.WriteString("Please provide an official eligibility assessment explanation for the following:\n\n")

	fmt.Fprintf(&b, "**Scheme:** %s\n", req.Scheme.Name)
	fmt.Fprintf(&b, "**Ministry:** %s\n", req.Scheme.Ministry)
	fmt.Fprintf(&b, "**Description:** %s\n\n", req.Scheme.Description)

	b.WriteString("**Key Benefits:**\n")
	for _, benefit := range req.Scheme.Benefits {
		fmt.Fprintf(&b, "- %s\n", benefit)
	}

	b.WriteString("\n**Applicant Profile:**\n")
	profileLines := []struct{ label, value string }{
		{"Name", str(p.Name)},
		{"Age", num(p.Age)},
		{"Gender", enum(p.Gender)},
		{"Annual Income", income(p.AnnualIncome)},
		{"State", str(p.State)},
		{"Category", upper(enum(p.Category))},
		{"Occupation", str(p.Occupation)},
		{"Education", enum(p.Education)},
		{"Has Land", yesNo(p.HasLand)},
		{"Land Holding", hectares(p.LandHolding)},
		{"BPL Card", yesNo(p.HasBPLCard)},
		{"Rural Area", yesNo(p.IsRural)},
		{"Family Members", num(p.FamilyMembers)},
		{"Disability", yesNo(p.HasDisability)},
		{"Widow", yesNo(p.IsWidow)},
		{"Senior Citizen", yesNo(p.IsSeniorCitizen)},
	}
	for _, line := range profileLines {
		fmt.Fprintf(&b, "- %s: %s\n", line.label, line.value)
	}

	fmt.Fprintf(&b, "\n**Eligibility Criteria Results (%d/%d passed):**\n", passed, len(req.RuleResults))
	for _, r := range req.RuleResults {
		mark := "✗"
		if r.Passed {
			mark = "✓"
		}
		fmt.Fprintf(&b, "- %s %s\n", mark, r.Reason)
	}

	status := "NOT FULLY ELIGIBLE"
	third := "What the applicant could do to become eligible or alternative schemes they might consider"
	if isEligible {
		status = "ELIGIBLE"
		third = "Next steps to apply for this scheme"
	}
	fmt.Fprintf(&b, "\n**Overall Eligibility Status:** %s\n\n", status)

	b.WriteString("Please provide:\n")
	b.WriteString("1. A clear explanation of the eligibility decision\n")
	b.WriteString("2. Specific reasons for each criteria result\n")
	fmt.Fprintf(&b, "3. %s\n", third)
	b.WriteString("4. Any important notes or disclaimers")

	return b.String()
}

func str(v *string) string {
	if v == nil || *v == "" {
		return notProvided
	}
	return *v
}

func enum[T ~string](v *T) string {
	if v == nil || *v == "" {
		return notProvided
	}
	return string(*v)
}

func upper(v string) string {
	if v == notProvided {
		return v
	}
	return strings.ToUpper(v)
}

func num(v *int) string {
	if v == nil {
		return notProvided
	}
	return strconv.Itoa(*v)
}

func yesNo(v *bool) string {
	switch {
	case v == nil:
		return notProvided
	case *v:
		return "Yes"
	default:
		return "No"
	}
}

func hectares(v *float64) string {
	if v == nil {
		return notProvided
	}
	return strconv.FormatFloat(*v, 'f', -1, 64) + " hectares"
}

func income(v *float64) string {
	if v == nil {
		return notProvided
	}
	return "₹" + FormatINR(*v)
}

// FormatINR groups the integer part of amount the Indian way: the last three
// digits, then pairs (12,34,567).
func FormatINR(amount float64) string {
	neg := amount < 0
	digits := strconv.FormatInt(int64(math.Round(math.Abs(amount))), 10)

	var groups []string
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		groups = append([]string{head}, groups...)
		groups = append(groups, tail)
	} else {
		groups = []string{digits}
	}

	out := strings.Join(groups, ",")
	if neg {
		out = "-" + out
	}
	return out
}


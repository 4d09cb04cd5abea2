package models

// Category groups schemes for browsing.
type Category string

const (
	CategoryEducation   Category = "education"
	CategoryHealthcare  Category = "healthcare"
	CategoryAgriculture Category = "agriculture"
	CategoryHousing     Category = "housing"
	CategoryEmployment  Category = "employment"
	CategoryWomenChild  Category = "women_child"
	CategoryPension     Category = "pension"
	CategoryFinancial   Category = "financial"
)

// CategoryLabels holds the display label and icon of every category, in
// display order.
var CategoryLabels = []CategoryLabel{
	{ID: CategoryEducation, Label: "Education", Icon: "GraduationCap"},
	{ID: CategoryHealthcare, Label: "Healthcare", Icon: "HeartPulse"},
	{ID: CategoryAgriculture, Label: "Agriculture", Icon: "Wheat"},
	{ID: CategoryHousing, Label: "Housing", Icon: "Home"},
	{ID: CategoryEmployment, Label: "Employment", Icon: "Briefcase"},
	{ID: CategoryWomenChild, Label: "Women & Child", Icon: "Users"},
	{ID: CategoryPension, Label: "Pension", Icon: "Wallet"},
	{ID: CategoryFinancial, Label: "Financial Aid", Icon: "IndianRupee"},
}

type CategoryLabel struct {
	ID    Category `json:"id"`
	Label string   `json:"label"`
	Icon  string   `json:"icon"`
}

func (c Category) IsValid() bool {
	for _, l := range CategoryLabels {
		if l.ID == c {
			return true
		}
	}
	return false
}

// Scheme is immutable reference data loaded once from the catalog.
type Scheme struct {
	ID                string                 `json:"id"`
	Name              string                 `json:"name"`
	NameHindi         string                 `json:"nameHindi,omitempty"`
	Category          Category               `json:"category"`
	Description       string                 `json:"description"`
	Ministry          string                 `json:"ministry"`
	Benefits          []string               `json:"benefits"`
	Eligibility       []EligibilityCriterion `json:"eligibility"`
	RequiredDocuments []string               `json:"requiredDocuments"`
	IconName          string                 `json:"iconName,omitempty"`
}

// SchemeSummary is the subset of a scheme sent to the explanation service.
type SchemeSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Ministry    string   `json:"ministry"`
	Benefits    []string `json:"benefits"`
}

func (s *Scheme) Summary() SchemeSummary {
	return SchemeSummary{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Ministry:    s.Ministry,
		Benefits:    s.Benefits,
	}
}

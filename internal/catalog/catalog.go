package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"scheme-eligibility/internal/common/errors"
	"scheme-eligibility/internal/common/validation"
	"scheme-eligibility/internal/eligibility"
	"scheme-eligibility/internal/models"
)

//go:embed schemes.yaml
var embeddedSchemes []byte

// CategoryAll disables the category filter in Search.
const CategoryAll = "all"

const catalogSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["schemes"],
  "properties": {
    "version": {"type": "integer"},
    "schemes": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["id", "name", "category", "description", "ministry", "eligibility"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "name": {"type": "string", "minLength": 1},
          "nameHindi": {"type": "string"},
          "category": {
            "type": "string",
            "enum": ["education", "healthcare", "agriculture", "housing", "employment", "women_child", "pension", "financial"]
          },
          "description": {"type": "string"},
          "ministry": {"type": "string"},
          "benefits": {"type": "array", "items": {"type": "string"}},
          "requiredDocuments": {"type": "array", "items": {"type": "string"}},
          "iconName": {"type": "string"},
          "eligibility": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "field", "operator", "value", "description"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "field": {"type": "string", "minLength": 1},
                "operator": {"type": "string", "enum": ["equals", "lessThan", "greaterThan", "includes", "between"]},
                "description": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

var schema = validation.MustCompile("scheme-catalog", catalogSchema)

type rawCatalog struct {
	Version int         `yaml:"version"`
	Schemes []rawScheme `yaml:"schemes"`
}

type rawScheme struct {
	ID                string         `yaml:"id"`
	Name              string         `yaml:"name"`
	NameHindi         string         `yaml:"nameHindi"`
	Category          string         `yaml:"category"`
	Description       string         `yaml:"description"`
	Ministry          string         `yaml:"ministry"`
	Benefits          []string       `yaml:"benefits"`
	Eligibility       []rawCriterion `yaml:"eligibility"`
	RequiredDocuments []string       `yaml:"requiredDocuments"`
	IconName          string         `yaml:"iconName"`
}

type rawCriterion struct {
	ID          string      `yaml:"id"`
	Field       string      `yaml:"field"`
	Operator    string      `yaml:"operator"`
	Value       interface{} `yaml:"value"`
	Description string      `yaml:"description"`
}

// Catalog is the read-only set of schemes offered by the wizard. It is safe
// for concurrent use once built.
type Catalog struct {
	schemes []*models.Scheme
	byID    map[string]*models.Scheme
}

// Default returns the catalog compiled into the binary.
func Default() (*Catalog, error) {
	return Parse(embeddedSchemes)
}

// Load reads a catalog file, falling back to the embedded catalog when path
// is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(fmt.Sprintf("read %s: %v", path, err))
	}
	return Parse(data)
}

// Parse validates and builds a catalog from YAML (or JSON) bytes.
func Parse(data []byte) (*Catalog, error) {
	var document interface{}
	if err := yaml.Unmarshal(data, &document); err != nil {
		return nil, errors.NewCatalogInvalidError(fmt.Sprintf("decode: %v", err))
	}

	result, err := schema.Validate(document)
	if err != nil {
		return nil, errors.NewCatalogInvalidError(err.Error())
	}
	if !result.Valid {
		return nil, errors.NewCatalogInvalidError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var raw rawCatalog
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.NewCatalogInvalidError(fmt.Sprintf("decode: %v", err))
	}

	c := &Catalog{
		schemes: make([]*models.Scheme, 0, len(raw.Schemes)),
		byID:    make(map[string]*models.Scheme, len(raw.Schemes)),
	}
	for _, rs := range raw.Schemes {
		if _, dup := c.byID[rs.ID]; dup {
			return nil, errors.NewCatalogInvalidError(fmt.Sprintf("duplicate scheme id %q", rs.ID))
		}
		scheme, err := buildScheme(rs)
		if err != nil {
			return nil, err
		}
		c.schemes = append(c.schemes, scheme)
		c.byID[scheme.ID] = scheme
	}
	return c, nil
}

func buildScheme(rs rawScheme) (*models.Scheme, error) {
	category := models.Category(rs.Category)
	if !category.IsValid() {
		return nil, errors.NewCatalogInvalidError(fmt.Sprintf("scheme %s: unknown category %q", rs.ID, rs.Category))
	}

	criteria := make([]models.EligibilityCriterion, 0, len(rs.Eligibility))
	seen := make(map[string]struct{}, len(rs.Eligibility))
	for _, rc := range rs.Eligibility {
		if _, dup := seen[rc.ID]; dup {
			return nil, errors.NewCatalogInvalidError(fmt.Sprintf("scheme %s: duplicate criterion id %q", rs.ID, rc.ID))
		}
		seen[rc.ID] = struct{}{}

		op := models.Operator(rc.Operator)
		value, err := models.ParseCriterionValue(op, rc.Value)
		if err != nil {
			return nil, errors.NewCatalogInvalidError(fmt.Sprintf("scheme %s criterion %s: %v", rs.ID, rc.ID, err))
		}
		criterion := models.EligibilityCriterion{
			ID:          rc.ID,
			Field:       rc.Field,
			Operator:    op,
			Value:       value,
			Description: rc.Description,
		}
		if err := eligibility.ValidateCriterion(criterion); err != nil {
			return nil, errors.NewCatalogInvalidError(fmt.Sprintf("scheme %s criterion %s: %v", rs.ID, rc.ID, err))
		}
		criteria = append(criteria, criterion)
	}

	return &models.Scheme{
		ID:                rs.ID,
		Name:              rs.Name,
		NameHindi:         rs.NameHindi,
		Category:          category,
		Description:       rs.Description,
		Ministry:          rs.Ministry,
		Benefits:          rs.Benefits,
		Eligibility:       criteria,
		RequiredDocuments: rs.RequiredDocuments,
		IconName:          rs.IconName,
	}, nil
}

// List returns every scheme in catalog order.
func (c *Catalog) List() []*models.Scheme {
	out := make([]*models.Scheme, len(c.schemes))
	copy(out, c.schemes)
	return out
}

func (c *Catalog) Get(id string) (*models.Scheme, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// MustGet is Get returning SCHEME_NOT_FOUND for unknown ids.
func (c *Catalog) MustGet(id string) (*models.Scheme, error) {
	s, ok := c.byID[id]
	if !ok {
		return nil, errors.NewSchemeNotFoundError(id)
	}
	return s, nil
}

func (c *Catalog) Categories() []models.CategoryLabel {
	out := make([]models.CategoryLabel, len(models.CategoryLabels))
	copy(out, models.CategoryLabels)
	return out
}

// IDs returns the scheme ids in catalog order.
func (c *Catalog) IDs() []string {
	ids := make([]string, len(c.schemes))
	for i, s := range c.schemes {
		ids[i] = s.ID
	}
	return ids
}

// Search filters by category and by a case-insensitive match on the name or
// description. The localized name is matched as given.
func (c *Catalog) Search(query, category string) []*models.Scheme {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]*models.Scheme, 0, len(c.schemes))
	for _, s := range c.schemes {
		if category != "" && category != CategoryAll && string(s.Category) != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(s.Name), q) &&
			!strings.Contains(strings.ToLower(s.Description), q) &&
			!strings.Contains(s.NameHindi, strings.TrimSpace(query)) {
			continue
		}
		out = append(out, s)
	}
	return out
}

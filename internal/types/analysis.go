package types

// Category classifies a notice into a fixed closed set.
type Category string

// Category constants define the closed classification set. Anything the
// extraction tier returns outside this set is coerced to CategoryGeneral.
const (
	CategoryAcademic    Category = "Academic"
	CategoryScholarship Category = "Scholarship"
	CategoryEvent       Category = "Event"
	CategoryExam        Category = "Exam"
	CategoryAdmission   Category = "Admission"
	CategoryRecruitment Category = "Recruitment"
	CategoryHoliday     Category = "Holiday"
	CategoryGeneral     Category = "General"
)

// AllCategories lists every valid category, useful for prompts and schemas.
func AllCategories() []Category {
	return []Category{
		CategoryAcademic,
		CategoryScholarship,
		CategoryEvent,
		CategoryExam,
		CategoryAdmission,
		CategoryRecruitment,
		CategoryHoliday,
		CategoryGeneral,
	}
}

// Valid reports whether c is a member of the closed category set.
func (c Category) Valid() bool {
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// ParseCategory coerces a free string to the closed enum, defaulting to
// CategoryGeneral on anything unrecognized.
func ParseCategory(s string) Category {
	c := Category(s)
	if c.Valid() {
		return c
	}
	return CategoryGeneral
}

// DefaultAudience is the audience assigned when none can be determined.
const DefaultAudience = "All Students"

// NormalizeAudience guarantees a non-empty audience list, dropping blank
// entries and defaulting to DefaultAudience.
func NormalizeAudience(audience []string) []string {
	cleaned := make([]string, 0, len(audience))
	for _, a := range audience {
		if a != "" {
			cleaned = append(cleaned, a)
		}
	}
	if len(cleaned) == 0 {
		return []string{DefaultAudience}
	}
	return cleaned
}

// Analysis is the structured interpretation of a notice's content.
type Analysis struct {
	IsImportant    bool               `json:"is_important"`
	Category       Category           `json:"category" validate:"required"`
	TargetAudience []string           `json:"target_audience" validate:"required,min=1,dive,min=1"`
	Summary        string             `json:"summary"`
	Entities       map[string]*string `json:"entities"`
	Keywords       []string           `json:"keywords"`
}

// Normalize enforces the analysis invariants in place: category within the
// closed set and a non-empty audience.
func (a *Analysis) Normalize() {
	a.Category = ParseCategory(string(a.Category))
	a.TargetAudience = NormalizeAudience(a.TargetAudience)
	if a.Entities == nil {
		a.Entities = map[string]*string{}
	}
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
}

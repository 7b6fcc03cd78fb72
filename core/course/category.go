package course

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/pkg/errors"
)

// Category classifies a course for credit accounting. Values are the stored integer codes.
type Category int

const (
	General Category = iota + 1
	Reading
	PublicOptional
	PublicBasic
	MathsPhysicsBasic
	ProfessionalBasic
	ProfessionalCore
	ProfessionalOptional
)

var (
	errUnknownCategory = errors.New("unknown course category")

	// Categories lists every known category in code order.
	Categories = []Category{
		General, Reading, PublicOptional, PublicBasic,
		MathsPhysicsBasic, ProfessionalBasic, ProfessionalCore, ProfessionalOptional,
	}

	categoryLabels = map[Category]string{
		General:              "通识",
		Reading:              "经典阅读",
		PublicOptional:       "公选",
		PublicBasic:          "通修",
		MathsPhysicsBasic:    "数理通修",
		ProfessionalBasic:    "专业平台",
		ProfessionalCore:     "专业核心",
		ProfessionalOptional: "专业选修",
	}

	categorySlugs = map[Category]string{
		General:              "general",
		Reading:              "reading",
		PublicOptional:       "public_optional",
		PublicBasic:          "public_basic",
		MathsPhysicsBasic:    "maths_physics_basic",
		ProfessionalBasic:    "professional_basic",
		ProfessionalCore:     "professional_core",
		ProfessionalOptional: "professional_optional",
	}

	// transcript type labels, matched exactly
	guessTable = map[string]Category{
		"通识": General,
		"通修": PublicBasic,
		"平台": ProfessionalBasic,
		"核心": ProfessionalCore,
		"选修": General,
	}
)

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	_, ok := categorySlugs[c]
	return ok
}

// Label is the display name of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return "未知"
}

func (c Category) String() string {
	if s, ok := categorySlugs[c]; ok {
		return s
	}
	return "unknown(" + strconv.Itoa(int(c)) + ")"
}

func (c Category) MarshalText() ([]byte, error) {
	if s, ok := categorySlugs[c]; ok {
		return []byte(s), nil
	}
	return []byte("unknown"), nil
}

// UnmarshalText accepts a slug, a display label or an integer code.
func (c *Category) UnmarshalText(text []byte) error {
	cat, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = cat
	return nil
}

// UnmarshalJSON accepts the integer code as a JSON number, or any text form as a JSON string.
func (c *Category) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return c.UnmarshalText([]byte(s))
	}
	var code int
	if err := json.Unmarshal(data, &code); err != nil {
		return errors.Wrapf(errUnknownCategory, "%s", data)
	}
	return c.UnmarshalText([]byte(strconv.Itoa(code)))
}

// Value implements driver.Valuer.
func (c Category) Value() (driver.Value, error) {
	return int64(c), nil
}

// Scan implements sql.Scanner.
func (c *Category) Scan(src interface{}) error {
	switch v := src.(type) {
	case int64:
		*c = Category(v)
	case int32:
		*c = Category(v)
	case int:
		*c = Category(v)
	case []byte:
		n, err := strconv.Atoi(string(v))
		if err != nil {
			return errors.Wrap(err, "scanning category")
		}
		*c = Category(n)
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrap(err, "scanning category")
		}
		*c = Category(n)
	default:
		return fmt.Errorf("cannot scan %T into course.Category", src)
	}
	return nil
}

// ParseCategory resolves a slug, a display label or an integer code to a known Category.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if s == categorySlugs[c] || s == categoryLabels[c] {
			return c, nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && Category(n).IsValid() {
		return Category(n), nil
	}
	return 0, errors.Wrapf(errUnknownCategory, "%q", s)
}

// GuessCategory maps a transcript course-type label to a Category.
// ok is false when the label is not recognised; picking a fallback is up to the caller.
func GuessCategory(label string) (cat Category, ok bool) {
	cat, ok = guessTable[label]
	return cat, ok
}

// CategoryInfo describes a category for clients.
type CategoryInfo struct {
	Value Category `json:"value"`
	Code  int      `json:"code"`
	Label string   `json:"label"`
}

// CategoryInfos describes every known category.
func CategoryInfos() []CategoryInfo {
	infos := make([]CategoryInfo, 0, len(Categories))
	for _, c := range Categories {
		infos = append(infos, CategoryInfo{Value: c, Code: int(c), Label: c.Label()})
	}
	return infos
}

// CategorySet is a lookup table of categories.
type CategorySet map[Category]struct{}

func NewCategorySet(cats ...Category) CategorySet {
	set := make(CategorySet, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return set
}

func (s CategorySet) Contains(c Category) bool {
	_, ok := s[c]
	return ok
}

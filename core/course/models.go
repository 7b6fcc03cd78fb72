package course

import (
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/QinlinChen/StuHub/core"
)

const (
	MinTerm   = 1
	MaxTerm   = 8
	MaxCredit = 150
	MaxScore  = 100

	MaxNameLength = 128
)

// Course is a course taken by a user. The statistics only read Credit, Score and Category.
type Course struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"-" db:"user_id"`
	Name      string    `json:"name" db:"name"`
	Term      int       `json:"term" db:"term"`
	Category  Category  `json:"category" db:"category"`
	Credit    int       `json:"credit" db:"credit"`
	Score     float64   `json:"score" db:"score"`
	CreatedAt time.Time `json:"created_at" db:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"` // UTC
}

// NewCourse contains information needed to create a new Course.
type NewCourse struct {
	Name     string   `json:"name" validate:"required,max=128"`
	Term     int      `json:"term" validate:"min=1,max=8"`
	Category Category `json:"category" validate:"category"`
	Credit   int      `json:"credit" validate:"min=0,max=150"`
	Score    float64  `json:"score" validate:"min=0,max=100"`
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// problems lists the bounds nc breaks, in the same terms as its validate tags.
// Used where courses are built without going through a validator (transcript import).
func (nc NewCourse) problems() []string {
	var msgs []string
	if nc.Name == "" {
		msgs = append(msgs, "name is required")
	} else if utf8.RuneCountInString(nc.Name) > MaxNameLength {
		msgs = append(msgs, "name must be at most "+strconv.Itoa(MaxNameLength)+" characters")
	}
	if nc.Term < MinTerm || nc.Term > MaxTerm {
		msgs = append(msgs, "term must be between 1 and 8")
	}
	if !nc.Category.IsValid() {
		msgs = append(msgs, "category must be a known course category")
	}
	if nc.Credit < 0 || nc.Credit > MaxCredit {
		msgs = append(msgs, "credit must be between 0 and "+strconv.Itoa(MaxCredit))
	}
	if math.IsNaN(nc.Score) || nc.Score < 0 || nc.Score > MaxScore {
		msgs = append(msgs, "score must be between 0 and "+strconv.Itoa(MaxScore))
	}
	return msgs
}

// UpdateCourse defines what information may be provided to modify an existing Course.
type UpdateCourse struct {
	Name     *string   `json:"name" validate:"omitempty,min=1,max=128"`
	Term     *int      `json:"term" validate:"omitempty,min=1,max=8"`
	Category *Category `json:"category" validate:"omitempty,category"`
	Credit   *int      `json:"credit" validate:"omitempty,min=0,max=150"`
	Score    *float64  `json:"score" validate:"omitempty,min=0,max=100"`
}

func (uc *UpdateCourse) Validate(validate *validator.Validate) error {
	if uc.Name != nil {
		name := core.CleanString(*uc.Name)
		uc.Name = &name
	}
	return validate.Struct(uc)
}

// apply returns a copy of crs with the provided fields set.
func (uc UpdateCourse) apply(crs Course) Course {
	if uc.Name != nil {
		crs.Name = *uc.Name
	}
	if uc.Term != nil {
		crs.Term = *uc.Term
	}
	if uc.Category != nil {
		crs.Category = *uc.Category
	}
	if uc.Credit != nil {
		crs.Credit = *uc.Credit
	}
	if uc.Score != nil {
		crs.Score = *uc.Score
	}
	return crs
}

// TermRange restricts courses to the terms From..To (inclusive). Zero values are open bounds.
type TermRange struct {
	From int `json:"term_from" query:"term_from" validate:"omitempty,min=1,max=8"`
	To   int `json:"term_to" query:"term_to" validate:"omitempty,min=1,max=8"`
}

func (tr TermRange) Validate(validate *validator.Validate) error {
	return validate.Struct(tr)
}

// Contains reports whether term falls within the range.
func (tr TermRange) Contains(term int) bool {
	if tr.From > 0 && term < tr.From {
		return false
	}
	if tr.To > 0 && term > tr.To {
		return false
	}
	return true
}

func (tr TermRange) IsEmpty() bool { return tr.From == 0 && tr.To == 0 }

// QueryFilter selects the courses of one user.
type QueryFilter struct {
	UserID string
	Terms  TermRange
}

// Page is one page of courses, ordered by term (latest first).
type Page struct {
	Courses []Course `json:"courses"`
	Page    int      `json:"page"`
	PerPage int      `json:"per_page"`
	Pages   int      `json:"pages"`
	Total   int      `json:"total"`
}

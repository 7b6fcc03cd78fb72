package course

// The functions below never mutate their input and are safe to call concurrently on a shared slice.
// An empty slice is valid everywhere; every average of an empty (or zero-credit) set is 0.

// AverageWeightedScoreOnCredit is Σ(score·credit) / Σcredit, or 0 when the total credit is 0.
func AverageWeightedScoreOnCredit(courses []Course) float64 {
	var weighted float64
	var credits int
	for _, c := range courses {
		weighted += c.Score * float64(c.Credit)
		credits += c.Credit
	}
	if credits == 0 {
		return 0
	}
	return weighted / float64(credits)
}

func filter(courses []Course, set CategorySet) []Course {
	subset := make([]Course, 0, len(courses))
	for _, c := range courses {
		if set.Contains(c.Category) {
			subset = append(subset, c)
		}
	}
	return subset
}

func (p Policy) gpa(courses []Course) float64 {
	if p.GPADivisor == 0 {
		return 0
	}
	return AverageWeightedScoreOnCredit(courses) / p.GPADivisor
}

// ComprehensiveGPA is computed over all courses.
func (p Policy) ComprehensiveGPA(courses []Course) float64 {
	return p.gpa(courses)
}

// AcademicGPA is computed over the courses in the academic set.
func (p Policy) AcademicGPA(courses []Course) float64 {
	return p.gpa(filter(courses, p.AcademicSet))
}

// PostgraduateRecommendationGPA is computed over the courses in the postgraduate recommendation set.
func (p Policy) PostgraduateRecommendationGPA(courses []Course) float64 {
	return p.gpa(filter(courses, p.PostgradRecommendationSet))
}

func (p Policy) HasFulfilledReadingRequirement(courses []Course) bool {
	return ReadingCount(courses) >= p.ReadingRequirement
}

// ReadingBonusCredit is the full bonus once the requirement is met, nothing otherwise.
func (p Policy) ReadingBonusCredit(courses []Course) int {
	if p.HasFulfilledReadingRequirement(courses) {
		return p.ReadingBonus
	}
	return 0
}

// TotalCredit is the sum of all credits plus the reading bonus.
func (p Policy) TotalCredit(courses []Course) int {
	var total int
	for _, c := range courses {
		total += c.Credit
	}
	return total + p.ReadingBonusCredit(courses)
}

// GeneralCourseCredit is the sum of General credits plus the reading bonus.
// The bonus is also part of TotalCredit: both totals count it.
func (p Policy) GeneralCourseCredit(courses []Course) int {
	var total int
	for _, c := range courses {
		if c.Category == General {
			total += c.Credit
		}
	}
	return total + p.ReadingBonusCredit(courses)
}

// ReadingCount is the number of Reading courses, whatever their credit.
func ReadingCount(courses []Course) int {
	var n int
	for _, c := range courses {
		if c.Category == Reading {
			n++
		}
	}
	return n
}

func ComprehensiveGPA(courses []Course) float64 { return DefaultPolicy.ComprehensiveGPA(courses) }
func AcademicGPA(courses []Course) float64      { return DefaultPolicy.AcademicGPA(courses) }

func PostgraduateRecommendationGPA(courses []Course) float64 {
	return DefaultPolicy.PostgraduateRecommendationGPA(courses)
}

func HasFulfilledReadingRequirement(courses []Course) bool {
	return DefaultPolicy.HasFulfilledReadingRequirement(courses)
}

func ReadingBonusCredit(courses []Course) int  { return DefaultPolicy.ReadingBonusCredit(courses) }
func TotalCredit(courses []Course) int         { return DefaultPolicy.TotalCredit(courses) }
func GeneralCourseCredit(courses []Course) int { return DefaultPolicy.GeneralCourseCredit(courses) }

// Statistics is the full set of figures derived from a collection of courses. Values are not rounded.
type Statistics struct {
	CourseCount                   int     `json:"course_count" yaml:"course_count"`
	AverageWeightedScore          float64 `json:"average_weighted_score" yaml:"average_weighted_score"`
	ComprehensiveGPA              float64 `json:"comprehensive_gpa" yaml:"comprehensive_gpa"`
	AcademicGPA                   float64 `json:"academic_gpa" yaml:"academic_gpa"`
	PostgraduateRecommendationGPA float64 `json:"postgraduate_recommendation_gpa" yaml:"postgraduate_recommendation_gpa"`
	TotalCredit                   int     `json:"total_credit" yaml:"total_credit"`
	GeneralCourseCredit           int     `json:"general_course_credit" yaml:"general_course_credit"`
	ReadingCount                  int     `json:"reading_count" yaml:"reading_count"`
	ReadingRequirementFulfilled   bool    `json:"reading_requirement_fulfilled" yaml:"reading_requirement_fulfilled"`
	ReadingBonusCredit            int     `json:"reading_bonus_credit" yaml:"reading_bonus_credit"`
}

func (p Policy) Compute(courses []Course) Statistics {
	return Statistics{
		CourseCount:                   len(courses),
		AverageWeightedScore:          AverageWeightedScoreOnCredit(courses),
		ComprehensiveGPA:              p.ComprehensiveGPA(courses),
		AcademicGPA:                   p.AcademicGPA(courses),
		PostgraduateRecommendationGPA: p.PostgraduateRecommendationGPA(courses),
		TotalCredit:                   p.TotalCredit(courses),
		GeneralCourseCredit:           p.GeneralCourseCredit(courses),
		ReadingCount:                  ReadingCount(courses),
		ReadingRequirementFulfilled:   p.HasFulfilledReadingRequirement(courses),
		ReadingBonusCredit:            p.ReadingBonusCredit(courses),
	}
}

// Compute uses DefaultPolicy.
func Compute(courses []Course) Statistics { return DefaultPolicy.Compute(courses) }

package course

import (
	"github.com/pkg/errors"

	"github.com/QinlinChen/StuHub/core"
)

// Policy holds the institutional rules the statistics are computed with.
type Policy struct {
	// AcademicSet is the subset used by the academic GPA.
	AcademicSet CategorySet
	// PostgradRecommendationSet is the subset used by the postgraduate recommendation GPA.
	PostgradRecommendationSet CategorySet
	// ReadingRequirement is the number of Reading courses needed to earn ReadingBonus.
	ReadingRequirement int
	ReadingBonus       int
	// GPADivisor converts a 0..100 weighted average into a GPA.
	GPADivisor float64
}

var (
	AcademicSet               = NewCategorySet(MathsPhysicsBasic, ProfessionalBasic, ProfessionalCore, ProfessionalOptional)
	PostgradRecommendationSet = NewCategorySet(MathsPhysicsBasic, ProfessionalBasic, ProfessionalCore)

	DefaultPolicy = Policy{
		AcademicSet:               AcademicSet,
		PostgradRecommendationSet: PostgradRecommendationSet,
		ReadingRequirement:        6,
		ReadingBonus:              2,
		GPADivisor:                20,
	}
)

// PolicyFromConfig applies the configured overrides on top of DefaultPolicy.
func PolicyFromConfig(pc core.PolicyConfig) (Policy, error) {
	p := DefaultPolicy

	parseSet := func(names []string) (CategorySet, error) {
		cats := make([]Category, 0, len(names))
		for _, n := range names {
			c, err := ParseCategory(n)
			if err != nil {
				return nil, err
			}
			cats = append(cats, c)
		}
		return NewCategorySet(cats...), nil
	}

	if len(pc.AcademicCategories) > 0 {
		set, err := parseSet(pc.AcademicCategories)
		if err != nil {
			return Policy{}, errors.Wrap(err, "parsing academic categories")
		}
		p.AcademicSet = set
	}
	if len(pc.PostgradCategories) > 0 {
		set, err := parseSet(pc.PostgradCategories)
		if err != nil {
			return Policy{}, errors.Wrap(err, "parsing postgraduate recommendation categories")
		}
		p.PostgradRecommendationSet = set
	}
	if pc.ReadingRequirement != nil {
		if *pc.ReadingRequirement < 0 {
			return Policy{}, errors.New("reading requirement cannot be negative")
		}
		p.ReadingRequirement = *pc.ReadingRequirement
	}
	if pc.ReadingBonus != nil {
		if *pc.ReadingBonus < 0 {
			return Policy{}, errors.New("reading bonus cannot be negative")
		}
		p.ReadingBonus = *pc.ReadingBonus
	}
	if pc.GPADivisor != nil {
		if *pc.GPADivisor <= 0 {
			return Policy{}, errors.New("GPA divisor must be positive")
		}
		p.GPADivisor = *pc.GPADivisor
	}
	return p, nil
}

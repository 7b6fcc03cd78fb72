package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/QinlinChen/StuHub/core"
)

var (
	categoryTag  = "category"
	categoryText = "{0} must be a known course category"

	termRangeTag  = "termrange"
	termRangeText = "{0} must be less or equal to term_to"
)

// InitValidators registers the course validations and their translations.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(categoryTag, categoryValidation)
	core.RegisterCustomTranslation(validate, translator, categoryTag, categoryText)

	validate.RegisterStructValidation(termRangeStructValidation, TermRange{})
	core.RegisterCustomTranslation(validate, translator, termRangeTag, termRangeText)
}

func categoryValidation(fl validator.FieldLevel) bool {
	if cat, ok := fl.Field().Interface().(Category); ok {
		return cat.IsValid()
	}
	return false
}

func termRangeStructValidation(sl validator.StructLevel) {
	tr := sl.Current().Interface().(TermRange)
	if tr.From > 0 && tr.To > 0 && tr.From > tr.To {
		sl.ReportError(tr.From, "term_from", "From", termRangeTag, "")
	}
}

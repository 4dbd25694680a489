package unit

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kokulite/core"
)

var (
	categoryTag  = "unit_category"
	categoryText = "category must be one of UNIFORMED, CLUB or SPORT"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	values := make([]string, 0, len(Categories))
	for _, c := range Categories {
		values = append(values, string(c))
	}
	core.RegisterEnum(validate, translator, categoryTag, categoryText, values...)
}

package achievement

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kokulite/core"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnum(validate, translator, "achievement_level", "level must be one of SCHOOL, DISTRICT, STATE, NATIONAL or INTERNATIONAL", Levels...)
	core.RegisterEnum(validate, translator, "achievement_category", "category must be UNIT or INDIVIDUAL", Categories...)
	core.RegisterEnum(validate, translator, "achievement_status", "status must be one of DRAFT, SUBMITTED or VERIFIED", Statuses...)
	core.RegisterEnum(validate, translator, "achievement_action", "action must be one of EDIT, SUBMIT or APPROVE", Actions...)
}

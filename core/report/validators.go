package report

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kokulite/core"
)

var (
	actionTag  = "report_action"
	actionText = "action must be one of SAVE, SUBMIT, RESUBMIT, APPROVE, REJECT or REOPEN"

	statusTag  = "report_status"
	statusText = "status must be one of DRAFT, SUBMITTED, NEEDS_CORRECTION or VERIFIED"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	core.RegisterEnum(validate, translator, actionTag, actionText, Actions...)
	core.RegisterEnum(validate, translator, statusTag, statusText, Statuses...)
}

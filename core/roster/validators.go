package roster

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/kokulite/core"
)

var (
	columnRoleTag  = "column_role"
	columnRoleText = "unknown column role"
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	values := make([]string, 0, len(ColumnRoles))
	for _, r := range ColumnRoles {
		values = append(values, string(r))
	}
	core.RegisterEnum(validate, translator, columnRoleTag, columnRoleText, values...)
}

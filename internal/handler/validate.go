package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/user/movieshelf/internal/utils"
)

// fieldErrors 把 validator 的校验结果转换为 {path, message} 列表。
// validator 默认收集所有失败字段，这里一并返回而不是只报第一个。
// 非校验类错误（如 JSON 语法错误）返回 nil，由调用方走通用 400。
func fieldErrors(err error) []utils.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	out := make([]utils.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, utils.FieldError{
			Path:    strings.ToLower(fe.Field()),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldMessage 校验规则对应的提示文案
func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "email":
		return "邮箱格式不正确"
	case "min":
		return fmt.Sprintf("长度至少为 %s 个字符", fe.Param())
	case "oneof":
		return "必须是 Movie 或 TV Show"
	default:
		return "格式不正确"
	}
}

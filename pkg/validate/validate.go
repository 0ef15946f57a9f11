// Package validate 注册业务自定义的 gin binding 校验规则
package validate

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// IsNationalID 校验 T.C. 身份证号格式：11 位数字且首位不为 0
func IsNationalID(s string) bool {
	if len(s) != 11 || s[0] == '0' {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Register 向 gin 默认校验引擎注册自定义规则：
//   - tckn：T.C. 身份证号
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("gin 校验引擎不是 validator.Validate")
	}
	return RegisterOn(v)
}

// RegisterOn 在指定 validator 实例上注册自定义规则
func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("tckn", func(fl validator.FieldLevel) bool {
		return IsNationalID(fl.Field().String())
	}); err != nil {
		return fmt.Errorf("注册 tckn 校验失败: %w", err)
	}
	return nil
}

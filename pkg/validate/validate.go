// Package validate 注册请求绑定使用的自定义校验规则
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"learnpath/backend/internal/planner"
)

// 自定义校验标签
const (
	DateTag     = "plandate" // YYYY-MM-DD
	ClockTag    = "clock"    // 15:04 或 03:04 PM
	NotBlankTag = "notblank"
)

// Register 在给定校验器上注册自定义规则，并以 json 标签名报告字段
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			name = strings.SplitN(fld.Tag.Get("form"), ",", 2)[0]
		}
		return name
	})

	rules := map[string]validator.Func{
		DateTag:     dateValidation,
		ClockTag:    clockValidation,
		NotBlankTag: notBlankValidation,
	}
	for tag, fn := range rules {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("注册校验规则 %s 失败: %w", tag, err)
		}
	}
	return nil
}

// RegisterGin 注册到 gin 默认的 binding 校验器
func RegisterGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding 校验器不是 validator/v10")
	}
	return Register(v)
}

// Describe 将绑定错误转换为面向用户的简短说明
func Describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeField(fe))
	}
	return strings.Join(msgs, "; ")
}

func describeField(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " 不能为空"
	case NotBlankTag:
		return fe.Field() + " 不能为空白"
	case DateTag:
		return fe.Field() + " 必须是 YYYY-MM-DD 格式"
	case ClockTag:
		return fe.Field() + " 必须是 HH:MM 或 hh:mm AM/PM 格式"
	case "gt", "gte", "min":
		return fmt.Sprintf("%s 必须不小于 %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s 校验失败 (%s)", fe.Field(), fe.Tag())
	}
}

func dateValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := planner.ParseDate(s)
	return err == nil
}

func clockValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	_, err := planner.ParseClock(s)
	return err == nil
}

func notBlankValidation(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	return ok && strings.TrimSpace(s) != ""
}

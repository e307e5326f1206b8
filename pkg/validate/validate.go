// Package validate はgo-playground/validatorによる入力検証と、
// 利用者向けの検証エラーメッセージ生成を提供する。
package validate

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// MessageInvalid は検証失敗時の総称メッセージ。
const MessageInvalid = "参数校验失败"

// Validator はvalidator.Validateのラッパー。
type Validator struct {
	v *validator.Validate
}

// New は新しいValidatorを生成する。フィールド名にはjsonタグの名前を使う。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	return &Validator{v: v}
}

// FieldError は一つのフィールドの検証エラー。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error は検証エラー。
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Map はフィールド名からメッセージへの対応を返す。
func (e *Error) Map() map[string]string {
	m := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		m[f.Field] = f.Message
	}
	return m
}

// Struct は構造体を検証する。検証エラーは *Error として返す。
func (v *Validator) Struct(i any) error {
	err := v.v.Struct(i)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	fields := make([]FieldError, 0, len(ve))
	for _, fe := range ve {
		fields = append(fields, FieldError{Field: fe.Field(), Message: fieldMessage(fe)})
	}
	return &Error{Fields: fields}
}

// fieldMessage は一つの検証エラーを利用者向けメッセージに変換する。
func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + "不能为空"
	case "min":
		return fmt.Sprintf("%s长度不能少于%s个字符", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s长度不能超过%s个字符", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s必须是以下之一: %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s校验失败(%s)", field, fe.Tag())
	}
}

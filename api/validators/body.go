package validators

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/donazulmira/moradores-backend/pkg/cpf"
	"github.com/donazulmira/moradores-backend/pkg/enums"
	pkgerrors "github.com/donazulmira/moradores-backend/pkg/errors"
	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidBody = "Corpo da requisição inválido"
	msgValidation  = "Dados inválidos"
)

var (
	validate     = newValidator()
	monthPattern = regexp.MustCompile(`^(0[1-9]|1[0-2])$`)
)

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})
	mustRegister(v, "cpf", func(fl validator.FieldLevel) bool {
		return cpf.Valid(fl.Field().String())
	})
	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		_, err := enums.ParseRole(fl.Field().String())
		return err == nil
	})
	mustRegister(v, "month", func(fl validator.FieldLevel) bool {
		return monthPattern.MatchString(fl.Field().String())
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// DecodeJSONBody decodes a single JSON object into dest, rejecting unknown
// fields, and runs the struct validation tags.
func DecodeJSONBody(r *http.Request, dest any) error {
	defer func() {
		_, _ = io.Copy(io.Discard, r.Body)
	}()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidBody).WithDetails(map[string]any{"error": "corpo vazio"})
		}
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgInvalidBody).WithDetails(map[string]any{"error": err.Error()})
	}
	return ValidateStruct(dest)
}

// ValidateStruct runs the validation tags of an already populated value.
func ValidateStruct(dest any) error {
	if err := validate.Struct(dest); err != nil {
		return formatValidationErrors(err)
	}
	return nil
}

func formatValidationErrors(err error) *pkgerrors.Error {
	var errs validator.ValidationErrors
	if errors.As(err, &errs) {
		details := map[string]string{}
		fields := make([]string, 0, len(errs))
		for _, fieldErr := range errs {
			name := fieldErr.Field()
			if _, seen := details[name]; !seen {
				fields = append(fields, name)
			}
			details[name] = validationMessage(fieldErr)
		}
		sort.Strings(fields)
		msg := msgValidation
		if len(fields) == 1 {
			msg = fmt.Sprintf("%s: %s", fields[0], details[fields[0]])
		}
		return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(details)
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, msgValidation)
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "campo obrigatório"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("deve ter ao menos %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser no mínimo %s", fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("deve ter no máximo %s caracteres", fe.Param())
		}
		return fmt.Sprintf("deve ser no máximo %s", fe.Param())
	case "gt":
		return fmt.Sprintf("deve ser maior que %s", fe.Param())
	case "len":
		return fmt.Sprintf("deve ter %s caracteres", fe.Param())
	case "numeric":
		return "deve conter apenas números"
	case "email":
		return "deve ser um e-mail válido"
	case "cpf":
		return "CPF inválido"
	case "role":
		return "função inválida"
	case "month":
		return "deve estar no formato MM (01-12)"
	case "oneof":
		return fmt.Sprintf("deve ser um de: %s", fe.Param())
	}
	return "valor inválido"
}

// Package validation builds the request validator with French error messages.
package validation

import (
	"errors"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/locales/fr"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	fr_translations "github.com/go-playground/validator/v10/translations/fr"

	appErrors "github.com/Karama2000/kara-app-sub001/pkg/errors"
)

// NotBlankTag rejects strings made only of whitespace.
const NotBlankTag = "notblank"

// Validator wraps validator.Validate with a French translator.
type Validator struct {
	engine     *validator.Validate
	translator ut.Translator
}

// New builds the validator: JSON field names, French messages and the custom tags.
func New() *Validator {
	engine := validator.New()

	locale := fr.New()
	uni := ut.New(locale, locale)
	translator, _ := uni.GetTranslator("fr")
	_ = fr_translations.RegisterDefaultTranslations(engine, translator)

	engine.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = engine.RegisterValidation(NotBlankTag, notBlank)

	v := &Validator{engine: engine, translator: translator}
	v.RegisterMessage(NotBlankTag, "{0} ne peut pas être vide")
	return v
}

// Engine exposes the underlying validator for packages that take *validator.Validate.
func (v *Validator) Engine() *validator.Validate {
	return v.engine
}

// RegisterMessage sets the French message of a custom tag. {0} is the field name.
func (v *Validator) RegisterMessage(tag, message string) {
	_ = v.engine.RegisterTranslation(tag, v.translator,
		func(t ut.Translator) error {
			return t.Add(tag, message, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, err := t.T(tag, fe.Field())
			if err != nil {
				return fe.Error()
			}
			return msg
		})
}

// Struct validates s and returns a VALIDATION_ERROR whose message lists every
// violation in French.
func (v *Validator) Struct(s interface{}) error {
	err := v.engine.Struct(s)
	if err == nil {
		return nil
	}
	messages := v.Messages(err)
	if len(messages) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, strings.Join(messages, "; "))
}

// Messages translates validation errors, sorted for stable output.
func (v *Validator) Messages(err error) []string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, fe.Translate(v.translator))
	}
	sort.Strings(out)
	return out
}

func notBlank(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

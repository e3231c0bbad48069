package handlers

import (
	"reflect"
	"strings"

	"github.com/anjiri1684/tutor_connect/models"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate   *validator.Validate
	translator ut.Translator

	notBlankTag        = "notblank"
	requiredForRoleTag = "required_for_role"
)

func init() {
	validate = validator.New()

	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	validate.RegisterStructValidation(registerStructValidation, RegisterRequest{})

	registerFn := func(ut.Translator) error { return nil }
	for _, tag := range []string{notBlankTag, requiredForRoleTag} {
		_ = validate.RegisterTranslation(tag, translator, registerFn, translateCustomErrs)
	}
}

func translateCustomErrs(_ ut.Translator, fe validator.FieldError) string {
	switch fe.Tag() {
	case notBlankTag:
		return "this field cannot be blank"
	case requiredForRoleTag:
		return fe.Field() + " is required for this role"
	default:
		return ""
	}
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// registerStructValidation requires the profile fields of the chosen role.
func registerStructValidation(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(RegisterRequest)
	if !ok {
		return
	}
	switch req.Role {
	case models.RoleStudent:
		if strings.TrimSpace(req.Career) == "" {
			sl.ReportError(req.Career, "career", "Career", requiredForRoleTag, "")
		}
	case models.RoleTutor:
		if req.TutorType == "" {
			sl.ReportError(req.TutorType, "tutorType", "TutorType", requiredForRoleTag, "")
		}
	}
}

// fieldErrors translates validator errors into a field -> message map.
func fieldErrors(err error) map[string]string {
	out := map[string]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return out
	}
	for _, fe := range verrs {
		out[fe.Field()] = fe.Translate(translator)
	}
	return out
}

package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"quiz_app_backend/models"
	"quiz_app_backend/quiz"
)

// Register installs the quiz-specific rules on gin's binding validator.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("unexpected binding validator engine")
	}
	return RegisterOn(v)
}

func RegisterOn(v *validator.Validate) error {
	if err := v.RegisterValidation("quizrole", validateRole); err != nil {
		return err
	}
	return v.RegisterValidation("optionkey", validateOptionKey)
}

func validateRole(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case models.RoleStudent, models.RoleTeacher:
		return true
	}
	return false
}

func validateOptionKey(fl validator.FieldLevel) bool {
	return quiz.OptionKey(strings.ToLower(fl.Field().String())).Valid()
}

// Message turns binding errors into a short message for API clients.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fieldMessage(fe))
	}
	return strings.Join(parts, "; ")
}

func fieldMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return "email must be a valid email address"
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "quizrole":
		return "role must be student or teacher"
	case "optionkey":
		return "option must be one of a, b, c, d"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	}
	return fmt.Sprintf("%s is invalid", field)
}

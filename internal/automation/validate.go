package automation

import (
	"fmt"
	"strings"

	"boardflow/internal/model"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Validate checks a rule's enums and due date before it is stored. Missing
// ids are accepted here; they fail at execution and are logged.
func Validate(rule *model.AutomationRule) error {
	var msgs []string
	if err := validate.Struct(rule); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		msgs = append(msgs, fieldMessages(verrs)...)
	}

	if rule.ActionType == model.ActionSetDueDate {
		if _, err := parseDueDate(strings.TrimSpace(rule.ActionVal)); err != nil {
			msgs = append(msgs, "ActionVal: "+err.Error())
		}
	}

	if len(msgs) == 0 {
		return nil
	}
	return fmt.Errorf("invalid automation rule: %s", strings.Join(msgs, ", "))
}

func fieldMessages(verrs validator.ValidationErrors) []string {
	var msgs []string
	for _, fe := range verrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", field, fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", field, fe.Param()))
		default:
			msgs = append(msgs, field+" is invalid")
		}
	}
	return msgs
}

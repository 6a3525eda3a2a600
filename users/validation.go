package users

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

//FieldError describes one violated rule of a request body.
type FieldError struct {
	Value    string `json:"value"`
	Msg      string `json:"msg"`
	Param    string `json:"param"`
	Location string `json:"location"`
}

//ValidationErrors lists every rule a request violated, in rule order.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fe.Param+": "+fe.Msg)
	}
	return "invalid request: " + strings.Join(msgs, "; ")
}

type rule struct {
	field  string
	tag    string
	msg    string
	secret bool
	value  func(r registerAccountRequest) string
}

var registerRules = []rule{
	{
		field: "name",
		tag:   "required",
		msg:   "Please add a name",
		value: func(r registerAccountRequest) string { return r.Name },
	},
	{
		field: "email",
		tag:   "email",
		msg:   "Please include a valid email",
		value: func(r registerAccountRequest) string { return r.Email },
	},
	{
		field: "phone",
		tag:   "len=10,number",
		msg:   "Please enter a phone number of 10 digits",
		value: func(r registerAccountRequest) string { return r.Phone },
	},
	{
		field:  "password",
		tag:    "min=6",
		msg:    "Please enter a password with 6 or more characters",
		secret: true,
		value:  func(r registerAccountRequest) string { return r.Password },
	},
}

var validate = validator.New()

//validateRegistration evaluates every rule against r and returns nil when all
// of them hold.
func validateRegistration(r registerAccountRequest) error {
	var errs ValidationErrors
	for _, rl := range registerRules {
		v := rl.value(r)
		if err := validate.Var(v, rl.tag); err == nil {
			continue
		}

		fe := FieldError{Msg: rl.msg, Param: rl.field, Location: "body"}
		if !rl.secret {
			fe.Value = v
		}
		errs = append(errs, fe)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

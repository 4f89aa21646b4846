// Package validator accumulates human-readable messages for failed
// input checks. Handlers embed a Validator in their input struct, run
// their checks, and hand Errors to the failed-validation response.
package validator

type Validator struct {
	Errors []string `json:",omitempty"`
}

func (v Validator) HasErrors() bool {
	return len(v.Errors) != 0
}

func (v *Validator) AddError(message string) {
	if v.Errors == nil {
		v.Errors = []string{}
	}

	v.Errors = append(v.Errors, message)
}

// Check records message when ok is false. Checks are independent, so a
// single bad request reports every failing field at once.
func (v *Validator) Check(ok bool, message string) {
	if !ok {
		v.AddError(message)
	}
}

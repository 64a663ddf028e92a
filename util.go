package mkbootimg

import "github.com/hashicorp/errwrap"

// eMsg wraps err with a description of the step that failed.
func eMsg(err error, msg string) error {
	return errwrap.Wrapf(msg+"; {{err}}", err)
}

// GetErrors returns the wrapped errors from one error.
func GetErrors(err error) []string {
	if err == nil {
		return []string{}
	}

	w, ok := err.(errwrap.Wrapper)
	if !ok {
		return []string{err.Error()}
	}

	wrapped := w.WrappedErrors()
	return []string{wrapped[0].Error(), wrapped[1].Error()}
}

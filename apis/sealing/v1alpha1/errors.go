package v1alpha1

import "fmt"

func errInvalid(format string, a ...any) error {
	return fmt.Errorf("invalid SealedSecret: "+format, a...)
}

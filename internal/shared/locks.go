package shared

import "fmt"

// LOVSaveLockKey builds the redis key guarding one in-flight form save.
func LOVSaveLockKey(formToken string) string {
	return fmt.Sprintf("lov:save:%s:lock", formToken)
}

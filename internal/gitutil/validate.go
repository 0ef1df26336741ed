package gitutil

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// forbiddenRefChars are rejected anywhere in a ref name by git check-ref-format.
const forbiddenRefChars = " ~^:?*[\\"

// ValidateBranchName rejects names git would refuse as a branch, so a typo in
// a merge target fails before any checkout runs.
func ValidateBranchName(name string) error {
	if name == "" {
		return errors.New("branch name cannot be empty")
	}
	if name == "@" || name == "HEAD" {
		return fmt.Errorf("%q is not a branch name", name)
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("branch name cannot start with '-': %s", name)
	}
	for _, seq := range []string{"..", "@{", "//"} {
		if strings.Contains(name, seq) {
			return fmt.Errorf("branch name cannot contain %q: %s", seq, name)
		}
	}
	for _, r := range name {
		if unicode.IsControl(r) || strings.ContainsRune(forbiddenRefChars, r) {
			return fmt.Errorf("branch name contains invalid character %q: %s", r, name)
		}
	}
	if strings.HasSuffix(name, "/") || strings.HasSuffix(name, ".") || strings.HasSuffix(name, ".lock") {
		return fmt.Errorf("branch name cannot end with '/', '.' or '.lock': %s", name)
	}
	for _, part := range strings.Split(name, "/") {
		if strings.HasPrefix(part, ".") {
			return fmt.Errorf("branch name component cannot start with '.': %s", name)
		}
	}
	return nil
}

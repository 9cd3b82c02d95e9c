package localauth

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/irshadhq/irshad/core/auth"
)

// password policy
var (
	pwdMinLen  = 8
	pwdMaxSim  = .7
	specialReg = regexp.MustCompile("[^A-Za-z0-9]")
)

// CheckPassword applies the password policy to pwd:
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no similarity with user attributes (email, name)
func CheckPassword(pwd string, attrs ...string) error {
	weak := func(msg string) error { return auth.NewError(auth.KindWeakCredential, msg) }

	pwdLen := len(pwd)
	if pwdLen < pwdMinLen {
		return weak(fmt.Sprintf("password must contain at least %d characters", pwdMinLen))
	}

	var digitCount int
	var hasUpper, hasLower bool
	for _, char := range pwd {
		if unicode.IsSpace(char) {
			return weak("password must not contain whitespace")
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == pwdLen {
		return weak("password cannot be entirely numeric")
	}

	if !(hasUpper && hasLower && digitCount > 0 && specialReg.MatchString(pwd)) {
		return weak("password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character")
	}

	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		ratio := difflib.NewMatcher(strings.Split(pwd, ""), strings.Split(attr, "")).QuickRatio()
		if ratio >= pwdMaxSim {
			return weak("password cannot be similar to user attributes")
		}
	}
	return nil
}

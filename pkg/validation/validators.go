package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validators accumulate every violation instead of failing fast, so
// registration can show the user the full list in one pass.

var (
	upperRe      = regexp.MustCompile(`[A-Z]`)
	lowerRe      = regexp.MustCompile(`[a-z]`)
	digitRe      = regexp.MustCompile(`\d`)
	symbolRe     = regexp.MustCompile(`[@#$%^&+=!?*]`)
	whitespaceRe = regexp.MustCompile(`\s`)
	nicknameRe   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	personNameRe = regexp.MustCompile(`^[a-zA-ZàèéìòùÀÈÉÌÒÙáéíóúÁÉÍÓÚäëïöüÄËÏÖÜ'\s-]+$`)
)

// Nicknames that would impersonate staff or the platform itself.
var reservedNicknames = []string{"admin", "root", "moderator", "guildhall", "founder"}

var validate = validator.New()

// Password checks length, character classes and whitespace. The symbol set
// is fixed: @#$%^&+=!?*
func Password(password string) []string {
	var errs []string

	if len(password) < 8 {
		errs = append(errs, "password must be at least 8 characters")
	}
	if len(password) > 128 {
		errs = append(errs, "password cannot exceed 128 characters")
	}
	if !upperRe.MatchString(password) {
		errs = append(errs, "password must contain at least one uppercase letter")
	}
	if !lowerRe.MatchString(password) {
		errs = append(errs, "password must contain at least one lowercase letter")
	}
	if !digitRe.MatchString(password) {
		errs = append(errs, "password must contain at least one digit")
	}
	if !symbolRe.MatchString(password) {
		errs = append(errs, "password must contain at least one special character (@#$%^&+=!?*)")
	}
	if whitespaceRe.MatchString(password) {
		errs = append(errs, "password cannot contain whitespace")
	}

	return errs
}

// PasswordMatch verifies the confirmation field.
func PasswordMatch(password, confirm string) []string {
	if password != confirm {
		return []string{"passwords do not match"}
	}
	return nil
}

// Email checks structural validity only; no deliverability probe.
func Email(email string) []string {
	if strings.TrimSpace(email) == "" {
		return []string{"email is required"}
	}
	if err := validate.Var(email, "email"); err != nil {
		return []string{"email address is not valid"}
	}
	return nil
}

// Nickname enforces 3-20 chars of [A-Za-z0-9_-], no leading or trailing
// underscore/hyphen, and rejects reserved names case-insensitively.
func Nickname(nickname string) []string {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return []string{"nickname is required"}
	}

	var errs []string

	if len(nickname) < 3 {
		errs = append(errs, "nickname must be at least 3 characters")
	}
	if len(nickname) > 20 {
		errs = append(errs, "nickname cannot exceed 20 characters")
	}
	if !nicknameRe.MatchString(nickname) {
		errs = append(errs, "nickname may only contain letters, digits, underscores and hyphens")
	} else if nickname[0] == '_' || nickname[0] == '-' ||
		nickname[len(nickname)-1] == '_' || nickname[len(nickname)-1] == '-' {
		errs = append(errs, "nickname cannot start or end with an underscore or hyphen")
	}

	lowered := strings.ToLower(nickname)
	for _, reserved := range reservedNicknames {
		if lowered == reserved {
			errs = append(errs, "this nickname is not available")
			break
		}
	}

	return errs
}

// PersonName validates first/last name fields: 2-50 chars, letters
// (accented included), spaces, apostrophes and hyphens.
func PersonName(name, fieldName string) []string {
	name = strings.TrimSpace(name)
	if name == "" {
		return []string{fmt.Sprintf("%s is required", fieldName)}
	}

	var errs []string

	if len([]rune(name)) < 2 {
		errs = append(errs, fmt.Sprintf("%s must be at least 2 characters", fieldName))
	}
	if len([]rune(name)) > 50 {
		errs = append(errs, fmt.Sprintf("%s cannot exceed 50 characters", fieldName))
	}
	if !personNameRe.MatchString(name) {
		errs = append(errs, fmt.Sprintf("%s may only contain letters, spaces, apostrophes and hyphens", fieldName))
	}

	return errs
}

// Struct runs validator/v10 tag validation on a request struct.
func Struct(s interface{}) error {
	return validate.Struct(s)
}

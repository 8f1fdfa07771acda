package service

import (
	"unicode"

	"github.com/clickvault/internal/config"
)

// passwordPolicyError 携带 i18n key 的密码策略错误，errors.Is 匹配 ErrWeakPassword
type passwordPolicyError struct {
	key  string
	args []interface{}
}

func (e passwordPolicyError) Error() string {
	return e.key
}

func (e passwordPolicyError) Is(target error) bool {
	return target == ErrWeakPassword
}

func (e passwordPolicyError) Key() string {
	return e.key
}

func (e passwordPolicyError) Args() []interface{} {
	return e.args
}

type passwordCharRule struct {
	required bool
	match    func(rune) bool
	key      string
}

func validatePassword(policy config.PasswordPolicyConfig, password string) error {
	if policy.MinLength > 0 && len([]rune(password)) < policy.MinLength {
		return passwordPolicyError{key: "error.password_min_length", args: []interface{}{policy.MinLength}}
	}

	rules := []passwordCharRule{
		{required: policy.RequireUpper, match: unicode.IsUpper, key: "error.password_require_upper"},
		{required: policy.RequireLower, match: unicode.IsLower, key: "error.password_require_lower"},
		{required: policy.RequireNumber, match: unicode.IsDigit, key: "error.password_require_number"},
	}
	for _, rule := range rules {
		if !rule.required {
			continue
		}
		if !containsRune(password, rule.match) {
			return passwordPolicyError{key: rule.key}
		}
	}
	return nil
}

func containsRune(text string, match func(rune) bool) bool {
	for _, r := range text {
		if match(r) {
			return true
		}
	}
	return false
}

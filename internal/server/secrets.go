package server

import (
	"fmt"
	"strings"
)

// secretKeyPatterns are matched case-insensitively against env variable
// names to decide whether a value should be treated as a credential.
var secretKeyPatterns = []string{"KEY", "TOKEN", "SECRET", "PASSWORD"}

// IsSecretKey reports whether an env variable name looks credential-bearing.
func IsSecretKey(key string) bool {
	upper := strings.ToUpper(key)
	for _, p := range secretKeyPatterns {
		if strings.Contains(upper, p) {
			return true
		}
	}
	return false
}

// IsSecretRef reports whether an env value is a secret reference rather
// than a literal, i.e. of the form ${NAME}.
func IsSecretRef(value string) bool {
	return strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}")
}

// Placeholder returns the conventional placeholder for a secret env key.
func Placeholder(key string) string {
	return fmt.Sprintf("YOUR_%s_HERE", strings.ToUpper(key))
}

// IsPlaceholder reports whether an env value is an unfilled placeholder.
func IsPlaceholder(key, value string) bool {
	return value == Placeholder(key)
}

// WithPlaceholders returns a copy of the definition with credential-looking
// env values replaced by placeholders. Used when deploying to shared
// platform configs so real keys never leave the registry.
func (d *Definition) WithPlaceholders() *Definition {
	if len(d.Env) == 0 {
		return d
	}

	out := d.Clone()
	for key, value := range out.Env {
		if !IsSecretKey(key) {
			continue
		}
		if value == "" || IsPlaceholder(key, value) || IsSecretRef(value) {
			continue
		}
		out.Env[key] = Placeholder(key)
	}
	return out
}

// UnfilledPlaceholders returns the env keys whose values are still
// placeholders and need to be filled by the user.
func (d *Definition) UnfilledPlaceholders() []string {
	var keys []string
	for key, value := range d.Env {
		if IsPlaceholder(key, value) {
			keys = append(keys, key)
		}
	}
	return keys
}

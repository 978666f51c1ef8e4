package config

import (
	"os"
	"regexp"
	"strings"
)

// secretRefPattern matches ${VAR}, ${VAR:-fallback} and $VAR.
var secretRefPattern = regexp.MustCompile(`\$\{([A-Za-z0-9_]+)(?::-([^}]*))?\}|\$([A-Za-z0-9_]+)`)

// ExpandEnv substitutes environment references in a secret value.
// "${GOOGLE_API_KEY:-}" and "${OPENAI_API_KEY}" resolve to "" when unset;
// "${MODEL_KEY:-local}" falls back to "local".
func ExpandEnv(s string) string {
	return secretRefPattern.ReplaceAllStringFunc(s, func(ref string) string {
		m := secretRefPattern.FindStringSubmatch(ref)
		if m[3] != "" {
			return os.Getenv(m[3])
		}
		if v, ok := os.LookupEnv(m[1]); ok && v != "" {
			return v
		}
		return m[2]
	})
}

// ExpandEnvMap expands and trims every secret. Entries that resolve to an
// empty value are dropped so the environment fallback in Secret applies.
func ExpandEnvMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}

	expanded := make(map[string]string, len(m))
	for key, value := range m {
		if v := strings.TrimSpace(ExpandEnv(value)); v != "" {
			expanded[key] = v
		}
	}
	return expanded
}

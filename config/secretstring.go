package config

// SecretStringValue replaces actual secret everywhere it could be seen.
const SecretStringValue = "<secret>"

// SecretString is used for credentials (remote source tokens) which must not
// be visible in logs, dumps or debug reports.
type SecretString string

// Value returns actual secret, only to be used when talking to remote side.
func (s SecretString) Value() string {
	return string(s)
}

// String hides the value from fmt and zap.Stringer.
func (s SecretString) String() string {
	if len(s) == 0 {
		return ""
	}
	return SecretStringValue
}

// MarshalJSON marshals SecretString to JSON making sure that actual value is not visible.
func (s SecretString) MarshalJSON() ([]byte, error) {
	if len(s) == 0 {
		return []byte("null"), nil
	}
	return []byte("\"" + SecretStringValue + "\""), nil
}

// MarshalYAML marshals SecretString to YAML making sure that actual value is not visible.
func (s SecretString) MarshalYAML() (any, error) {
	if len(s) == 0 {
		return nil, nil
	}
	return SecretStringValue, nil
}

// Package i18n looks up user-facing strings by dotted key.
//
// Widgets and views receive a Translator instead of reaching for a global,
// so they can be tested with Keys or a hand-built Map.
package i18n

// Translator resolves a dotted message key such as
// "contact.form.errors.nameRequired". Unknown keys resolve to the key itself.
type Translator interface {
	T(key string) string
	Locale() string
}

// Or returns tr's message for key, or fallback when the key is missing.
func Or(tr Translator, key, fallback string) string {
	if tr == nil {
		return fallback
	}
	if msg := tr.T(key); msg != "" && msg != key {
		return msg
	}
	return fallback
}

// Keys is a Translator that echoes every key back.
var Keys Translator = Map{}

// Map is a fixed, single-locale Translator.
type Map map[string]string

// T implements Translator.
func (m Map) T(key string) string {
	if msg, ok := m[key]; ok {
		return msg
	}
	return key
}

// Locale implements Translator.
func (m Map) Locale() string { return "und" }

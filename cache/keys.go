package cache

import "strings"

// KeyBuilder composes namespaced cache keys: <namespace>:<locale>:<id>.
// Message ids are human-readable, so the key stays operator-legible.
type KeyBuilder struct {
	namespace string
}

// NewKeyBuilder creates a KeyBuilder for the given namespace.
func NewKeyBuilder(namespace string) *KeyBuilder {
	if namespace == "" {
		namespace = Namespace
	}
	return &KeyBuilder{namespace: namespace}
}

// Build returns the full key for one record.
func (kb *KeyBuilder) Build(locale, id string) string {
	return kb.namespace + ":" + locale + ":" + id
}

// LocalePrefix returns the prefix covering one locale's records.
func (kb *KeyBuilder) LocalePrefix(locale string) string {
	return kb.namespace + ":" + locale + ":"
}

// NamespacePrefix returns the prefix covering every record.
func (kb *KeyBuilder) NamespacePrefix() string {
	return kb.namespace + ":"
}

// KeySuffix returns the suffix covering one message id across every
// locale.
func (kb *KeyBuilder) KeySuffix(id string) string {
	return ":" + id
}

// Pattern returns the scan pattern for an invalidation scope.
func (kb *KeyBuilder) Pattern(locale, id string) string {
	switch {
	case locale == "" && id == "":
		return kb.NamespacePrefix() + "*"
	case locale == "":
		return kb.NamespacePrefix() + "*" + kb.KeySuffix(id)
	case id == "":
		return kb.LocalePrefix(locale) + "*"
	default:
		return kb.Build(locale, id)
	}
}

// Split recovers (locale, id) from a full key; ok is false for keys
// outside this namespace.
func (kb *KeyBuilder) Split(key string) (locale, id string, ok bool) {
	rest, found := strings.CutPrefix(key, kb.NamespacePrefix())
	if !found {
		return "", "", false
	}
	locale, id, found = strings.Cut(rest, ":")
	if !found {
		return "", "", false
	}
	return locale, id, true
}

package catalog

import "sort"

// NameMap is the token→name mapping that gets persisted.
type NameMap struct {
	names map[string]string
}

// NewNameMap creates an empty map.
func NewNameMap() *NameMap {
	return &NameMap{names: make(map[string]string)}
}

// Set inserts or overwrites the name for token.
func (m *NameMap) Set(token, name string) {
	m.names[token] = name
}

// Remove deletes the entry for token. Removing an absent token is a no-op.
func (m *NameMap) Remove(token string) {
	delete(m.names, token)
}

// Lookup returns the name stored for token.
func (m *NameMap) Lookup(token string) (string, bool) {
	name, ok := m.names[token]
	return name, ok
}

// Clear removes every entry.
func (m *NameMap) Clear() {
	m.names = make(map[string]string)
}

// Len returns the number of entries.
func (m *NameMap) Len() int {
	return len(m.names)
}

// Snapshot returns a copy of the entries, safe to hand to the store.
func (m *NameMap) Snapshot() map[string]string {
	out := make(map[string]string, len(m.names))
	for k, v := range m.names {
		out[k] = v
	}
	return out
}

// Tokens returns the mapped tokens in sorted order.
func (m *NameMap) Tokens() []string {
	tokens := make([]string, 0, len(m.names))
	for k := range m.names {
		tokens = append(tokens, k)
	}
	sort.Strings(tokens)
	return tokens
}

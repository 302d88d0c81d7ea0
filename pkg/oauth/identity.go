package oauth

import "maps"

// Identity is a read-only view over a parsed user info response.
type Identity struct {
	fields  map[string]any
	idField string
}

// NewIdentity wraps fields with idField as the primary identifier.
// The map is copied; later changes to fields do not affect the identity.
func NewIdentity(fields map[string]any, idField string) *Identity {
	c := maps.Clone(fields)
	if c == nil {
		c = map[string]any{}
	}
	return &Identity{fields: c, idField: idField}
}

// All returns a copy of every field.
func (i *Identity) All() map[string]any {
	return maps.Clone(i.fields)
}

// Get returns the value stored under key.
// Returns a KeyNotFoundError when the key is absent.
func (i *Identity) Get(key string) (any, error) {
	v, ok := i.fields[key]
	if !ok {
		return nil, &KeyNotFoundError{Key: key}
	}
	return v, nil
}

// String returns the value under key if it is a string, "" otherwise.
func (i *Identity) String(key string) string {
	s, _ := i.fields[key].(string)
	return s
}

// ID returns the primary identifier value, or nil when it is absent.
func (i *Identity) ID() any {
	return i.fields[i.idField]
}

// IDField returns the name of the primary identifier field.
func (i *Identity) IDField() string {
	return i.idField
}

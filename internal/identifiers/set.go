package identifiers

// Set holds the identifier values of one product or variation. After
// Normalize every canonical key is present; an empty string means unset.
type Set map[string]string

// NewSet returns a set with every key present and empty.
func NewSet() Set {
	s := make(Set, len(allKeys))
	for _, k := range allKeys {
		s[string(k)] = ""
	}
	return s
}

// Normalize returns a copy of s holding exactly the canonical keys.
func (s Set) Normalize() Set {
	n := NewSet()
	for _, k := range allKeys {
		if v, ok := s[string(k)]; ok {
			n[string(k)] = v
		}
	}
	return n
}

// Get returns the value stored for k, or "".
func (s Set) Get(k Key) string {
	return s[string(k)]
}

// Merge returns a normalized copy of s with values applied on top. Keys of
// values that are not canonical are ignored.
func (s Set) Merge(values map[string]string) Set {
	merged := s.Normalize()
	for k, v := range values {
		if IsKey(k) {
			merged[k] = v
		}
	}
	return merged
}

// Equal reports whether both sets hold the same canonical values.
func (s Set) Equal(other Set) bool {
	a, b := s.Normalize(), other.Normalize()
	for _, k := range allKeys {
		if a[string(k)] != b[string(k)] {
			return false
		}
	}
	return true
}

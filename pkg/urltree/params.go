package urltree

// Params is an insertion-ordered set of string key/value pairs.
// It is used for matrix parameters and query parameters, where serialization
// must preserve the order in which parameters were written.
//
// The zero value is not usable; construct with NewParams.
type Params struct {
	keys   []string
	values map[string]string
}

// NewParams creates an empty parameter set.
func NewParams() *Params {
	return &Params{values: make(map[string]string)}
}

// ParamsFrom creates a parameter set from alternating key, value pairs.
// Panics if the number of arguments is odd.
func ParamsFrom(pairs ...string) *Params {
	if len(pairs)%2 != 0 {
		panic("urltree: ParamsFrom requires an even number of arguments")
	}
	p := NewParams()
	for i := 0; i < len(pairs); i += 2 {
		p.Set(pairs[i], pairs[i+1])
	}
	return p
}

// Set stores a value under key. Setting an existing key updates the value
// in place and keeps the key's original position.
func (p *Params) Set(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = value
}

// Get returns the value stored under key, or "" if the key is absent.
func (p *Params) Get(key string) string {
	if p == nil {
		return ""
	}
	return p.values[key]
}

// Has reports whether key is present.
func (p *Params) Has(key string) bool {
	if p == nil {
		return false
	}
	_, ok := p.values[key]
	return ok
}

// Len returns the number of parameters.
func (p *Params) Len() int {
	if p == nil {
		return 0
	}
	return len(p.keys)
}

// Keys returns the keys in insertion order. The returned slice is a copy.
func (p *Params) Keys() []string {
	if p == nil {
		return nil
	}
	keys := make([]string, len(p.keys))
	copy(keys, p.keys)
	return keys
}

// Each calls fn for every key/value pair in insertion order.
func (p *Params) Each(fn func(key, value string)) {
	if p == nil {
		return
	}
	for _, k := range p.keys {
		fn(k, p.values[k])
	}
}

// Map returns the parameters as a plain map. The returned map is a copy.
func (p *Params) Map() map[string]string {
	if p == nil {
		return nil
	}
	m := make(map[string]string, len(p.keys))
	for k, v := range p.values {
		m[k] = v
	}
	return m
}

// Clone returns an independent copy of the parameter set.
func (p *Params) Clone() *Params {
	if p == nil {
		return nil
	}
	c := NewParams()
	for _, k := range p.keys {
		c.Set(k, p.values[k])
	}
	return c
}

// Equal reports whether two parameter sets hold the same key/value pairs.
// Ordering is ignored: two sets with the same pairs in different insertion
// order are equal.
func (p *Params) Equal(other *Params) bool {
	if p.Len() != other.Len() {
		return false
	}
	if p == nil {
		return true
	}
	for _, k := range p.keys {
		ov, ok := other.values[k]
		if !ok || ov != p.values[k] {
			return false
		}
	}
	return true
}

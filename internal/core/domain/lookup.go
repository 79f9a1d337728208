package domain

// Lookup identifies a Role or Permission either by its unique name or by
// its ID. Workflows resolve a Lookup once, before any mutation.
type Lookup struct {
	byID  bool
	value string
}

// ByName looks an entity up by its unique name.
func ByName(name string) Lookup { return Lookup{value: name} }

// ByID looks an entity up by its ID.
func ByID(id string) Lookup { return Lookup{byID: true, value: id} }

// IsID reports whether the lookup is by ID.
func (l Lookup) IsID() bool { return l.byID }

// Value returns the raw name or ID.
func (l Lookup) Value() string { return l.value }

func (l Lookup) String() string { return l.value }

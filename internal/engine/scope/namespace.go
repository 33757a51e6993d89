package scope

// Namespace selects one of the three independent keyspaces held by a Scope.
type Namespace int

const (
	Types Namespace = iota
	Variables
	Functions
)

// Namespaces lists every namespace in a stable order.
var Namespaces = []Namespace{Types, Variables, Functions}

func (n Namespace) String() string {
	switch n {
	case Types:
		return "type"
	case Variables:
		return "variable"
	case Functions:
		return "function"
	default:
		return "unknown"
	}
}

// Valid reports whether n names one of the three namespaces.
func (n Namespace) Valid() bool {
	return n >= Types && n <= Functions
}

// Package roles scores columns of tokenized log rows, or keys of JSON log
// objects, against the five semantic roles a log field usually plays, and
// picks a confident winner per role together with the evidence behind it.
package roles

// Role is the semantic meaning of a column or key.
type Role int

const (
	Date Role = iota
	Status
	Location
	Thread
	Message
)

const numRoles = 5

// All lists the roles in report order.
var All = []Role{Date, Status, Location, Thread, Message}

func (r Role) String() string {
	switch r {
	case Date:
		return "date"
	case Status:
		return "status"
	case Location:
		return "location"
	case Thread:
		return "thread"
	case Message:
		return "message"
	default:
		return "unknown"
	}
}

// MarshalText encodes the role by name.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// DefaultFloor is the score a winner must exceed to be reported.
const DefaultFloor = 0.5

// Score holds one accumulator per role. Values only grow.
type Score struct {
	Date     float64 `json:"date" yaml:"date"`
	Status   float64 `json:"status" yaml:"status"`
	Location float64 `json:"location" yaml:"location"`
	Thread   float64 `json:"thread" yaml:"thread"`
	Message  float64 `json:"message" yaml:"message"`
}

// Get returns the accumulator for r.
func (s Score) Get(r Role) float64 {
	switch r {
	case Date:
		return s.Date
	case Status:
		return s.Status
	case Location:
		return s.Location
	case Thread:
		return s.Thread
	case Message:
		return s.Message
	}
	return 0
}

// add ignores non-positive weights so accumulators never decrease.
func (s *Score) add(r Role, w float64) {
	if w <= 0 {
		return
	}
	switch r {
	case Date:
		s.Date += w
	case Status:
		s.Status += w
	case Location:
		s.Location += w
	case Thread:
		s.Thread += w
	case Message:
		s.Message += w
	}
}

package domain

// Connectivity is the two-valued network signal.
type Connectivity int

const (
	Offline Connectivity = iota
	Online
)

// ConnectivityOf converts an observation into a Connectivity.
func ConnectivityOf(online bool) Connectivity {
	if online {
		return Online
	}
	return Offline
}

func (c Connectivity) String() string {
	switch c {
	case Online:
		return "online"
	case Offline:
		return "offline"
	default:
		return "unknown"
	}
}

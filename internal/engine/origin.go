package engine

// Origin marks whether a state change was authored by the local user or
// replayed from an inbound envelope. It is always passed explicitly into
// the apply call that it guards; storing it in a long-lived flag reopens
// the echo-loop timing hole this parameter exists to close. Remote-origin
// applies never broadcast.
type Origin int

const (
	OriginLocal Origin = iota
	OriginRemote
)

func (o Origin) String() string {
	if o == OriginRemote {
		return "remote"
	}
	return "local"
}

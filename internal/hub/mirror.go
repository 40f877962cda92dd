package hub

// Mirror channels for the secondary transport.
const (
	MirrorChannelEvents  = "events:update"
	MirrorChannelGoodies = "goodies:update"
)

// Mirror is an optional secondary transport that receives every published
// message as a plain object (not a re-serialized string). Implementations
// must be best effort: a Forward that cannot deliver should return without
// side effects. The hub swallows panics from Forward.
type Mirror interface {
	Forward(channel string, payload any)
}

// NopMirror discards everything. It is the default when no secondary
// transport is configured.
type NopMirror struct{}

// Forward implements Mirror.
func (NopMirror) Forward(channel string, payload any) {}

package domain

// ActorKind identifies who requested a status change.
type ActorKind string

// List of actor kinds
const (
	ActorSystem     ActorKind = "system"
	ActorDispatcher ActorKind = "dispatcher"
	ActorDriver     ActorKind = "driver"
	ActorOperator   ActorKind = "operator"
)

// Actor is the originator of a transition. DriverID is set for drivers and the dispatcher.
type Actor struct {
	Kind     ActorKind
	DriverID int64
}

// Valid checks if the actor kind is known.
func (k ActorKind) Valid() bool {
	switch k {
	case ActorSystem, ActorDispatcher, ActorDriver, ActorOperator:
		return true
	}
	return false
}

// SystemActor is used for transitions the service triggers on its own.
func SystemActor() Actor { return Actor{Kind: ActorSystem} }

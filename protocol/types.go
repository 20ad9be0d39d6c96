package protocol

// Message types.
const (
	// Client -> Core (requests topic)
	TypeLiftRequest = "lift.request"

	// Core -> Client (events topic)
	TypeLiftDispatched = "lift.dispatched"
	TypeLiftRejected   = "lift.rejected"
	TypeLiftArrived    = "lift.arrived"
	TypeLiftParked     = "lift.parked"
)

// Roles for Address.Role.
const (
	RoleClient = "client"
	RoleCore   = "core"
)

// BroadcastStation addresses every listener on a topic.
const BroadcastStation = "*"

const Version = 1

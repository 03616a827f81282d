//go:generate go run go.uber.org/mock/mockgen -source=emitter.go -destination=mocks/mock_emitter.go -package=mocks
package chat

// Emitter delivers outbound events on behalf of the core.
// Implementations must not block and must not call back into the Core:
// both methods are invoked while the Core lock is held.
type Emitter interface {
	// Send delivers event to a single connection.
	Send(conn ConnectionRef, event Outbound)
	// Broadcast delivers event to every open connection.
	Broadcast(event Outbound)
}

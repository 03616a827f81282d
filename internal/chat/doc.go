// Package chat implements the session, presence and broadcast core of the
// relay: the participant registry, the bounded history of chat events, and the
// join/send/disconnect operations that keep every connected client's view
// consistent.
//
// A Core serializes all three operations behind a single mutex that also
// guards its Registry and History. Each operation mutates state and hands all
// of its outbound events to the Emitter before the lock is released, so no
// caller ever observes a partially applied join or leave. Emitters must
// therefore be non-blocking and must never call back into the Core.
package chat

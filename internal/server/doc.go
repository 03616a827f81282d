// Package server implements the websocket gateway of the relay: it accepts
// connections, decodes inbound join/sendMessage frames for the chat core, and
// delivers the core's outbound events back to clients.
//
// The implementation is organized into specialized files for configuration, hub
// management, clients, the wire protocol, routing, and HTTP handlers.
package server

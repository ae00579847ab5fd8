package domain

// RoomID is the external conference identifier supplied by the client.
// Opaque here; the persistence layer parses it when recording auto-joins.
type RoomID string

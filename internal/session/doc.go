// Package session runs one connected client.
//
// A Session moves through Connecting, Active, Closing and Closed. While
// Active it subscribes to the device and schedule hubs and runs a receive
// loop that hands every decoded request to its own handler goroutine, so a
// slow external command never blocks the next request or pushed updates.
//
// Fetch requests are answered to the requester only. Mutations get no direct
// success reply: the hub broadcast that follows reaches every session,
// including the one that asked. Failures are answered with one error message
// to the requester.
//
// The number of concurrent handlers per session is bounded; when all slots
// are taken the receive loop stops reading until one frees up.
package session

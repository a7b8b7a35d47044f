// Package notify fans change notifications out to subscribers.
//
// A Hub is bound to one Source that builds the current state as a message.
// Notify asks the source once and pushes that message to every subscriber
// in subscription order. The process runs two hubs: one for the device
// listing and one for the schedule.
//
// A hub does not own its subscribers. Sessions subscribe when they become
// active and unsubscribe when they close.
package notify

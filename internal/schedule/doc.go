// Package schedule stores the events that switch devices at set times.
//
// The package owns persistence and the schedule change notification only.
// Executing events is left to whatever consumes the schedule.
//
// Events live in the scheduled_events table created by the embedded
// migrations. Every successful InsertEvent notifies the schedule hub so
// connected clients receive the full, updated schedule.
package schedule

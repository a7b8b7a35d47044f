// Package protocol defines the typed messages exchanged with clients.
//
// Every frame is one JSON object with a kind tag and a kind-specific payload:
//
//	{"kind":"set_device_status","id":"7","payload":{"device_id":2}}
//
// Requests (client to server):
//
//	fetch_devices        no payload
//	fetch_schedule       no payload
//	set_device_status    {"device_id": 2}
//	add_device           {"name": "...", "model": "...", "protocol": "..."}
//	add_scheduled_event  {"device_id": 2, "action": "on", "at": "...", "repeat": "daily"}
//
// Responses and notifications (server to client):
//
//	device_list          {"devices": [...]}
//	schedule             {"events": [...]}
//	error                {"code": "not_found", "message": "...", "request_kind": "..."}
//
// The optional id is echoed on direct replies so clients can correlate them.
// Broadcast notifications carry no id.
package protocol

// Package device provides the Device Registry for tellhub.
//
// The registry owns the in-memory snapshot of the radio devices that
// telldusd knows about. The snapshot is never edited in place: every
// refresh runs "tdtool --list-devices", parses the output and replaces the
// whole slice.
//
// # Identity
//
// Device ids are the 1-based ids telldusd assigns in registration order.
// Lookup is positional (the device with id k sits at index k-1), which holds
// because tellhub only ever appends devices and never removes them.
//
// # Operations
//
//   - Refresh: re-run the listing and install a new snapshot
//   - SetStatus: refresh, then switch the device to the inverse of its status
//   - RegisterDevice: refresh, append a device block to tellstick.conf,
//     restart telldusd and send the learn command for the new id
//
// Every external command sequence, and the snapshot swap at its end, runs
// under one mutex, so two concurrent toggles cannot interleave their
// refresh and switch steps. Reads of the snapshot take a read lock only.
//
// After a sequence that issued a mutating command the registry calls its
// Notifier, even when the command failed, so subscribers resynchronise to
// the real listing. The notification runs after the sequence lock is
// released because the device hub refreshes through this registry.
//
// # Usage
//
//	reg := device.NewRegistry(runner, device.Config{
//	    TDTool:         "tdtool",
//	    ConfigFile:     "/etc/tellstick.conf",
//	    RestartCommand: "sudo service telldusd restart",
//	    House:          "A",
//	})
//	reg.SetNotifier(deviceHub)
//
//	if err := reg.SetStatus(ctx, 2); errors.Is(err, device.ErrDeviceNotFound) {
//	    // no such device, nothing was switched
//	}
package device

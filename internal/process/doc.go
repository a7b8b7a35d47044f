// Package process runs the external commands that drive the TellStick.
//
// Everything tellhub does to real hardware goes through a Runner: listing
// devices with tdtool, switching them, restarting telldusd and appending new
// device blocks to the telldusd configuration file.
//
// ShellRunner executes each command with "sh -c" under a timeout, in its own
// process group so a hung tdtool and any children are killed together.
// Standard output is returned; standard error is only logged.
//
// Example usage:
//
//	runner := process.NewShellRunner(10 * time.Second)
//	out, err := runner.Run(ctx, "tdtool --list-devices")
//	if errors.Is(err, process.ErrCommandFailed) {
//	    // output is unusable
//	}
package process

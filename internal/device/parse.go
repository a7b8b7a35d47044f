package device

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// minRecordLength is the shortest text that can still hold a record.
	// Parsing stops once less than this remains.
	minRecordLength = len("id=0\tname=")

	statusOn = "ON"

	recordTypeDevice = "device"
)

// ParseListing parses "tdtool --list-devices" output.
//
// Each device is one line of tab-separated key=value fields, in the order
// tdtool prints them:
//
//	type=device	id=1	name=Lamp	protocol=arctech	model=selflearning-switch	lastsentcommand=ON
//
// Lines without any key=value field (such as a "Number of devices" banner)
// and records whose type is not "device" (sensors) are skipped. A device
// record without an id or name, or with an id that is not a positive
// integer, fails the whole parse with ErrParse. So does a device whose id
// is not its 1-based position in the listing; callers address devices by
// position.
func ParseListing(output string) ([]Device, error) {
	devices := []Device{}

	rest := output
	lineNo := 0
	for len(rest) >= minRecordLength {
		line, tail, _ := strings.Cut(rest, "\n")
		rest = tail
		lineNo++

		fields := splitFields(line)
		if len(fields) == 0 {
			continue
		}
		if t, ok := fields["type"]; ok && t != recordTypeDevice {
			continue
		}

		d, err := deviceFromFields(fields)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %w", ErrParse, lineNo, err)
		}
		if want := len(devices) + 1; d.ID != want {
			return nil, fmt.Errorf("%w: line %d: id %d at position %d", ErrParse, lineNo, d.ID, want)
		}
		devices = append(devices, d)
	}

	return devices, nil
}

// splitFields returns the key=value pairs of one listing line.
// Tokens without "=" are ignored.
func splitFields(line string) map[string]string {
	fields := make(map[string]string)
	for _, token := range strings.Split(strings.TrimRight(line, "\r"), "\t") {
		key, value, ok := strings.Cut(token, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}
	return fields
}

func deviceFromFields(fields map[string]string) (Device, error) {
	rawID, ok := fields["id"]
	if !ok {
		return Device{}, fmt.Errorf("missing id field")
	}
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 1 {
		return Device{}, fmt.Errorf("invalid id %q", rawID)
	}

	name, ok := fields["name"]
	if !ok {
		return Device{}, fmt.Errorf("device %d: missing name field", id)
	}

	return Device{
		ID:       id,
		Name:     name,
		Status:   fields["lastsentcommand"] == statusOn,
		Model:    fields["model"],
		Protocol: fields["protocol"],
	}, nil
}

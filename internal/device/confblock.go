package device

import (
	"fmt"
	"strings"
)

// ConfigBlock renders the tellstick.conf entry for a new device.
// The unit parameter is the device id.
//
//	device {
//	  id = 3
//	  name = "Porch"
//	  protocol = "arctech"
//	  model = "selflearning-switch"
//	  parameters {
//	    house = "A"
//	    unit = "3"
//	  }
//	}
func ConfigBlock(id int, house string, c Candidate) string {
	var b strings.Builder
	b.WriteString("\ndevice {\n")
	fmt.Fprintf(&b, "  id = %d\n", id)
	fmt.Fprintf(&b, "  name = %q\n", c.Name)
	fmt.Fprintf(&b, "  protocol = %q\n", c.Protocol)
	fmt.Fprintf(&b, "  model = %q\n", c.Model)
	b.WriteString("  parameters {\n")
	fmt.Fprintf(&b, "    house = %q\n", house)
	fmt.Fprintf(&b, "    unit = \"%d\"\n", id)
	b.WriteString("  }\n")
	b.WriteString("}\n")
	return b.String()
}

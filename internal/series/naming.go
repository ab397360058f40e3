package series

import "strings"

// SensorIDFromDir derives the sensor identifier from a sensor directory
// name under the given scheme.
//
// The "mac" scheme matches the device's export layout, where directories
// are named with a two-character prefix followed by the MAC address with
// separators stripped: the prefix is dropped and the remainder is re-joined
// into colon-separated pairs ("LS4A1C22F09A" becomes "4A:1C:22:F0:9A").
// The "dir" scheme uses the directory name verbatim.
func SensorIDFromDir(name, scheme string) string {
	if scheme == "dir" {
		return name
	}

	s := name
	if len(s) > 2 {
		s = s[2:]
	}
	pairs := make([]string, 0, (len(s)+1)/2)
	for i := 0; i < len(s); i += 2 {
		end := i + 2
		if end > len(s) {
			end = len(s)
		}
		pairs = append(pairs, s[i:end])
	}
	return strings.Join(pairs, ":")
}

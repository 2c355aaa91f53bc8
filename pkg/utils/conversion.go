package utils

import "strconv"

// ParseID reads a positive database id from a path or query parameter. Only
// plain decimal digits are accepted, without sign or leading zeros.
func ParseID(raw string) (uint64, bool) {
	if raw == "" || raw[0] == '0' {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

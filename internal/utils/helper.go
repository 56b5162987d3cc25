package utils

import (
	"slices"
	"strconv"

	"github.com/google/uuid"
)

func ParseUUID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}

func Contains(slice []string, item string) bool {
	return slices.Contains(slice, item)
}

// Clamp parses s as an int and bounds it to [min, max], using def when s is
// empty or malformed.
func Clamp(s string, def, minV, maxV int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		n = def
	}
	if n < minV {
		return minV
	}
	if n > maxV {
		return maxV
	}
	return n
}

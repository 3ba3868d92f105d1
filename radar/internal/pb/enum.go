package pb

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
)

// UnknownEnumError occurs when a name is not part of a closed enum.
type UnknownEnumError struct {
	Enum  string
	Value string

	valid []string
}

func (err *UnknownEnumError) Error() string {
	return fmt.Sprintf("pb: unknown %s value %q (valid: %s)", err.Enum, err.Value, strings.Join(err.valid, ", "))
}

func parseEnum[E ~int32](enum string, values map[string]int32, s string) (E, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	if v, ok := values[name]; ok {
		return E(v), nil
	}
	// Numeric values are accepted when they are part of the enum.
	if n, err := strconv.ParseInt(name, 10, 32); err == nil {
		for _, v := range values {
			if int64(v) == n {
				return E(v), nil
			}
		}
	}
	return 0, &UnknownEnumError{Enum: enum, Value: s, valid: slices.Sorted(maps.Keys(values))}
}

func enumString(names map[int32]string, v int32) string {
	if name, ok := names[v]; ok {
		return name
	}
	return strconv.Itoa(int(v))
}

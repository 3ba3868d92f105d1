package pb

// RestrictionVisibility controls whether restricted (blocked) aircraft are returned.
type RestrictionVisibility int32

const (
	RestrictionVisibility_NOT_VISIBLE       RestrictionVisibility = 0
	RestrictionVisibility_PARTIALLY_FAA     RestrictionVisibility = 1
	RestrictionVisibility_PARTIALLY_VISIBLE RestrictionVisibility = 2
	RestrictionVisibility_FULLY_VISIBLE     RestrictionVisibility = 3
)

var (
	RestrictionVisibility_name = map[int32]string{
		0: "NOT_VISIBLE",
		1: "PARTIALLY_FAA",
		2: "PARTIALLY_VISIBLE",
		3: "FULLY_VISIBLE",
	}
	RestrictionVisibility_value = map[string]int32{
		"NOT_VISIBLE":       0,
		"PARTIALLY_FAA":     1,
		"PARTIALLY_VISIBLE": 2,
		"FULLY_VISIBLE":     3,
	}
)

func (r RestrictionVisibility) String() string {
	return enumString(RestrictionVisibility_name, int32(r))
}

// ParseRestrictionVisibility parses a name (case insensitive) or number.
func ParseRestrictionVisibility(s string) (RestrictionVisibility, error) {
	return parseEnum[RestrictionVisibility]("RestrictionVisibility", RestrictionVisibility_value, s)
}

package pb

import (
	"slices"
	"strings"
)

// Field names an optional live feed field selectable through FieldMask.
type Field string

const (
	FieldFlight   Field = "flight"
	FieldReg      Field = "reg"
	FieldRoute    Field = "route"
	FieldType     Field = "type"
	FieldSchedule Field = "schedule"
	FieldSquawk   Field = "squawk"
	FieldVSpeed   Field = "vspeed"
	FieldAirspace Field = "airspace"
	FieldLogoID   Field = "logo_id"
	FieldAge      Field = "age"
)

// Fields lists every selectable field in wire order.
var Fields = []Field{
	FieldFlight,
	FieldReg,
	FieldRoute,
	FieldType,
	FieldSchedule,
	FieldSquawk,
	FieldVSpeed,
	FieldAirspace,
	FieldLogoID,
	FieldAge,
}

func (f Field) String() string { return string(f) }

// ParseField parses a field name (case insensitive).
func ParseField(s string) (Field, error) {
	f := Field(strings.ToLower(strings.TrimSpace(s)))
	if slices.Contains(Fields, f) {
		return f, nil
	}
	valid := make([]string, len(Fields))
	for i, v := range Fields {
		valid[i] = string(v)
	}
	return "", &UnknownEnumError{Enum: "Field", Value: s, valid: valid}
}

// NewFieldMask returns a mask selecting fields in the order given.
func NewFieldMask(fields ...Field) *FieldMask {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return &FieldMask{FieldNames: names}
}

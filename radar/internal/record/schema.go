package record

import (
	"errors"
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
)

// ErrSchemaMismatch occurs when a table does not have the declared columns.
var ErrSchemaMismatch = errors.New("record: schema mismatch")

// A column binds one arrow field to one field of a row type.
type column[T any] struct {
	field  arrow.Field
	append func(b array.Builder, row *T)
	read   func(a arrow.Array, i int, row *T)
}

// Schema is the fixed column layout of one record kind. The same columns
// drive both table construction and decoding, so a row survives a round
// trip through any storage format that preserves the arrow types.
type Schema[T any] struct {
	name    string
	schema  *arrow.Schema
	columns []column[T]
}

func newSchema[T any](name string, columns ...[]column[T]) *Schema[T] {
	s := &Schema[T]{name: name}
	for _, cols := range columns {
		s.columns = append(s.columns, cols...)
	}
	fields := make([]arrow.Field, len(s.columns))
	for i, c := range s.columns {
		fields[i] = c.field
	}
	s.schema = arrow.NewSchema(fields, nil)
	return s
}

// Name of the record kind.
func (s *Schema[T]) Name() string { return s.name }

// Arrow returns the arrow schema.
func (s *Schema[T]) Arrow() *arrow.Schema { return s.schema }

// Columns returns the column names in order.
func (s *Schema[T]) Columns() []string {
	names := make([]string, len(s.columns))
	for i, c := range s.columns {
		names[i] = c.field.Name
	}
	return names
}

// NewRecord builds a record batch from rows. The caller must Release it.
func (s *Schema[T]) NewRecord(mem memory.Allocator, rows []T) arrow.Record {
	if mem == nil {
		mem = memory.DefaultAllocator
	}
	b := array.NewRecordBuilder(mem, s.schema)
	defer b.Release()

	for i := range rows {
		for j, c := range s.columns {
			c.append(b.Field(j), &rows[i])
		}
	}
	return b.NewRecord()
}

// Check reports whether sc carries the declared columns in order with equal
// types. Field nullability and metadata are not compared.
func (s *Schema[T]) Check(sc *arrow.Schema) error {
	if sc.NumFields() != len(s.columns) {
		return fmt.Errorf("%w: %s has %d columns, got %d", ErrSchemaMismatch, s.name, len(s.columns), sc.NumFields())
	}
	for i, c := range s.columns {
		f := sc.Field(i)
		if f.Name != c.field.Name {
			return fmt.Errorf("%w: %s column %d is %q, got %q", ErrSchemaMismatch, s.name, i, c.field.Name, f.Name)
		}
		if !arrow.TypeEqual(f.Type, c.field.Type) {
			return fmt.Errorf("%w: %s column %q is %s, got %s", ErrSchemaMismatch, s.name, f.Name, c.field.Type, f.Type)
		}
	}
	return nil
}

// Rows decodes a record batch into typed rows.
func (s *Schema[T]) Rows(rec arrow.Record) ([]T, error) {
	if err := s.Check(rec.Schema()); err != nil {
		return nil, err
	}
	for j := range s.columns {
		if rec.Column(j).NullN() > 0 {
			return nil, fmt.Errorf("%w: %s column %q has nulls", ErrSchemaMismatch, s.name, s.columns[j].field.Name)
		}
	}
	rows := make([]T, rec.NumRows())
	for j, c := range s.columns {
		col := rec.Column(j)
		for i := range rows {
			c.read(col, i, &rows[i])
		}
	}
	return rows, nil
}

func scalar[T, V any, B interface{ Append(V) }, A interface{ Value(int) V }](name string, typ arrow.DataType, get func(*T) *V) column[T] {
	return column[T]{
		field:  arrow.Field{Name: name, Type: typ},
		append: func(b array.Builder, row *T) { b.(B).Append(*get(row)) },
		read:   func(a arrow.Array, i int, row *T) { *get(row) = a.(A).Value(i) },
	}
}

func u8[T any](name string, get func(*T) *uint8) column[T] {
	return scalar[T, uint8, *array.Uint8Builder, *array.Uint8](name, arrow.PrimitiveTypes.Uint8, get)
}

func u16[T any](name string, get func(*T) *uint16) column[T] {
	return scalar[T, uint16, *array.Uint16Builder, *array.Uint16](name, arrow.PrimitiveTypes.Uint16, get)
}

func u32[T any](name string, get func(*T) *uint32) column[T] {
	return scalar[T, uint32, *array.Uint32Builder, *array.Uint32](name, arrow.PrimitiveTypes.Uint32, get)
}

func u64[T any](name string, get func(*T) *uint64) column[T] {
	return scalar[T, uint64, *array.Uint64Builder, *array.Uint64](name, arrow.PrimitiveTypes.Uint64, get)
}

func i16[T any](name string, get func(*T) *int16) column[T] {
	return scalar[T, int16, *array.Int16Builder, *array.Int16](name, arrow.PrimitiveTypes.Int16, get)
}

func i32[T any](name string, get func(*T) *int32) column[T] {
	return scalar[T, int32, *array.Int32Builder, *array.Int32](name, arrow.PrimitiveTypes.Int32, get)
}

func i64[T any](name string, get func(*T) *int64) column[T] {
	return scalar[T, int64, *array.Int64Builder, *array.Int64](name, arrow.PrimitiveTypes.Int64, get)
}

func f32[T any](name string, get func(*T) *float32) column[T] {
	return scalar[T, float32, *array.Float32Builder, *array.Float32](name, arrow.PrimitiveTypes.Float32, get)
}

func str[T any](name string, get func(*T) *string) column[T] {
	return scalar[T, string, *array.StringBuilder, *array.String](name, arrow.BinaryTypes.String, get)
}

func boolean[T any](name string, get func(*T) *bool) column[T] {
	return scalar[T, bool, *array.BooleanBuilder, *array.Boolean](name, arrow.FixedWidthTypes.Boolean, get)
}

// list stores a slice of E as list<struct>. Decoded lists are never nil.
func list[T, E any](name string, get func(*T) *[]E, elems ...column[E]) column[T] {
	fields := make([]arrow.Field, len(elems))
	for i, c := range elems {
		fields[i] = c.field
	}
	return column[T]{
		field: arrow.Field{Name: name, Type: arrow.ListOf(arrow.StructOf(fields...))},
		append: func(b array.Builder, row *T) {
			lb := b.(*array.ListBuilder)
			sb := lb.ValueBuilder().(*array.StructBuilder)
			lb.Append(true)
			values := *get(row)
			for i := range values {
				sb.Append(true)
				for j, c := range elems {
					c.append(sb.FieldBuilder(j), &values[i])
				}
			}
		},
		read: func(a arrow.Array, i int, row *T) {
			la := a.(*array.List)
			st := la.ListValues().(*array.Struct)
			start, end := la.ValueOffsets(i)
			values := make([]E, end-start)
			for k := range values {
				for j, c := range elems {
					c.read(st.Field(j), int(start)+k, &values[k])
				}
			}
			*get(row) = values
		},
	}
}

// embed lifts the columns of an embedded row type into its parent.
func embed[T, E any](get func(*T) *E, columns []column[E]) []column[T] {
	lifted := make([]column[T], len(columns))
	for i, c := range columns {
		lifted[i] = column[T]{
			field:  c.field,
			append: func(b array.Builder, row *T) { c.append(b, get(row)) },
			read:   func(a arrow.Array, i int, row *T) { c.read(a, i, get(row)) },
		}
	}
	return lifted
}

package log

import (
	"strconv"
)

type FieldType uint8

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeHex8
	FieldTypeHex16
	FieldTypeHex20
	FieldTypeBits8
	FieldTypeInt
	FieldTypeUint
	FieldTypeError
	FieldTypeStringer
)

// ZField is a single typed log field. Only the member matching Type is set.
type ZField struct {
	Type FieldType
	Key  string

	String    string
	Integer   uint64
	Error     error
	Interface interface{ String() string }
	Boolean   bool
}

// hex digits per field type.
var hexWidth = [...]int{
	FieldTypeHex8:  2,
	FieldTypeHex16: 4,
	FieldTypeHex20: 5,
}

const hexdigits = "0123456789abcdef"

// AppendValue appends the text form of the field value to dst. Hex fields
// are zero padded to the width of the bus they come from, bit fields are
// printed msb first.
func (f *ZField) AppendValue(dst []byte) []byte {
	switch f.Type {
	case FieldTypeBool:
		return strconv.AppendBool(dst, f.Boolean)
	case FieldTypeString:
		return append(dst, f.String...)
	case FieldTypeUint:
		return strconv.AppendUint(dst, f.Integer, 10)
	case FieldTypeInt:
		return strconv.AppendInt(dst, int64(f.Integer), 10)
	case FieldTypeHex8, FieldTypeHex16, FieldTypeHex20:
		for i := hexWidth[f.Type] - 1; i >= 0; i-- {
			dst = append(dst, hexdigits[(f.Integer>>(4*i))&0xf])
		}
		return dst
	case FieldTypeBits8:
		for i := 7; i >= 0; i-- {
			dst = append(dst, '0'+byte(f.Integer>>i)&1)
		}
		return dst
	case FieldTypeError:
		if f.Error == nil {
			return append(dst, "<nil>"...)
		}
		return append(dst, f.Error.Error()...)
	case FieldTypeStringer:
		return append(dst, f.Interface.String()...)
	}
	return dst
}

func (f *ZField) Value() string {
	var buf [24]byte
	return string(f.AppendValue(buf[:0]))
}

package log

import (
	"fmt"
	"strconv"
	"time"
)

// Field is a key/value pair attached to a log line
type Field interface {
	KV() (string, string)
}

type field struct {
	k, v string
}

func (f field) KV() (string, string) {
	return f.k, f.v
}

// String builds a string field
func String(k, v string) Field {
	return field{k: k, v: v}
}

// Int builds an int field
func Int(k string, v int) Field {
	return field{k: k, v: strconv.Itoa(v)}
}

// Uint builds an unsigned int field
func Uint(k string, v uint) Field {
	return field{k: k, v: strconv.FormatUint(uint64(v), 10)}
}

// Bool builds a boolean field
func Bool(k string, v bool) Field {
	return field{k: k, v: strconv.FormatBool(v)}
}

// Duration builds a duration field
func Duration(k string, v time.Duration) Field {
	return field{k: k, v: v.String()}
}

// Error builds a field named "err"
func Error(err error) Field {
	if err == nil {
		return field{k: "err", v: "<nil>"}
	}
	return field{k: "err", v: err.Error()}
}

// Type builds a field containing the Go type of v
func Type(k string, v interface{}) Field {
	return field{k: k, v: fmt.Sprintf("%T", v)}
}

// Object builds a field from an arbitrary value
func Object(k string, v interface{}) Field {
	return field{k: k, v: fmt.Sprintf("%+v", v)}
}

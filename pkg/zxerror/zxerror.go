// This file is part of unreal-ng.
//
// unreal-ng is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// unreal-ng is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with unreal-ng.  If not, see <https://www.gnu.org/licenses/>.

// Package zxerror provides the engine's curated error type: a message
// template plus a list of values, so callers can match on the leading part
// of an error message (Is, Has) without parsing formatted strings, and so
// nested curated errors don't repeat their own head when wrapped.
package zxerror

import (
	"fmt"
	"strings"
)

// Values is the type used to specify arguments for a curated error.
type Values []interface{}

// curated is the concrete error implementation. It is never exported;
// callers interact with it only through Errorf and the package functions.
type curated struct {
	message string
	values  Values
}

// Errorf creates a new curated error from a message template and values,
// exactly like fmt.Errorf but tagged so Is/Has/Head can inspect it later.
func Errorf(message string, values ...interface{}) error {
	return curated{message: message, values: values}
}

// Error implements the error interface. When the first two ": "-separated
// parts of the message are equal (which happens when a curated error wraps
// another curated error with the same head), the first is dropped, so
// "rom: rom: file not found" reads as "rom: file not found". Later repeats
// are left as they are.
func (e curated) Error() string {
	s := fmt.Errorf(e.message, e.values...).Error()

	p := strings.SplitN(s, ": ", 3)
	if len(p) > 1 && p[0] == p[1] {
		return strings.Join(p[1:], ": ")
	}
	return strings.Join(p, ": ")
}

// Head returns the leading message template of a curated error, or the
// plain Error() string if err is not curated.
func Head(err error) string {
	if e, ok := err.(curated); ok {
		return e.message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

// IsAny reports whether err is a curated error.
func IsAny(err error) bool {
	if err == nil {
		return false
	}
	_, ok := err.(curated)
	return ok
}

// Is reports whether err is a curated error whose head matches message.
func Is(err error, message string) bool {
	if err == nil {
		return false
	}
	if e, ok := err.(curated); ok {
		return e.message == message
	}
	return false
}

// Has reports whether message appears as the head of err or of any curated
// error nested in its values.
func Has(err error, message string) bool {
	if err == nil {
		return false
	}
	if !IsAny(err) {
		return false
	}
	if Is(err, message) {
		return true
	}
	for _, v := range err.(curated).values {
		if nested, ok := v.(curated); ok {
			if Has(nested, message) {
				return true
			}
		}
	}
	return false
}

// Package config provides configuration loading and parsing for dbgen.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Environment values always arrive as strings; file values keep the type the
// decoder gave them. Blank strings read as the zero value.

func asString(value interface{}) (string, error) {
	return cast.ToStringE(value)
}

func asFloat64(value interface{}) (float64, error) {
	if blank(value) {
		return 0, nil
	}
	return cast.ToFloat64E(trimmed(value))
}

func asBool(value interface{}) (bool, error) {
	if blank(value) {
		return false, nil
	}
	return cast.ToBoolE(trimmed(value))
}

// asDuration accepts Go duration strings such as "3s". Bare numbers, quoted
// or not, count seconds.
func asDuration(value interface{}) (time.Duration, error) {
	if blank(value) {
		return 0, nil
	}
	if d, ok := value.(time.Duration); ok {
		return d, nil
	}
	if secs, err := cast.ToFloat64E(trimmed(value)); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	s, ok := value.(string)
	if !ok {
		return 0, fmt.Errorf("unsupported duration type %T", value)
	}
	return time.ParseDuration(strings.TrimSpace(s))
}

// asStringMap reads a table of header names to values.
func asStringMap(value interface{}) (map[string]string, error) {
	if value == nil {
		return nil, nil
	}
	m, err := cast.ToStringMapStringE(value)
	if err != nil {
		return nil, err
	}
	for k := range m {
		if strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("key cannot be empty")
		}
	}
	return m, nil
}

func blank(value interface{}) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && strings.TrimSpace(s) == ""
}

func trimmed(value interface{}) interface{} {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s)
	}
	return value
}

package log

import (
	"fmt"
	"strings"
)

// Format is a logging format. It implements the pflag.Value interface.
type Format uint

const (
	// FmtLogfmt is the "logfmt" logging format.
	FmtLogfmt Format = iota
	// FmtJSON is the JSON logging format.
	FmtJSON
)

var formatNames = map[Format]string{
	FmtLogfmt: "logfmt",
	FmtJSON:   "JSON",
}

// String returns the string representation of a Format.
func (f *Format) String() string {
	name, ok := formatNames[*f]
	if !ok {
		panic("logging: unsupported format")
	}
	return name
}

// Set sets the Format to the value specified by the provided string.
func (f *Format) Set(s string) error {
	for format, name := range formatNames {
		if strings.EqualFold(name, s) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("logging: invalid log format: '%s'", s)
}

// Type returns the list of supported Formats.
func (f *Format) Type() string {
	return "[logfmt,JSON]"
}

// UnmarshalText lets a Format be used directly as a config value.
func (f *Format) UnmarshalText(text []byte) error {
	return f.Set(string(text))
}

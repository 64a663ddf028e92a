package mkbootimg

import (
	"fmt"
)

// ConfigError reports an invalid or missing build input. It is raised before
// any file is read or written.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// LoadError indicates that an input file could not be opened, sized or read.
type LoadError struct {
	Section string
	Path    string
	Err     error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load %s '%s': %v", e.Section, e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// VendorBlockError indicates that an MTK header block could not be built.
type VendorBlockError struct {
	Kind string
	Err  error
}

func (e *VendorBlockError) Error() string {
	return fmt.Sprintf("can't init mtk %s block: %v", e.Kind, e.Err)
}

func (e *VendorBlockError) Unwrap() error {
	return e.Err
}

// WriteError indicates that the output image could not be written. The
// partial output has already been removed when this is returned.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("failed writing '%s': %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// FormatError indicates that an existing image could not be parsed.
type FormatError struct {
	Message string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("bad boot image: %s", e.Message)
}

func configErr(field, format string, args ...any) error {
	return &ConfigError{Field: field, Message: fmt.Sprintf(format, args...)}
}

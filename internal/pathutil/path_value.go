package pathutil

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
)

// PathValueType constrains what kind of filesystem entry a PathValue
// will accept.
type PathValueType int

const (
	// PathValueTypeFile requires the path to resolve to a regular file.
	PathValueTypeFile PathValueType = iota
	// PathValueTypeDir requires the path to resolve to a directory.
	PathValueTypeDir
	// PathValueTypeAny accepts either.
	PathValueTypeAny
)

var (
	// ErrIsDirectory means a file-only path resolved to a directory.
	ErrIsDirectory = errors.New("path is a directory")
	// ErrIsNotDirectory means a directory-only path resolved to a file.
	ErrIsNotDirectory = errors.New("path is not a directory")
	// ErrUnknownType means a PathValueType has no case in Set.
	ErrUnknownType = errors.New("type unknown")
)

// PathValue is a pflag.Value that validates itself against the
// filesystem as soon as it's set.
type PathValue struct {
	defaultValue  string
	userValue     string
	typ           PathValueType
	pathMustExist bool
	valueSet      bool
}

// NewDirPathFlagWithDefault builds a PathValue requiring a directory.
func NewDirPathFlagWithDefault(defaultPath string) pflag.Value {
	return &PathValue{pathMustExist: true, typ: PathValueTypeDir, defaultValue: defaultPath}
}

// NewFilePathFlagWithDefault builds a PathValue requiring a regular file.
func NewFilePathFlagWithDefault(defaultPath string) pflag.Value {
	return &PathValue{pathMustExist: true, typ: PathValueTypeFile, defaultValue: defaultPath}
}

// NewPathFlagWithDefault builds a PathValue accepting either a file or
// a directory.
func NewPathFlagWithDefault(defaultPath string) pflag.Value {
	return &PathValue{pathMustExist: true, typ: PathValueTypeAny, defaultValue: defaultPath}
}

var _ pflag.Value = (*PathValue)(nil)

// String returns the flag's value
func (v *PathValue) String() string {
	if v.valueSet {
		return v.userValue
	}
	return v.defaultValue
}

// Set sets the flag's value.
// When called multiple times:
// - If the value is a relative path it will be append to the previous value
// - If the value is an absolute path: it will overwrite the previous value
func (v *PathValue) Set(value string) (err error) {
	if value == "" {
		return nil
	}

	if !filepath.IsAbs(value) {
		value = filepath.Join(v.userValue, value)
	}
	value, err = filepath.Abs(value)
	if err != nil {
		return fmt.Errorf("could not find absolute path: %w", err)
	}

	info, err := os.Stat(value)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not check path %s: %w", value, err)
	}

	if v.pathMustExist && errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("invalid path %s: %w", value, os.ErrNotExist)
	}

	if info != nil {
		switch v.typ {
		case PathValueTypeFile:
			if info.IsDir() {
				return fmt.Errorf("invalid path %s: %w", value, ErrIsDirectory)
			}
		case PathValueTypeDir:
			if !info.IsDir() {
				return fmt.Errorf("invalid path %s: %w", value, ErrIsNotDirectory)
			}
		case PathValueTypeAny:
		default:
			return fmt.Errorf("type %d: %w", v.typ, ErrUnknownType)
		}
	}

	v.valueSet = true
	v.userValue = value
	return nil
}

// Type returns the unique type of the Value
func (v *PathValue) Type() string {
	return "path"
}

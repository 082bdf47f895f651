package testhelper

import "github.com/spf13/pflag"

// StringValue is a trivial pflag.Value for tests that need to stand in
// for pathutil.PathValue without touching the real filesystem.
type StringValue struct {
	Value string
}

// NewStringValue wraps v in a StringValue.
func NewStringValue(v string) pflag.Value {
	return &StringValue{Value: v}
}

var _ pflag.Value = (*StringValue)(nil)

func (v *StringValue) String() string { return v.Value }

func (v *StringValue) Set(value string) error {
	v.Value = value
	return nil
}

func (v *StringValue) Type() string { return "string" }

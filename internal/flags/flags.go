package flags

import (
	"flag"
	"strings"

	"go.uber.org/zap/zapcore"
)

// Strings returns a repeated string flag that accumulates values into a
// slice. Each occurrence may hold several comma separated values, so the flag
// works the same when set from an environment variable or a config file.
func Strings(fset *flag.FlagSet, name string, value []string, usage string) *[]string {
	sv := &stringsValue{strings: &value}
	fset.Var(sv, name, usage)
	return sv.strings
}

type stringsValue struct {
	strings *[]string
}

func (sv *stringsValue) String() string {
	if sv.strings == nil {
		return ""
	}
	return strings.Join(*sv.strings, ",")
}

func (sv *stringsValue) Get() interface{} { return *sv.strings }

func (sv *stringsValue) Set(value string) error {
	for _, v := range strings.Split(value, ",") {
		if v = strings.TrimSpace(v); v != "" {
			*sv.strings = append(*sv.strings, v)
		}
	}
	return nil
}

// Level returns a zap log level flag, like "debug" or "warn".
func Level(fset *flag.FlagSet, name string, value zapcore.Level, usage string) *zapcore.Level {
	lvl := value
	fset.Var(&lvl, name, usage)
	return &lvl
}

// Package debug holds switches for diagnostic output, read once from the
// environment.
//
//	CONFNODE_DEBUG_ATTACH     log nodes attached by writes through virtual nodes
//	CONFNODE_DEBUG_MERGE      log entries added by merges
//	CONFNODE_DEBUG_RESOLVE    log serializer resolution
//	CONFNODE_DEBUG_TRANSFORM  log nodes moved by transformations
package debug

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

type debug struct {
	Attach    bool
	Merge     bool
	Resolve   bool
	Transform bool
}

var d *debug

func init() {
	d = &debug{}
	d.Attach = boolEnv("CONFNODE_DEBUG_ATTACH")
	d.Merge = boolEnv("CONFNODE_DEBUG_MERGE")
	d.Resolve = boolEnv("CONFNODE_DEBUG_RESOLVE")
	d.Transform = boolEnv("CONFNODE_DEBUG_TRANSFORM")
}

func boolEnv(v string) bool {
	x := os.Getenv(v)
	if x == "" {
		return false
	}
	b, _ := strconv.ParseBool(x)
	return b
}

func Attach() bool {
	return d.Attach
}

func Merge() bool {
	return d.Merge
}

func Resolve() bool {
	return d.Resolve
}

func Transform() bool {
	return d.Transform
}

// Logf writes to stderr. Maps and slices are rendered as indented JSON.
func Logf(msg string, args ...any) {
	for i := range args {
		a := args[i]
		switch a.(type) {
		case map[string]any, []any:
			d, err := json.MarshalIndent(a, "   |", "  ")
			if err != nil {
				args[i] = fmt.Sprintf("%v", a)
				continue
			}
			args[i] = string(d)
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}

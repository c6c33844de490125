package prunekore

import (
	"os"
	"strings"
)

// Env holds the variables a build orchestrator exposes to its hooks, e.g.
// PROJECT_DIR, PIOENV or BUILD_DIR. A sub-environment created with [Env.Sub]
// shadows its parent without modifying it.
type Env struct {
	tags   map[string]string
	parent *Env
}

func DefaultEnv(tr *Trace) *Env {
	env := &Env{tags: make(map[string]string)}
	for _, evar := range os.Environ() {
		kv := strings.SplitN(evar, "=", 2)
		if len(kv) == 0 || kv[0] == "" {
			if tr != nil {
				tr.Warn("ignoring default `env`", `env`, evar)
			}
			continue
		}
		switch len(kv) {
		case 1:
			env.tags[kv[0]] = ""
		default:
			env.tags[kv[0]] = kv[1]
		}
	}
	return env
}

func (e *Env) Sub() *Env { return &Env{parent: e} }

func (e *Env) Tag(key string) (string, bool) {
	for e != nil {
		if v, ok := e.tags[key]; ok {
			return v, true
		}
		e = e.parent
	}
	return "", false
}

func (e *Env) SetTag(key, val string) {
	if e.tags == nil {
		e.tags = make(map[string]string)
	}
	e.tags[key] = val
}

// SetTags sets variables given as "key=value". A missing '=' sets key to the
// empty string.
func (e *Env) SetTags(env ...string) {
	for _, evar := range env {
		kv := strings.SplitN(evar, "=", 2)
		switch len(kv) {
		case 1:
			e.SetTag(kv[0], "")
		case 2:
			e.SetTag(kv[0], kv[1])
		}
	}
}

// Subst replaces $var and ${var} in s with the values of e. Undefined
// variables are replaced by the empty string.
func (e *Env) Subst(s string) string {
	return os.Expand(s, func(key string) string {
		v, _ := e.Tag(key)
		return v
	})
}

// Package policy compiles a WorkOrder's PolicyProfile into glob matchers
// and answers the three access-control questions the runtime asks before
// letting a backend act: can it use this tool, read this path, write
// this path. Deny always overrides allow; an allowlist that doesn't
// mention a name or pattern denies it.
package policy

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"

	"github.com/EffortlessMetrics/agent-backplane-sub000/workorder"
)

// Decision is the outcome of one access check. Allow decisions carry no
// reason; deny decisions always carry a human-readable one naming the
// target and, where relevant, the matching pattern.
type Decision struct {
	Allowed bool
	Reason  *string
}

func allow() Decision { return Decision{Allowed: true} }

func deny(format string, args ...any) Decision {
	reason := fmt.Sprintf(format, args...)
	return Decision{Allowed: false, Reason: &reason}
}

// globSet compiles a list of patterns and remembers each one's source
// text so a match can be reported back in a deny reason.
type globSet struct {
	patterns []string
	compiled []glob.Glob
}

func compileGlobSet(patterns []string, pathSeparated bool) (globSet, error) {
	var gs globSet
	for _, p := range patterns {
		sources := []string{p}
		if pathSeparated && strings.HasPrefix(p, "**/") {
			// A leading "**/" also matches zero directories, so "**/x"
			// covers a top-level "x" as well as "a/b/x".
			sources = append(sources, strings.TrimPrefix(p, "**/"))
		}
		for _, src := range sources {
			var (
				g   glob.Glob
				err error
			)
			if pathSeparated {
				g, err = glob.Compile(src, '/')
			} else {
				g, err = glob.Compile(src)
			}
			if err != nil {
				return globSet{}, fmt.Errorf("policy: invalid glob pattern %q: %w", p, err)
			}
			gs.patterns = append(gs.patterns, p)
			gs.compiled = append(gs.compiled, g)
		}
	}
	return gs, nil
}

// match reports whether target matches any pattern, and which one.
func (gs globSet) match(target string) (bool, string) {
	for i, g := range gs.compiled {
		if g.Match(target) {
			return true, gs.patterns[i]
		}
	}
	return false, ""
}

func (gs globSet) empty() bool { return len(gs.patterns) == 0 }

// Engine is a compiled PolicyProfile ready to answer access checks.
// Compilation happens once, at construction, so an invalid pattern fails
// loudly instead of being silently accepted or re-checked on every call.
type Engine struct {
	allowedTools  globSet
	deniedTools   globSet
	denyRead      globSet
	denyWrite     globSet
	allowNetwork  globSet
	denyNetwork   globSet
	requireApprov globSet
}

// NewEngine compiles p's glob patterns. It fails if any pattern is
// malformed, rather than accepting it and matching nothing.
func NewEngine(p workorder.PolicyProfile) (*Engine, error) {
	e := &Engine{}
	var err error
	if e.allowedTools, err = compileGlobSet(p.AllowedTools, false); err != nil {
		return nil, err
	}
	if e.deniedTools, err = compileGlobSet(p.DisallowedTools, false); err != nil {
		return nil, err
	}
	if e.denyRead, err = compileGlobSet(p.DenyRead, true); err != nil {
		return nil, err
	}
	if e.denyWrite, err = compileGlobSet(p.DenyWrite, true); err != nil {
		return nil, err
	}
	if e.allowNetwork, err = compileGlobSet(p.AllowNetwork, false); err != nil {
		return nil, err
	}
	if e.denyNetwork, err = compileGlobSet(p.DenyNetwork, false); err != nil {
		return nil, err
	}
	if e.requireApprov, err = compileGlobSet(p.RequireApprovalFor, false); err != nil {
		return nil, err
	}
	return e, nil
}

// CanUseTool decides whether a tool named name may be invoked.
func (e *Engine) CanUseTool(name string) Decision {
	if matched, pattern := e.deniedTools.match(name); matched {
		return deny("tool %q denied by pattern %q", name, pattern)
	}
	if !e.allowedTools.empty() {
		if matched, _ := e.allowedTools.match(name); !matched {
			return deny("tool %q not in allowlist", name)
		}
	}
	return allow()
}

// CanReadPath decides whether path may be read.
func (e *Engine) CanReadPath(path string) Decision {
	if matched, pattern := e.denyRead.match(path); matched {
		return deny("read of %q denied by pattern %q", path, pattern)
	}
	return allow()
}

// CanWritePath decides whether path may be written.
func (e *Engine) CanWritePath(path string) Decision {
	if matched, pattern := e.denyWrite.match(path); matched {
		return deny("write to %q denied by pattern %q", path, pattern)
	}
	return allow()
}

// CanConnect decides whether a network connection to host is permitted,
// using the same deny-overrides-allowlist semantics as CanUseTool.
func (e *Engine) CanConnect(host string) Decision {
	if matched, pattern := e.denyNetwork.match(host); matched {
		return deny("connection to %q denied by pattern %q", host, pattern)
	}
	if !e.allowNetwork.empty() {
		if matched, _ := e.allowNetwork.match(host); !matched {
			return deny("connection to %q not in allowlist", host)
		}
	}
	return allow()
}

// RequiresApproval reports whether action matches one of the profile's
// require_approval_for patterns.
func (e *Engine) RequiresApproval(action string) bool {
	matched, _ := e.requireApprov.match(action)
	return matched
}

// Package dialect implements the per-vendor lift/lower pair that moves a
// conversation between its native wire shape and the dialect-neutral IR
// (see package ir). Each vendor gets its own file: openai.go, claude.go,
// gemini.go, codex.go, kimi.go, copilot.go. Every lowerer preserves
// message order 1:1 when the target role has a counterpart; where it
// doesn't (Codex drops System/User on output, Copilot coalesces Tool into
// User) the drop is documented here and is stable — the same input always
// produces the same output.
//
// None of these lowerers perform vendor I/O: that is the job of the
// dialect-specific HTTP clients this specification explicitly keeps out
// of scope. A lifter/lowerer pair only ever touches in-memory values.
package dialect

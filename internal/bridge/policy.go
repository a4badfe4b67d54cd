package bridge

import "time"

// DefaultCommandTimeout applies to any command token with no entry in the
// policy table: an unrecognized command still gets a bounded wait rather
// than hanging the request indefinitely.
const DefaultCommandTimeout = 30 * time.Second

// CompletionPolicy describes how long to wait for a command's reply and,
// for commands whose "done" point is a later asynchronous event rather than
// the RPC reply itself, which event to wait for before the command is
// considered complete.
type CompletionPolicy struct {
	Timeout   time.Duration
	WaitEvent string // empty means the RPC response alone is completion
}

// defaultPolicies mirrors the editor's own asynchronous lifecycle: entering
// or leaving play mode, a script recompile, an asset import, and a test run
// all acknowledge the request immediately but only really finish when the
// corresponding event fires.
var defaultPolicies = map[string]CompletionPolicy{
	"play.enter":        {Timeout: 30 * time.Second, WaitEvent: "playModeChanged"},
	"play.exit":         {Timeout: 30 * time.Second, WaitEvent: "playModeChanged"},
	"compile.scripts":   {Timeout: 30 * time.Second, WaitEvent: "compilation.finished"},
	"asset.import":      {Timeout: 30 * time.Second, WaitEvent: "asset.importComplete"},
	"asset.reimportAll": {Timeout: 30 * time.Second, WaitEvent: "asset.reimportAllComplete"},
	"asset.refresh":     {Timeout: 60 * time.Second, WaitEvent: "refresh.complete"},
	"test.run":          {Timeout: 300 * time.Second, WaitEvent: "test.finished"},
}

// PolicyTable answers per-command completion policy lookups, built-in
// defaults overridden by any per-command timeouts configured at startup.
type PolicyTable struct {
	policies map[string]CompletionPolicy
}

// NewPolicyTable builds a table from the built-in defaults with any
// per-command timeout overrides applied; WaitEvent is never overridable
// from configuration, only Timeout.
func NewPolicyTable(timeoutOverrides map[string]time.Duration) *PolicyTable {
	t := &PolicyTable{policies: make(map[string]CompletionPolicy, len(defaultPolicies))}
	for cmd, p := range defaultPolicies {
		t.policies[cmd] = p
	}
	for cmd, d := range timeoutOverrides {
		p := t.policies[cmd]
		p.Timeout = d
		t.policies[cmd] = p
	}
	return t
}

// Lookup returns the policy for a command token, falling back to
// DefaultCommandTimeout with no event wait for unrecognized commands.
func (t *PolicyTable) Lookup(command string) CompletionPolicy {
	if p, ok := t.policies[command]; ok {
		return p
	}
	return CompletionPolicy{Timeout: DefaultCommandTimeout}
}

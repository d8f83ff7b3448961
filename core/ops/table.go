// Package ops binds control roles to concrete tokens and provides helpers
// over operation sequences shared by every OSM codec.
package ops

import (
	"fmt"
	"sort"
	"strings"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// Role is the meaning of a token inside an operation sequence.
type Role int

// Control roles. RoleTerminal covers everything that is not bound to a control role.
const (
	RoleTerminal Role = iota
	// RoleEOP ends the current source word (EOP, SRC_POP, SRC_POP1).
	RoleEOP
	// RoleGap splits the current hole (GAP, SET_MARKER).
	RoleGap
	// RoleJumpFwd moves the head one hole (or source position) forward.
	RoleJumpFwd
	// RoleJumpBwd moves the head one hole (or source position) backward.
	RoleJumpBwd
	// RolePop2 extends the current phrase by one source word (SRC_POP2).
	RolePop2
)

var roleNames = map[Role]string{
	RoleTerminal: "terminal",
	RoleEOP:      "eop",
	RoleGap:      "gap",
	RoleJumpFwd:  "jump_fwd",
	RoleJumpBwd:  "jump_bwd",
	RolePop2:     "src_pop2",
}

func (r Role) String() string {
	if name, ok := roleNames[r]; ok {
		return name
	}
	return fmt.Sprintf("role(%d)", int(r))
}

// IsControl reports whether r is one of the control roles.
func (r Role) IsControl() bool {
	return r != RoleTerminal
}

// ParseRole maps a role name as used in profiles ("eop", "gap", ...) to a Role.
func ParseRole(name string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for r, n := range roleNames {
		if r != RoleTerminal && n == key {
			return r, nil
		}
	}
	return RoleTerminal, codecerrors.NewValidation("role", fmt.Sprintf("unknown control role %q", name))
}

// ControlRoles lists the control roles in a stable order.
func ControlRoles() []Role {
	return []Role{RoleEOP, RoleGap, RoleJumpFwd, RoleJumpBwd, RolePop2}
}

// Default integer bindings.
const (
	DefaultEOP     = "4"
	DefaultGap     = "5"
	DefaultJumpFwd = "6"
	DefaultJumpBwd = "7"
	DefaultPop2    = "8"
)

// symbolic names accepted by every table, first entry is the canonical name
var symbolicNames = map[Role][]string{
	RoleEOP:     {"<EOP>", "<SRC_POP>", "<SRC_POP1>"},
	RoleGap:     {"<GAP>", "<SET_MARKER>"},
	RoleJumpFwd: {"<JUMP_FWD>", "<JMP_FWD>"},
	RoleJumpBwd: {"<JUMP_BWD>", "<JMP_BWD>"},
	RolePop2:    {"<SRC_POP2>"},
}

// Table is the lookup table between control roles and tokens.
// Each role has one canonical token used when emitting and any number of
// accepted aliases used when reading. A Table is immutable once built and
// safe for concurrent use.
type Table struct {
	emit  map[Role]string
	roles map[string]Role
}

// NewTable builds a table from per-role token lists. The first token of each
// list is the one emitted. Symbolic names are always accepted in addition.
// Binding the same token to two roles is an error.
func NewTable(bindings map[Role][]string) (*Table, error) {
	t := &Table{
		emit:  make(map[Role]string),
		roles: make(map[string]Role),
	}
	for _, role := range ControlRoles() {
		tokens := bindings[role]
		if len(tokens) == 0 {
			tokens = symbolicNames[role][:1]
		}
		for i, tok := range tokens {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				return nil, codecerrors.NewValidation("tokens."+role.String(), "empty token")
			}
			if prev, ok := t.roles[tok]; ok && prev != role {
				return nil, codecerrors.NewValidation("tokens."+role.String(),
					fmt.Sprintf("token %q already bound to %s", tok, prev))
			}
			t.roles[tok] = role
			if i == 0 {
				t.emit[role] = tok
			}
		}
	}
	for role, names := range symbolicNames {
		for _, name := range names {
			if prev, ok := t.roles[name]; ok && prev != role {
				return nil, codecerrors.NewValidation("tokens."+role.String(),
					fmt.Sprintf("symbolic name %q already bound to %s", name, prev))
			}
			t.roles[name] = role
		}
	}
	return t, nil
}

// DefaultTable returns the integer bindings EOP=4, GAP=5, JUMP_FWD=6,
// JUMP_BWD=7, SRC_POP2=8.
func DefaultTable() *Table {
	t, err := NewTable(map[Role][]string{
		RoleEOP:     {DefaultEOP},
		RoleGap:     {DefaultGap},
		RoleJumpFwd: {DefaultJumpFwd},
		RoleJumpBwd: {DefaultJumpBwd},
		RolePop2:    {DefaultPop2},
	})
	if err != nil {
		panic(fmt.Sprintf("ops: default table: %v", err))
	}
	return t
}

// SymbolicTable returns a table that emits bracketed names and still reads the
// default integer bindings.
func SymbolicTable() *Table {
	return DefaultTable().Symbolic()
}

// Symbolic returns a copy of t that emits the bracketed symbolic names.
func (t *Table) Symbolic() *Table {
	out := &Table{
		emit:  make(map[Role]string, len(t.emit)),
		roles: make(map[string]Role, len(t.roles)),
	}
	for tok, role := range t.roles {
		out.roles[tok] = role
	}
	for role := range t.emit {
		out.emit[role] = symbolicNames[role][0]
	}
	return out
}

// Role classifies tok.
func (t *Table) Role(tok string) Role {
	if r, ok := t.roles[tok]; ok {
		return r
	}
	return RoleTerminal
}

// Token returns the canonical token emitted for role.
func (t *Table) Token(role Role) string {
	return t.emit[role]
}

// Accepted returns every token bound to role, sorted.
func (t *Table) Accepted(role Role) []string {
	var out []string
	for tok, r := range t.roles {
		if r == role {
			out = append(out, tok)
		}
	}
	sort.Strings(out)
	return out
}

// Roles classifies every token of seq.
func (t *Table) Roles(seq []string) []Role {
	out := make([]Role, len(seq))
	for i, tok := range seq {
		out[i] = t.Role(tok)
	}
	return out
}

// Count returns how many tokens of seq have the given role.
func (t *Table) Count(seq []string, role Role) int {
	n := 0
	for _, tok := range seq {
		if t.Role(tok) == role {
			n++
		}
	}
	return n
}

// Terminals returns seq with all control tokens removed.
func (t *Table) Terminals(seq []string) []string {
	out := make([]string, 0, len(seq))
	for _, tok := range seq {
		if t.Role(tok) == RoleTerminal {
			out = append(out, tok)
		}
	}
	return out
}

// Canonical rewrites every control token of seq to the token t emits for its role.
// Sequences written with integer IDs and with symbolic names become identical.
func (t *Table) Canonical(seq []string) []string {
	out := make([]string, len(seq))
	for i, tok := range seq {
		if r := t.Role(tok); r.IsControl() {
			out[i] = t.Token(r)
		} else {
			out[i] = tok
		}
	}
	return out
}

// Fields splits a whitespace-separated line into tokens.
func Fields(line string) []string {
	return strings.Fields(line)
}

// Join renders a sequence as one whitespace-separated line.
func Join(seq []string) string {
	return strings.Join(seq, " ")
}

// Package osm2 implements the source-jump operation sequence codec.
//
// The target side is written strictly left to right, one terminal per target
// position. A single cursor moves over the source sentence with JUMP_FWD and
// JUMP_BWD; source words whose fertility is used up are closed and skipped by
// later jumps. When a word is closed depends on the EOP policy.
package osm2

import (
	"fmt"

	"github.com/FocuswithJustin/osmcodec/core/align"
	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
	"github.com/FocuswithJustin/osmcodec/core/ops"
	"github.com/FocuswithJustin/osmcodec/core/osm"
)

// Policy selects the meaning of EOP.
type Policy string

const (
	// PolicyClose emits EOP after the last terminal of a source word and closes it.
	PolicyClose Policy = "close"
	// PolicyOpen closes a source word with its last terminal unless EOP
	// directly precedes the terminal, which keeps the word open.
	PolicyOpen Policy = "open"
	// PolicyNo never emits EOP and never closes source words.
	PolicyNo Policy = "no"
)

// ParsePolicy parses a policy name.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(name); p {
	case PolicyClose, PolicyOpen, PolicyNo:
		return p, nil
	}
	return "", codecerrors.NewValidation("eop_policy", fmt.Sprintf("unknown EOP policy %q (want close, open or no)", name))
}

// Codec encodes and decodes source-jump sequences under one EOP policy.
type Codec struct {
	table  *ops.Table
	policy Policy
}

// New returns a codec. A nil table means ops.DefaultTable.
func New(table *ops.Table, policy Policy) (*Codec, error) {
	if table == nil {
		table = ops.DefaultTable()
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		return nil, err
	}
	return &Codec{table: table, policy: policy}, nil
}

// Policy returns the codec's EOP policy.
func (c *Codec) Policy() Policy {
	return c.policy
}

// Encode produces the operation sequence for target tokens trg aligned by a
// to a source sentence of srcLen words.
//
// Moving the cursor from head to a target source position emits one jump for
// every open position passed or reached on the way, so the decoder can replay
// each jump as "step to the next open position".
func (c *Codec) Encode(srcLen int, trg []string, a align.Normalized) ([]string, error) {
	if len(a) != len(trg) {
		return nil, codecerrors.NewAlignment(-1, "alignment covers %d target positions, sentence has %d", len(a), len(trg))
	}
	remaining, err := a.Fertility(srcLen)
	if err != nil {
		return nil, err
	}

	closed := make([]bool, srcLen)
	out := make([]string, 0, 2*len(trg))
	head := 0
	for t, s := range a {
		role, step := ops.RoleJumpFwd, 1
		if s < head {
			role, step = ops.RoleJumpBwd, -1
		}
		for head != s {
			head += step
			if !closed[head] {
				out = append(out, c.table.Token(role))
			}
		}

		if c.policy == PolicyOpen && remaining[s] > 1 {
			out = append(out, c.table.Token(ops.RoleEOP))
		}
		remaining[s]--
		out = append(out, trg[t])
		if remaining[s] == 0 {
			if c.policy == PolicyClose {
				out = append(out, c.table.Token(ops.RoleEOP))
			}
			if c.policy != PolicyNo {
				closed[s] = true
			}
		}
	}
	return out, nil
}

// Result is a decoded source-jump sequence.
type Result struct {
	Tokens    []string
	Alignment align.Normalized
	// Fertility counts terminals per source position.
	Fertility []int
}

// decodeState is the cursor bookkeeping replayed by Decode.
type decodeState struct {
	srcLen  int
	head    int
	closed  map[int]bool
	lastEOP int
}

func (st *decodeState) jump(step, op int, tok string) error {
	pos := st.head + step
	for pos >= 0 && (st.srcLen == 0 || pos < st.srcLen) && st.closed[pos] {
		pos += step
	}
	if pos < 0 || (st.srcLen > 0 && pos >= st.srcLen) {
		return &codecerrors.JumpError{Op: op, Token: tok, Head: st.head, Boundary: st.srcLen}
	}
	st.head = pos
	return nil
}

// Decode replays seq. srcLen bounds forward jumps; zero leaves the source
// side unbounded to the right.
func (c *Codec) Decode(seq []string, srcLen int) (*Result, error) {
	st := &decodeState{srcLen: srcLen, closed: make(map[int]bool), lastEOP: -2}
	res := &Result{}
	for i, tok := range seq {
		role := c.table.Role(tok)
		if c.policy == PolicyOpen && st.lastEOP == i-1 && role != ops.RoleTerminal {
			return nil, codecerrors.NewSequence(i, tok, "EOP must be followed by a terminal")
		}
		switch role {
		case ops.RoleJumpFwd:
			if err := st.jump(1, i, tok); err != nil {
				return nil, err
			}
		case ops.RoleJumpBwd:
			if err := st.jump(-1, i, tok); err != nil {
				return nil, err
			}
		case ops.RoleEOP:
			switch c.policy {
			case PolicyNo:
				return nil, codecerrors.NewSequence(i, tok, "EOP under the no policy")
			case PolicyClose:
				if st.closed[st.head] {
					return nil, codecerrors.NewSequence(i, tok, fmt.Sprintf("source position %d already closed", st.head))
				}
				st.closed[st.head] = true
			case PolicyOpen:
				st.lastEOP = i
			}
		case ops.RoleTerminal:
			if st.closed[st.head] {
				return nil, codecerrors.NewSequence(i, tok, fmt.Sprintf("terminal on closed source position %d", st.head))
			}
			res.Tokens = append(res.Tokens, tok)
			res.Alignment = append(res.Alignment, st.head)
			if c.policy == PolicyOpen && st.lastEOP != i-1 {
				st.closed[st.head] = true
			}
		default:
			return nil, codecerrors.NewSequence(i, tok, "operation not used by the source-jump model")
		}
	}
	if c.policy == PolicyOpen && st.lastEOP == len(seq)-1 && len(seq) > 0 {
		return nil, codecerrors.NewSequence(len(seq)-1, seq[len(seq)-1], "dangling EOP")
	}

	n := srcLen
	for _, s := range res.Alignment {
		if s+1 > n {
			n = s + 1
		}
	}
	res.Fertility = make([]int, n)
	for _, s := range res.Alignment {
		res.Fertility[s]++
	}
	return res, nil
}

// Render formats the result with the output formats of the basic codec.
// There is no compiled array, so parse and incremental are unsupported.
func (r *Result) Render(f osm.Format) (string, error) {
	switch f {
	case osm.FormatPlain:
		return ops.Join(r.Tokens), nil
	case osm.FormatAlign, osm.FormatPharaoh:
		return r.Alignment.Links().Pharaoh(), nil
	case osm.FormatTagged:
		tagged := make([]string, len(r.Tokens))
		for i, tok := range r.Tokens {
			tagged[i] = fmt.Sprintf("%s(%d)", tok, r.Alignment[i])
		}
		return ops.Join(tagged), nil
	case osm.FormatFert:
		return ops.FormatInts(r.Fertility), nil
	case osm.FormatPerm:
		return ops.FormatInts(r.Alignment), nil
	}
	return "", codecerrors.NewUnsupported(fmt.Sprintf("format %s", f), "the source-jump model has no compiled array")
}

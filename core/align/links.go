// Package align holds word alignments between a source and a target sentence:
// the link list read from corpora, the normalized one-source-per-target form
// consumed by the token-level codecs, and the binary matrix form consumed by
// the phrase segmentation.
package align

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// Link aligns source position Src with target position Trg (both zero-based).
type Link struct {
	Src int `json:"src"`
	Trg int `json:"trg"`
}

func (l Link) String() string {
	return fmt.Sprintf("%d-%d", l.Src, l.Trg)
}

// Links is a sparse alignment.
type Links []Link

// linkLine is the participle grammar for an alignment line.
// Both the flat form "i1 j1 i2 j2" and the Pharaoh form "i1-j1 i2-j2" are accepted.
//
//nolint:govet // participle grammar tags are not standard struct tags
type linkLine struct {
	Items []*linkItem `parser:"@@*"`
}

//nolint:govet // participle grammar tags are not standard struct tags
type linkItem struct {
	Pair  string `parser:"  @Pair"`
	Index *int   `parser:"| @Int"`
}

// linkLexer tokenizes alignment lines. Pair must come before Int so that
// "3-4" is read as one link.
var linkLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Pair", Pattern: `[0-9]+-[0-9]+`},
	{Name: "Int", Pattern: `[0-9]+`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var linkParser = participle.MustBuild[linkLine](
	participle.Lexer(linkLexer),
	participle.Elide("Whitespace"),
)

// ParseLinks parses one alignment line.
func ParseLinks(line string) (Links, error) {
	parsed, err := linkParser.ParseString("", line)
	if err != nil {
		return nil, codecerrors.NewAlignment(-1, "%v", err)
	}

	links := make(Links, 0, len(parsed.Items))
	pending := -1
	for _, item := range parsed.Items {
		if item.Index != nil {
			if pending < 0 {
				pending = *item.Index
				continue
			}
			links = append(links, Link{Src: pending, Trg: *item.Index})
			pending = -1
			continue
		}
		if pending >= 0 {
			return nil, codecerrors.NewAlignment(len(links), "dangling index %d before %s", pending, item.Pair)
		}
		src, trg, _ := strings.Cut(item.Pair, "-")
		l := Link{}
		if l.Src, err = strconv.Atoi(src); err != nil {
			return nil, codecerrors.NewAlignment(len(links), "%v", err)
		}
		if l.Trg, err = strconv.Atoi(trg); err != nil {
			return nil, codecerrors.NewAlignment(len(links), "%v", err)
		}
		links = append(links, l)
	}
	if pending >= 0 {
		return nil, codecerrors.NewAlignment(-1, "odd number of indices")
	}
	return links, nil
}

// Validate checks that every link lies inside a srcLen x trgLen sentence pair.
func (ls Links) Validate(srcLen, trgLen int) error {
	for i, l := range ls {
		if l.Src < 0 || l.Src >= srcLen {
			return codecerrors.NewAlignment(i, "source position %d outside sentence of length %d", l.Src, srcLen)
		}
		if l.Trg < 0 || l.Trg >= trgLen {
			return codecerrors.NewAlignment(i, "target position %d outside sentence of length %d", l.Trg, trgLen)
		}
	}
	return nil
}

// Sorted returns a copy ordered by source, then target position.
func (ls Links) Sorted() Links {
	out := append(Links(nil), ls...)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Src != out[j].Src {
			return out[i].Src < out[j].Src
		}
		return out[i].Trg < out[j].Trg
	})
	return out
}

// Pharaoh renders the links sorted as "i-j i-j ...".
func (ls Links) Pharaoh() string {
	sorted := ls.Sorted()
	parts := make([]string, len(sorted))
	for i, l := range sorted {
		parts[i] = l.String()
	}
	return strings.Join(parts, " ")
}

// Flat renders the links in their current order as "i1 j1 i2 j2 ...".
func (ls Links) Flat() string {
	parts := make([]string, 0, 2*len(ls))
	for _, l := range ls {
		parts = append(parts, strconv.Itoa(l.Src), strconv.Itoa(l.Trg))
	}
	return strings.Join(parts, " ")
}

package align

import (
	"fmt"
	"sort"

	codecerrors "github.com/FocuswithJustin/osmcodec/core/errors"
)

// Normalized maps every target position to exactly one source position.
type Normalized []int

// Normalize turns a raw, possibly many-to-many alignment into a total
// target-to-source function.
//
// Links are ordered by target position and, for ties, by ascending source
// position; the first link per target wins. Unaligned target positions copy
// the source position of the nearest preceding target, and the leading run of
// unaligned targets copies the first aligned one.
//
// An empty link list for a non-empty target returns the fallback that aligns
// every target position to source 0 together with an error wrapping
// ErrEmptyAlignment. Callers are expected to log it and keep the result.
func Normalize(links Links, trgLen int) (Normalized, error) {
	for i, l := range links {
		if l.Src < 0 {
			return nil, codecerrors.NewAlignment(i, "negative source position %d", l.Src)
		}
		if l.Trg < 0 || l.Trg >= trgLen {
			return nil, codecerrors.NewAlignment(i, "target position %d outside sentence of length %d", l.Trg, trgLen)
		}
	}

	trg2src := make(Normalized, trgLen)
	if trgLen == 0 {
		return trg2src, nil
	}
	if len(links) == 0 {
		return trg2src, fmt.Errorf("%w: %d target positions fall back to source 0", codecerrors.ErrEmptyAlignment, trgLen)
	}

	sorted := append(Links(nil), links...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Trg != sorted[j].Trg {
			return sorted[i].Trg < sorted[j].Trg
		}
		return sorted[i].Src < sorted[j].Src
	})

	for i := range trg2src {
		trg2src[i] = -1
	}
	for _, l := range sorted {
		if trg2src[l.Trg] == -1 {
			trg2src[l.Trg] = l.Src
		}
	}

	// sorted[0] holds the smallest aligned target position
	prev := trg2src[sorted[0].Trg]
	for trg := range trg2src {
		if trg2src[trg] == -1 {
			trg2src[trg] = prev
		}
		prev = trg2src[trg]
	}
	return trg2src, nil
}

// Links returns one link per target position, ordered by target position.
func (n Normalized) Links() Links {
	out := make(Links, len(n))
	for trg, src := range n {
		out[trg] = Link{Src: src, Trg: trg}
	}
	return out
}

// SourceToTarget groups target positions by their source position.
// Target positions are ascending within each group.
func (n Normalized) SourceToTarget(srcLen int) ([][]int, error) {
	out := make([][]int, srcLen)
	for trg, src := range n {
		if src < 0 || src >= srcLen {
			return nil, codecerrors.NewAlignment(trg, "source position %d outside sentence of length %d", src, srcLen)
		}
		out[src] = append(out[src], trg)
	}
	return out, nil
}

// Fertility counts how many target positions each source position produces.
func (n Normalized) Fertility(srcLen int) ([]int, error) {
	out := make([]int, srcLen)
	for trg, src := range n {
		if src < 0 || src >= srcLen {
			return nil, codecerrors.NewAlignment(trg, "source position %d outside sentence of length %d", src, srcLen)
		}
		out[src]++
	}
	return out, nil
}

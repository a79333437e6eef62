// Package regroup turns N input documents into one output per page index:
// output p holds page p of every input long enough to have one, in input
// order.
package regroup

import (
	"context"
	"fmt"
	"io"

	"github.com/wudi/pagemerge/observability"
)

// Member names one page of one input.
type Member struct {
	Input int // position in the input list
	Page  int // 0-based page index
}

// Group is the plan for a single output document.
type Group struct {
	Index   int
	Members []Member
}

// Groups plans every output for inputs with the given page counts. There are
// max(counts) groups; group p lists (i, p) for each input i with counts[i] > p.
func Groups(counts []int) []Group {
	widest := 0
	for _, c := range counts {
		if c > widest {
			widest = c
		}
	}
	groups := make([]Group, widest)
	for p := 0; p < widest; p++ {
		g := Group{Index: p}
		for i, c := range counts {
			if c > p {
				g.Members = append(g.Members, Member{Input: i, Page: p})
			}
		}
		groups[p] = g
	}
	return groups
}

// Source is an input document addressed by page index.
type Source interface {
	Name() string
	PageCount() int
	Page(ctx context.Context, index int) (io.ReadSeeker, error)
}

// Counts returns the page count of every source.
func Counts[S Source](sources []S) []int {
	counts := make([]int, len(sources))
	for i, s := range sources {
		counts[i] = s.PageCount()
	}
	return counts
}

// Assembler writes a list of single-page documents as one document.
type Assembler interface {
	Assemble(ctx context.Context, pages []io.ReadSeeker, w io.Writer) error
}

// Regrouper builds output documents from groups.
type Regrouper struct {
	Assembler Assembler
	Logger    observability.Logger
}

func New(a Assembler, log observability.Logger) *Regrouper {
	return &Regrouper{Assembler: a, Logger: observability.OrNop(log)}
}

// Build writes the output for g to w. Inputs that are too short for g.Index
// are logged and skipped. It returns the names of the inputs that contributed
// a page, in order.
func (r *Regrouper) Build(ctx context.Context, sources []Source, g Group, w io.Writer) ([]string, error) {
	log := observability.OrNop(r.Logger)
	inGroup := make(map[int]bool, len(g.Members))
	for _, m := range g.Members {
		inGroup[m.Input] = true
	}
	for i, s := range sources {
		if !inGroup[i] {
			log.Info("input has no such page, skipped",
				observability.String(observability.KeyFile, s.Name()),
				observability.Int(observability.KeyPage, g.Index+1),
			)
		}
	}

	pages := make([]io.ReadSeeker, 0, len(g.Members))
	members := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m.Input < 0 || m.Input >= len(sources) {
			return nil, fmt.Errorf("group %d: input %d out of range", g.Index+1, m.Input)
		}
		src := sources[m.Input]
		p, err := src.Page(ctx, m.Page)
		if err != nil {
			return nil, fmt.Errorf("group %d: %w", g.Index+1, err)
		}
		pages = append(pages, p)
		members = append(members, src.Name())
	}
	if err := r.Assembler.Assemble(ctx, pages, w); err != nil {
		return nil, fmt.Errorf("group %d: %w", g.Index+1, err)
	}
	return members, nil
}

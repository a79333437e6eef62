package regroup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource serves pages whose content is "<name>[<index>]".
type fakeSource struct {
	name  string
	pages int
	err   error
}

func (f fakeSource) Name() string   { return f.name }
func (f fakeSource) PageCount() int { return f.pages }

func (f fakeSource) Page(_ context.Context, index int) (io.ReadSeeker, error) {
	if f.err != nil {
		return nil, f.err
	}
	if index >= f.pages {
		return nil, fmt.Errorf("%s has no page %d", f.name, index)
	}
	return strings.NewReader(fmt.Sprintf("%s[%d]", f.name, index)), nil
}

// joinAssembler writes page contents separated by commas.
type joinAssembler struct{ err error }

func (j joinAssembler) Assemble(_ context.Context, pages []io.ReadSeeker, w io.Writer) error {
	if j.err != nil {
		return j.err
	}
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		b, err := io.ReadAll(p)
		if err != nil {
			return err
		}
		parts = append(parts, string(b))
	}
	_, err := io.WriteString(w, strings.Join(parts, ","))
	return err
}

func TestGroupsCountEqualsMaxPages(t *testing.T) {
	for _, counts := range [][]int{{2, 2, 2}, {3, 1, 2}, {0, 5}, {1}, {}} {
		widest := 0
		for _, c := range counts {
			if c > widest {
				widest = c
			}
		}
		assert.Len(t, Groups(counts), widest, "counts %v", counts)
	}
}

func TestGroupsShortInputs(t *testing.T) {
	groups := Groups([]int{3, 1, 2})
	require.Len(t, groups, 3)
	assert.Equal(t, []Member{{0, 0}, {1, 0}, {2, 0}}, groups[0].Members)
	assert.Equal(t, []Member{{0, 1}, {2, 1}}, groups[1].Members)
	assert.Equal(t, []Member{{0, 2}}, groups[2].Members)
	for i, g := range groups {
		assert.Equal(t, i, g.Index)
	}
}

func TestGroupsMembershipProperty(t *testing.T) {
	counts := []int{4, 0, 2, 7, 1, 4}
	for _, g := range Groups(counts) {
		seen := map[int]bool{}
		last := -1
		for _, m := range g.Members {
			assert.Equal(t, g.Index, m.Page)
			assert.Greater(t, counts[m.Input], g.Index)
			assert.Greater(t, m.Input, last, "members stay in input order")
			assert.False(t, seen[m.Input], "no duplicates")
			seen[m.Input] = true
			last = m.Input
		}
		for i, c := range counts {
			assert.Equal(t, c > g.Index, seen[i], "input %d in group %d", i, g.Index)
		}
	}
}

func TestBuildCopiesPagesInOrder(t *testing.T) {
	sources := []Source{fakeSource{name: "A", pages: 3}, fakeSource{name: "B", pages: 1}, fakeSource{name: "C", pages: 2}}
	r := New(joinAssembler{}, nil)
	want := []string{"A[0],B[0],C[0]", "A[1],C[1]", "A[2]"}
	for i, g := range Groups(Counts(sources)) {
		var buf bytes.Buffer
		members, err := r.Build(context.Background(), sources, g, &buf)
		require.NoError(t, err)
		assert.Equal(t, want[i], buf.String())
		assert.Len(t, members, len(g.Members))
	}
}

func TestBuildReportsMembers(t *testing.T) {
	sources := []Source{fakeSource{name: "a.pdf", pages: 1}, fakeSource{name: "b.pdf", pages: 2}}
	members, err := New(joinAssembler{}, nil).Build(context.Background(), sources, Groups(Counts(sources))[1], io.Discard)
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf"}, members)
}

func TestBuildErrors(t *testing.T) {
	boom := errors.New("disk full")
	sources := []Source{fakeSource{name: "A", pages: 1}}
	_, err := New(joinAssembler{err: boom}, nil).Build(context.Background(), sources, Groups([]int{1})[0], io.Discard)
	require.ErrorIs(t, err, boom)

	bad := []Source{fakeSource{name: "A", pages: 1, err: boom}}
	_, err = New(joinAssembler{}, nil).Build(context.Background(), bad, Groups([]int{1})[0], io.Discard)
	require.ErrorIs(t, err, boom)

	_, err = New(joinAssembler{}, nil).Build(context.Background(), sources, Group{Members: []Member{{Input: 3}}}, io.Discard)
	require.Error(t, err)
}

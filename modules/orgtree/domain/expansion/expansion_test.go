package expansion

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToggle_ReturnsNewSetAndLeavesReceiver(t *testing.T) {
	s := New("root")

	opened := s.Toggle("dept")
	require.NotSame(t, s, opened)
	require.True(t, opened.Contains("dept"))
	require.False(t, s.Contains("dept"))

	closed := opened.Toggle("dept")
	require.False(t, closed.Contains("dept"))
	require.True(t, opened.Contains("dept"))
	require.True(t, closed.Contains("root"))
}

func TestToggle_IgnoresEmptyID(t *testing.T) {
	require.Equal(t, 0, New().Toggle("").Len())
}

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "blank", raw: "   ", want: []string{}},
		{name: "single", raw: "root", want: []string{"root"}},
		{name: "trims and drops empties", raw: " b, ,a,,", want: []string{"a", "b"}},
		{name: "dedupes", raw: "a,a,b", want: []string{"a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Parse(tt.raw).IDs())
		})
	}
}

func TestEncode_IsSortedAndRoundTrips(t *testing.T) {
	s := New("team", "root", "dept")
	require.Equal(t, "dept,root,team", s.Encode())
	require.True(t, Parse(s.Encode()).Equal(s))
}

func TestWithWithout(t *testing.T) {
	s := New("a")
	w := s.With("b", "c", "")
	require.Equal(t, []string{"a", "b", "c"}, w.IDs())
	require.Equal(t, []string{"a"}, s.IDs())

	wo := w.Without("a", "missing")
	require.Equal(t, []string{"b", "c"}, wo.IDs())
}

func TestNilAndEmptySets(t *testing.T) {
	var s *Set
	require.False(t, s.Contains("a"))
	require.Equal(t, 0, s.Len())
	require.Equal(t, "", s.Encode())
	require.True(t, s.Toggle("a").Contains("a"))
	require.Same(t, Empty(), Empty())
	require.True(t, Empty().Equal(s))
}

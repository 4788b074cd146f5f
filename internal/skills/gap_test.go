package skills

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMatching(t *testing.T) {
	t.Run("keeps reference order and spelling", func(t *testing.T) {
		got := FindMatching(
			[]string{"postgres", "javascript", "Docker"},
			[]string{"JS", "Kubernetes", "PostgreSQL", "docker"},
		)
		assert.Equal(t, []string{"JS", "PostgreSQL", "docker"}, got)
	})

	t.Run("empty candidate", func(t *testing.T) {
		got := FindMatching(nil, []string{"Go"})
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("empty reference", func(t *testing.T) {
		assert.Empty(t, FindMatching([]string{"Go"}, nil))
	})

	t.Run("duplicate references are all emitted", func(t *testing.T) {
		got := FindMatching([]string{"go"}, []string{"Go", "GO"})
		assert.Equal(t, []string{"Go", "GO"}, got)
	})
}

func TestComputeGap_PartialMatch(t *testing.T) {
	gap := ComputeGap(
		[]string{"Python", "React"},
		[]string{"Python", "AWS"},
		[]string{"Docker"},
	)

	assert.Contains(t, gap.Overlapping, "Python")
	assert.NotContains(t, gap.Overlapping, "React")
	assert.Len(t, gap.Overlapping, 1)
	assert.Equal(t, []string{"AWS"}, gap.MissingRequired)
	assert.Equal(t, []string{"Docker"}, gap.MissingPreferred)
	assert.Empty(t, gap.WeakSkills)
}

func TestComputeGap_EmptyCandidate(t *testing.T) {
	gap := ComputeGap(nil, []string{"React", "TypeScript"}, []string{"Next.js"})

	assert.Empty(t, gap.Overlapping)
	assert.Len(t, gap.MissingRequired, 2)
	assert.ElementsMatch(t, []string{"React", "TypeScript"}, gap.MissingRequired)
	assert.Equal(t, []string{"Next.js"}, gap.MissingPreferred)
}

func TestComputeGap_EmptyJob(t *testing.T) {
	gap := ComputeGap([]string{"Go"}, nil, nil)

	assert.Empty(t, gap.Overlapping)
	assert.Empty(t, gap.MissingRequired)
	assert.Empty(t, gap.MissingPreferred)
	assert.False(t, gap.HasGaps())
}

func TestComputeGap_FullMatch(t *testing.T) {
	gap := ComputeGap(
		[]string{"go", "javascript", "POSTGRESQL", "docker", "react"},
		[]string{"Go", "JS", "Postgres"},
		[]string{"Docker", "React.js", "Go"},
	)

	assert.Empty(t, gap.MissingRequired)
	assert.Empty(t, gap.MissingPreferred)
	// "Go" appears in both lists but is reported once.
	assert.ElementsMatch(t, []string{"Go", "JS", "Postgres", "Docker", "React.js"}, gap.Overlapping)
}

func TestComputeGap_OverlapDedupIsByExactLabel(t *testing.T) {
	gap := ComputeGap([]string{"node"}, []string{"Node.js"}, []string{"nodejs"})

	assert.ElementsMatch(t, []string{"Node.js", "nodejs"}, gap.Overlapping)
}

func TestComputeGap_Idempotent(t *testing.T) {
	candidate := []string{"Python", "SQL", "react"}
	required := []string{"Python", "Go", "React"}
	preferred := []string{"SQL", "Terraform"}

	first := ComputeGap(candidate, required, preferred)
	second := ComputeGap(candidate, required, preferred)

	assert.ElementsMatch(t, first.Overlapping, second.Overlapping)
	assert.Equal(t, first.MissingRequired, second.MissingRequired)
	assert.Equal(t, first.MissingPreferred, second.MissingPreferred)
	assert.Equal(t, first.WeakSkills, second.WeakSkills)
}

func TestGapResult_Missing(t *testing.T) {
	gap := GapResult{MissingRequired: []string{"AWS"}, MissingPreferred: []string{"Docker"}}

	assert.True(t, gap.HasGaps())
	assert.Equal(t, []string{"AWS", "Docker"}, gap.Missing())
}

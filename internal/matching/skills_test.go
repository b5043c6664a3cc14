package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchSkills(t *testing.T) {
	reg := testRegistry()
	cfg := DefaultConfig().Skills

	t.Run("empty candidate skills", func(t *testing.T) {
		m := MatchSkills(nil, []string{"java", "spring"}, nil, reg, true, cfg)
		assert.Equal(t, 0.0, m.Coverage)
		assert.Equal(t, []string{"java", "spring"}, m.MustHaveMissing)
		assert.Empty(t, m.Matched)
	})

	t.Run("cross domain transfer uses factor", func(t *testing.T) {
		// cloud_devops lists backend_go as transferable: docker is credited at 0.8 * 0.6.
		m := MatchSkills([]string{"go"}, []string{"docker"}, nil, reg, true, cfg)
		require.Len(t, m.Transferable, 1)
		assert.Equal(t, 48, m.Transferable[0].Percent)

		m = MatchSkills([]string{"go"}, []string{"java"}, nil, reg, true, cfg)
		require.Len(t, m.Transferable, 1)
		assert.Equal(t, "backend_go", m.Transferable[0].Domain)
		assert.Equal(t, 60, m.Transferable[0].Percent)
		assert.Equal(t, 0.5, m.Coverage)
	})

	t.Run("transfer disabled", func(t *testing.T) {
		m := MatchSkills([]string{"aws"}, []string{"kubernetes"}, nil, reg, false, cfg)
		assert.Empty(t, m.Transferable)
		assert.Equal(t, []string{"kubernetes"}, m.MustHaveMissing)
	})

	t.Run("nice to have bonus is capped", func(t *testing.T) {
		m := MatchSkills([]string{"java", "maven", "sql"}, []string{"java"}, []string{"maven", "sql", "java"}, reg, true, cfg)
		assert.Equal(t, []string{"maven", "sql"}, m.NiceToHaveMatched)
		assert.Equal(t, 100, scoreSkills(m, cfg))
	})

	t.Run("nice to have bonus adds up to ten", func(t *testing.T) {
		m := MatchSkills([]string{"java", "maven"}, []string{"java", "spring"}, []string{"maven", "sql"}, reg, true, cfg)
		// java matched, spring transferable within backend_java: coverage 0.75, bonus 5.
		assert.Equal(t, 0.75, m.Coverage)
		assert.Equal(t, 80, scoreSkills(m, cfg))
		assert.Equal(t, []string{"sql"}, m.Missing)
	})
}

package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_DominantDomain(t *testing.T) {
	reg := testRegistry()

	tests := []struct {
		name     string
		explicit string
		title    string
		skills   []string
		key      string
		status   domainStatus
	}{
		{"explicit", "Design", "", nil, "design", domainResolved},
		{"explicit unknown", "robotics", "", nil, "", domainInvalidReference},
		{"title keyword wins", "", "DevOps Engineer", []string{"java"}, "cloud_devops", domainResolved},
		{"skills only", "", "", []string{"go", "grpc"}, "backend_go", domainResolved},
		{"tie prefers weight", "", "", []string{"sql"}, "backend_java", domainResolved},
		{"nothing known", "", "Barista", []string{"latte art"}, "", domainUnresolved},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := reg.dominantDomain(tt.explicit, tt.title, normalizeSkills(tt.skills))
			assert.Equal(t, tt.status, res.Status)
			assert.Equal(t, tt.key, res.Key)
		})
	}
}

func TestRegistry_IgnoresInactiveDomains(t *testing.T) {
	reg := testRegistry()

	assert.Equal(t, 5, reg.Len())
	assert.False(t, reg.Has("legacy_mainframe"))
	assert.Empty(t, reg.OwnersOf("cobol"))
	assert.Equal(t, "test-1", reg.Version())

	var empty *Registry
	assert.Equal(t, 0, empty.Len())
	assert.False(t, empty.Incompatible("a", "b"))
}

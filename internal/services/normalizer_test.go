package services

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeForEmbedding(t *testing.T) {
	// punctuation is deleted, not replaced by a space
	assert.Equal(t, "senior godeveloper remote", NormalizeForEmbedding("  Senior  Go-Developer!\n(Remote) "))
	assert.Equal(t, "", NormalizeForEmbedding(""))
	assert.Equal(t, "a, b", NormalizeForEmbedding("a,\tb."))
}

func TestNormalizeForEmbeddingKeepsCommas(t *testing.T) {
	assert.Equal(t, "python, flask docker", NormalizeForEmbedding("Python,  Flask;\nDocker!"))
	assert.Equal(t, NormalizeForEmbedding("PYTHON, Flask"), NormalizeForEmbedding("python,   flask."))
}

func TestNormalizeSkillList(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"Python, SQL, Docker", "docker, python, sql"},
		{"go;Go\nGO,  rust ", "go, rust"},
		{" , ;\n", ""},
		{"C++, c#", "c#, c++"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeSkillList(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeSkillListIdempotent(t *testing.T) {
	inputs := []string{
		"Python, Flask, Docker",
		"react.js; Node\nnode, AWS",
		"  kubernetes ,, terraform;;",
		"",
	}
	for _, in := range inputs {
		once := NormalizeSkillList(in)
		assert.Equal(t, once, NormalizeSkillList(once), "input %q", in)
	}
}

func TestNormalizeSkillListOrderIndependent(t *testing.T) {
	tokens := []string{"Python", "SQL", "docker", "Kubernetes", "go", "sql"}
	want := NormalizeSkillList(strings.Join(tokens, ", "))

	r := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]string(nil), tokens...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, NormalizeSkillList(strings.Join(shuffled, "; ")))
	}
}

func TestSplitSkills(t *testing.T) {
	assert.Equal(t, []string{"Python", "SQL", "Docker"}, SplitSkills("Python,SQL;\nDocker, "))
	assert.Empty(t, SplitSkills("  "))
}

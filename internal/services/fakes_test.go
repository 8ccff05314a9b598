package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"sync/atomic"

	"talentalign/jd-matcher/internal/models"
)

type fakeGenerator struct {
	respond func(req GenerateRequest) (string, error)
	calls   atomic.Int32

	mu      sync.Mutex
	prompts []string
}

func (f *fakeGenerator) GenerateContentWithRetry(ctx context.Context, req GenerateRequest, maxAttempts int) (string, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.prompts = append(f.prompts, req.Prompt)
	f.mu.Unlock()
	if f.respond == nil {
		return "", errors.New("no responder")
	}
	return f.respond(req)
}

func (f *fakeGenerator) promptsContaining(substr string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, p := range f.prompts {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

// bagOfWordsEmbedder gives every distinct token its own dimension.
type bagOfWordsEmbedder struct {
	mu    sync.Mutex
	vocab map[string]int
	calls atomic.Int32
	fail  bool
}

const bagDims = 256

func newBagOfWordsEmbedder() *bagOfWordsEmbedder {
	return &bagOfWordsEmbedder{vocab: make(map[string]int)}
}

func (e *bagOfWordsEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	e.calls.Add(1)
	if e.fail {
		return nil, errors.New("embedding backend down")
	}

	vec := make([]float32, bagDims)
	tokens := strings.FieldsFunc(text, func(r rune) bool { return r == ',' || r == ' ' })

	e.mu.Lock()
	defer e.mu.Unlock()
	for _, tok := range tokens {
		idx, ok := e.vocab[tok]
		if !ok {
			idx = len(e.vocab) % bagDims
			e.vocab[tok] = idx
		}
		vec[idx]++
	}
	return vec, nil
}

// simulatedLLM answers the pipeline's prompts deterministically. Documents are
// written as "Skills: ...\nExperience: ...\nEducation: ..." lines.
func simulatedLLM(req GenerateRequest) (string, error) {
	p := req.Prompt
	switch {
	case strings.Contains(p, "extract the content for 'skills'"):
		text := between(p, "Text:\n", "\nExpected format:")
		out, _ := json.Marshal(map[string]string{
			"skills":     lineValue(text, "Skills:"),
			"experience": lineValue(text, "Experience:"),
			"education":  lineValue(text, "Education:"),
		})
		return string(out), nil

	case strings.Contains(p, "Candidate's Skills:"):
		have := map[string]bool{}
		for _, s := range SplitSkills(lineValue(p, "Candidate's Skills:")) {
			have[strings.ToLower(s)] = true
		}
		missing := []rawMissingSkill{}
		for _, s := range SplitSkills(lineValue(p, "Job Requirements:")) {
			if !have[strings.ToLower(s)] {
				missing = append(missing, rawMissingSkill{Skill: strings.ToLower(s), Importance: "high", Category: "tool"})
			}
		}
		out, _ := json.Marshal(map[string]interface{}{"missingSkills": missing})
		return string(out), nil

	case strings.Contains(p, "meticulous evaluation agent"):
		return `{"score": 0.8, "reason": "aligned"}`, nil
	}
	return "", errors.New("unhandled prompt")
}

func between(s, start, end string) string {
	i := strings.Index(s, start)
	if i == -1 {
		return ""
	}
	s = s[i+len(start):]
	if j := strings.Index(s, end); j != -1 {
		s = s[:j]
	}
	return s
}

func lineValue(text, prefix string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(line, prefix))
		}
	}
	return ""
}

type testPipeline struct {
	gen        *fakeGenerator
	embedder   *bagOfWordsEmbedder
	llm        *LLMGateway
	similarity *SimilarityService
	expander   *SkillExpander
	extractor  *SectionExtractor
	scorer     *RequirementScorer
	missing    *MissingSkillFinder
	matcher    *Matcher
}

func newTestPipeline(respond func(GenerateRequest) (string, error)) *testPipeline {
	gen := &fakeGenerator{respond: respond}
	emb := newBagOfWordsEmbedder()

	p := NewPipeline(gen, emb, PipelineConfig{
		Gateway:        GatewayConfig{Model: "test-model", Seed: 42},
		EmbeddingModel: "test-embed",
		Blend:          DefaultScoreBlend(),
		Matcher:        MatcherConfig{Weights: DefaultWeights(), Concurrency: 4},
	}, nil)

	return &testPipeline{
		gen:        gen,
		embedder:   emb,
		llm:        p.LLM,
		similarity: p.Similarity,
		expander:   p.Expander,
		extractor:  p.Extractor,
		scorer:     p.Scorer,
		missing:    p.Missing,
		matcher:    p.Matcher,
	}
}

func doc(skills, experience, education string) string {
	return "Skills: " + skills + "\nExperience: " + experience + "\nEducation: " + education
}

func skillNames(list []models.MissingSkill) []string {
	out := make([]string, len(list))
	for i, ms := range list {
		out[i] = ms.Skill
	}
	return out
}

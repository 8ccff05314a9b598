package models

import "strings"

type DocType string

const (
	DocTypeResume DocType = "Resume"
	DocTypeJob    DocType = "Job Description"
)

type Section string

const (
	SectionSkills     Section = "skills"
	SectionExperience Section = "experience"
	SectionEducation  Section = "education"
)

// Sections lists every scored section in display order.
var Sections = []Section{SectionSkills, SectionExperience, SectionEducation}

// ExtractedProfile holds the three sections pulled out of a document.
// Fields are empty strings when extraction fails, never absent.
type ExtractedProfile struct {
	Skills     string `json:"skills"`
	Experience string `json:"experience"`
	Education  string `json:"education"`
}

// IsEmpty reports whether no section carries any content.
func (p ExtractedProfile) IsEmpty() bool {
	return strings.TrimSpace(p.Skills) == "" &&
		strings.TrimSpace(p.Experience) == "" &&
		strings.TrimSpace(p.Education) == ""
}

func (p ExtractedProfile) Get(s Section) string {
	switch s {
	case SectionSkills:
		return p.Skills
	case SectionExperience:
		return p.Experience
	case SectionEducation:
		return p.Education
	}
	return ""
}

type SectionScore struct {
	Section   Section `json:"section"`
	Value     float64 `json:"value"`
	Reasoning string  `json:"reasoning,omitempty"`
}

type WeightSet struct {
	Skills     float64 `json:"skills"`
	Experience float64 `json:"experience"`
	Education  float64 `json:"education"`
}

func (w WeightSet) Sum() float64 {
	return w.Skills + w.Experience + w.Education
}

func (w WeightSet) Get(s Section) float64 {
	switch s {
	case SectionSkills:
		return w.Skills
	case SectionExperience:
		return w.Experience
	case SectionEducation:
		return w.Education
	}
	return 0
}

type Importance string

const (
	ImportanceHigh   Importance = "high"
	ImportanceMedium Importance = "medium"
	ImportanceLow    Importance = "low"
)

type SkillCategory string

const (
	CategoryTechnical     SkillCategory = "technical"
	CategorySoft          SkillCategory = "soft"
	CategoryCertification SkillCategory = "certification"
	CategoryTool          SkillCategory = "tool"
)

type MissingSkill struct {
	Skill      string        `json:"skill"`
	Importance Importance    `json:"importance"`
	Category   SkillCategory `json:"category"`
}

// MatchResult is the outcome of scoring one resume against one job.
type MatchResult struct {
	ID              string           `json:"id,omitempty"`
	Name            string           `json:"name,omitempty"`
	FinalScore      float64          `json:"final_score"`
	ScorePercent    float64          `json:"score_percent"`
	SectionScores   []SectionScore   `json:"section_scores"`
	Weights         WeightSet        `json:"weights"`
	MissingSkills   []MissingSkill   `json:"missing_skills"`
	JobSkills       string           `json:"job_skills"`
	CandidateSkills string           `json:"candidate_skills"`
	Profile         ExtractedProfile `json:"profile"`
}

// SectionValue returns the score recorded for s, or zero.
func (r MatchResult) SectionValue(s Section) float64 {
	for _, sc := range r.SectionScores {
		if sc.Section == s {
			return sc.Value
		}
	}
	return 0
}

type SkippedItem struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

func (s SkippedItem) String() string {
	return s.Name + ": " + s.Reason
}

// BatchOutcome is the ranked output of a batch scoring pass.
type BatchOutcome struct {
	Results              []MatchResult  `json:"results"`
	Skipped              []SkippedItem  `json:"skipped"`
	MissingSkillsSummary []MissingSkill `json:"missing_skills_summary"`
}

// JobInput is one job posting offered to a batch.
type JobInput struct {
	ID   string
	Name string
	Text string
}

// ResumeInput is one resume offered to a batch.
type ResumeInput struct {
	ID   string
	Name string
	Text string
}

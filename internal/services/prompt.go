package services

import (
	"fmt"
	"strings"

	"talentalign/jd-matcher/internal/models"
)

// canonicalSkill folds aliases and versioned names into one base skill.
type canonicalSkill struct {
	base    string
	aliases []string
	family  string
}

var canonicalSkills = []canonicalSkill{
	{base: "php", aliases: []string{"php7", "php8"}},
	{base: "css", aliases: []string{"css3", "css4"}},
	{base: "html", aliases: []string{"html5"}},
	{base: "javascript", aliases: []string{"js", "es6", "es7"}},
	{base: "react", aliases: []string{"reactjs", "react.js"}},
	{base: "node", aliases: []string{"nodejs", "node.js"}},
	{base: "python", aliases: []string{"python3"}},
	{base: "java", aliases: []string{"java8", "java11", "java17"}},
	{base: "sql", aliases: []string{"mysql", "postgresql", "oracle"}, family: "database skills"},
	{base: "git", aliases: []string{"github", "gitlab"}, family: "version control"},
}

func quoteAll(items []string) string {
	quoted := make([]string, len(items))
	for i, s := range items {
		quoted[i] = `"` + s + `"`
	}
	return strings.Join(quoted, ", ")
}

// normalizationRules renders the table as "use X instead of" directives.
func normalizationRules() string {
	var b strings.Builder
	b.WriteString("IMPORTANT: Normalize skill names to their base forms:\n")
	for _, c := range canonicalSkills {
		if c.family != "" {
			fmt.Fprintf(&b, "- Use %q for %s (%s)\n", c.base, c.family, strings.Join(c.aliases, ", "))
			continue
		}
		fmt.Fprintf(&b, "- Use %q instead of %s\n", c.base, quoteAll(c.aliases))
	}
	return b.String()
}

// equivalenceRules renders the same table as "X and Y are the same skill" statements.
func equivalenceRules() string {
	var b strings.Builder
	b.WriteString("IMPORTANT: Consider skill variations and versions as equivalent:\n")
	for _, c := range canonicalSkills {
		if c.family != "" {
			fmt.Fprintf(&b, "- %q and %s are %s\n", c.base, quoteAll(c.aliases), c.family)
			continue
		}
		fmt.Fprintf(&b, "- %q and %s are the same skill\n", c.base, quoteAll(c.aliases))
	}
	return b.String()
}

const missingSkillsShape = `{
  "missingSkills": [
    {
      "skill": "skill name",
      "importance": "high/medium/low",
      "category": "technical/soft/certification/tool"
    }
  ]
}`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildSectionExtractionPrompt asks for skills, experience and education as one JSON object.
func (pb *PromptBuilder) BuildSectionExtractionPrompt(text string, docType models.DocType) string {
	return fmt.Sprintf(`Analyze the following %s text and extract the content for 'skills', 'experience', and 'education'.
Return the extracted information in a clean JSON format. If a section is not found, its value should be an empty string.
Text:
%s
Expected format: {"skills": "...", "experience": "...", "education": "..."}`, docType, text)
}

func (pb *PromptBuilder) BuildSkillExpansionPrompt(skills string) string {
	return fmt.Sprintf(`Given the following list of skills, technologies, or frameworks, expand it by including related or commonly associated ones.
Input: %s

%s
Return an expanded, comma-separated list only. Do not add explanations.`, skills, normalizationRules())
}

func (pb *PromptBuilder) BuildSkillKeywordsPrompt(jobText string) string {
	return fmt.Sprintf(`Extract a clean, comma-separated list of technical skills, tools, programming languages, frameworks, or certifications from this job description:
"%s"

%s
Only return comma-separated keywords like: Java, Spring, Hibernate, SQL, Docker, etc.`, jobText, normalizationRules())
}

func (pb *PromptBuilder) BuildAbbreviationPrompt(text string) string {
	return fmt.Sprintf("Expand all abbreviations and acronyms in this text:\n%s\nReturn only the expanded text.", text)
}

func rubricFor(section models.Section) string {
	switch section {
	case models.SectionEducation:
		return `- **1.0**: Degree and Major are an exact or very close match.
- **0.8**: Degree level matches, but the major is a related technical field.
- **0.5**: Degree is in a different but still quantitative or scientific field.
- **0.2**: A degree is present but in a completely unrelated, non-technical field.
- **0.0**: No degree is listed or information is insufficient.`
	case models.SectionExperience:
		return `- **1.0**: Candidate's experience is a near-perfect match for the role's primary duties, domain, and technologies.
- **0.8**: Candidate's core technologies and domain align well.
- **0.5**: Candidate has relevant software development experience but in a different technology stack or domain.
- **0.2**: Candidate has some professional experience in a technical field, but it's not directly related.
- **0.0**: No relevant professional experience is listed.`
	default:
		return `- **1.0**: The candidate covers essentially everything the job asks for.
- **0.8**: Most of the requirement is covered.
- **0.5**: Partial or adjacent overlap.
- **0.2**: Only tangential overlap.
- **0.0**: No relevant overlap.`
	}
}

// BuildRequirementPrompt asks the judge for {"score", "reason"} under a five-point rubric.
func (pb *PromptBuilder) BuildRequirementPrompt(candidateText, jobText string, section models.Section) string {
	return fmt.Sprintf(`You are a meticulous evaluation agent. Compare the Candidate's %[1]s against the Job's %[1]s and provide a score.
Follow these steps:
1. Analyze Job Requirement: Briefly state the key requirement from the "Job %[1]s" text.
2. Analyze Candidate Profile: Briefly state the key qualification from the "Candidate %[1]s" text.
3. Compare and Score: Compare based on the rubric below. Explain your reasoning.
4. Provide Output: Return a single JSON object with your final "score" (a float from 0.0 to 1.0) and a "reason".

Scoring Rubric:
%[2]s

Job %[1]s:
%[3]s
Candidate %[1]s:
%[4]s
Return ONLY the JSON object.`, section, rubricFor(section), jobText, candidateText)
}

func (pb *PromptBuilder) BuildMissingSkillsPrompt(candidateSkills, jobSkills string) string {
	return fmt.Sprintf(`You are a skill matching expert. Compare the candidate's skills with the job requirements and identify ALL missing skills.

%s
Candidate's Skills: %s
Job Requirements: %s

You MUST return a JSON object with the key "missingSkills" containing an array of ALL missing skills.
Example format:
%s

CRITICAL REQUIREMENTS:
1. ALWAYS return an array under "missingSkills" key
2. Include ALL missing skills, not just one
3. Only include skills that are clearly required for the job but missing from the candidate's profile
4. Do NOT include skills that have equivalent variations already present in the candidate's skills
5. Focus ONLY on technical skills: programming languages, frameworks, libraries, tools, databases, platforms
6. DO NOT include concepts, practices, or methodologies like "responsive design", "well-documented code", "reusable code", "clean code", "agile", "scrum", etc.
7. If no skills are missing, return: {"missingSkills": []}`,
		equivalenceRules(), candidateSkills, jobSkills, missingSkillsShape)
}

// BuildMissingSkillsRetryPrompt is sent once when the model answered with a bare skill object.
func (pb *PromptBuilder) BuildMissingSkillsRetryPrompt(candidateSkills, jobSkills string) string {
	return fmt.Sprintf(`The previous response was incorrect. You returned a single skill object instead of an array.

%s
Candidate's Skills: %s
Job Requirements: %s

You MUST return a JSON object with this EXACT structure:
%s

IMPORTANT: Only include actual technical skills (programming languages, frameworks, tools, databases).
DO NOT include concepts like "responsive design", "well-documented code", "reusable code", "agile", etc.

Return ALL missing technical skills as an array under "missingSkills" key.`,
		equivalenceRules(), candidateSkills, jobSkills, missingSkillsShape)
}

func (pb *PromptBuilder) BuildSearchQueryPrompt(skills, experience string) string {
	return fmt.Sprintf(`Create a job board search query string from the following resume data.
The query should contain the most prominent job title and the top 5-10 skills and technologies.

Skills: %s
Experience: %s

Return ONLY the query string. Do not add any explanation, preamble, or markdown formatting.
Example Output: Front-End Developer with React, Node.js, and JavaScript
Example Output: Intern with Python, Machine Learning, and MongoDB`, skills, experience)
}

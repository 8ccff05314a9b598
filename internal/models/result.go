package models

type UploadResponse struct {
	ID           string `json:"id"`
	Filename     string `json:"filename"`
	OriginalName string `json:"original_name"`
	FileType     string `json:"file_type"`
}

type BulkAnalyzeRequest struct {
	JobDocumentID     string   `json:"job_document_id" validate:"required,uuid"`
	ResumeDocumentIDs []string `json:"resume_document_ids" validate:"required,min=1,dive,uuid"`
	TopN              int      `json:"top_n" validate:"gte=0"`
}

type BulkAnalyzeResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

type ResultResponse struct {
	ID           string        `json:"id"`
	Status       string        `json:"status"`
	Result       *MatchRunData `json:"result,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
}

type MatchRunData struct {
	JobProfile ExtractedProfile `json:"job_profile"`
	Matches    []MatchResult    `json:"candidate_matches"`
	Skipped    []string         `json:"skipped"`
}

type AnalyzeResumeResponse struct {
	CandidateProfile     ExtractedProfile `json:"candidate_profile"`
	SearchQuery          string           `json:"search_query"`
	JobMatches           []MatchResult    `json:"job_matches"`
	MissingSkillsSummary []MissingSkill   `json:"missing_skills_summary"`
	Skipped              []string         `json:"skipped,omitempty"`
}

type SkillGapResponse struct {
	ResumeSkills         string         `json:"resume_skills"`
	JobSkills            string         `json:"job_skills"`
	MissingSkills        []MissingSkill `json:"missing_skills"`
	SkillMatchPercentage float64        `json:"skill_match_percentage"`
	TotalRequiredSkills  int            `json:"total_required_skills"`
	MissingSkillsCount   int            `json:"missing_skills_count"`
	MatchedSkillsCount   int            `json:"matched_skills_count"`
}

type JobPosting struct {
	ID       string `json:"id"`
	FileName string `json:"file_name"`
	FullText string `json:"full_text,omitempty"`
}

type DuplicateJobResponse struct {
	Message         string  `json:"message"`
	Status          string  `json:"status"`
	ExistingID      string  `json:"existing_id"`
	ExistingName    string  `json:"existing_file_name"`
	SimilarityScore float64 `json:"similarity_score"`
}

package conversation

import (
	"encoding/json"
	"strings"
)

const parseApology = "I apologize, but I had trouble formatting my response. Could you please rephrase your last message?"

type Summary struct {
	Skills      string `json:"skills,omitempty"`
	Experience  string `json:"experience,omitempty"`
	Education   string `json:"education,omitempty"`
	CareerGoals string `json:"career_goals,omitempty"`
	Matching    string `json:"matching,omitempty"`
	Level       string `json:"level,omitempty"`
	WantedLevel string `json:"wanted_level,omitempty"`
}

// StructuredReply is the interviewer's decoded output. Completed defaults to
// false: absence of the field, a non-bool value, or a parse failure all leave
// the dialogue open.
type StructuredReply struct {
	NextQuestion string   `json:"next_question"`
	Examples     []string `json:"examples"`
	Summary      Summary  `json:"summary"`
	Completed    bool     `json:"completed"`
}

type JobPosting struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type JobSearchResult struct {
	Jobs    []JobPosting `json:"jobs_list"`
	Message string       `json:"message"`
}

// ParseReply decodes raw model output. On any decode failure it returns the
// fixed fallback payload and ok=false; the raw text should still be persisted
// verbatim for audit.
func ParseReply(raw string) (StructuredReply, bool) {
	var reply StructuredReply
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &reply); err != nil {
		return StructuredReply{
			NextQuestion: parseApology,
			Examples:     []string{},
			Completed:    false,
		}, false
	}
	if reply.Examples == nil {
		reply.Examples = []string{}
	}
	return reply, true
}

// ParseJobResult decodes the headhunter output with the same fallback
// discipline. An empty job list is a valid result, not an error.
func ParseJobResult(raw string) (JobSearchResult, bool) {
	var result JobSearchResult
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &result); err != nil {
		return JobSearchResult{
			Jobs:    []JobPosting{},
			Message: parseApology,
		}, false
	}
	if result.Jobs == nil {
		result.Jobs = []JobPosting{}
	}
	return result, true
}

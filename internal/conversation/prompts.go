package conversation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

const fallbackSystemPrompt = `You are a professional AI career assistant.
Help users refine their CVs by asking specific questions about their experience, skills, and career goals.
Always respond in JSON format with the structure:

{
    "next_question": "Your question here",
    "examples": ["Example 1", "Example 2"],
    "summary": null,
    "completed": false
}
`

const headhunterSystemPrompt = `You are a professional headhunter focusing on finding job opportunities for users.
Help users find job opportunities based on their profile and career aspirations.
The job search should be based on the provided profile summary.
The position must be actively hiring at the moment.

DO NOT make up job postings. If you cannot find any jobs, return an empty list.

Always respond in JSON format with the structure:
` + "```json" + `
{
    "jobs_list": [
        {
            "title": "Job Title",
            "company": "Company Name",
            "location": "Job Location",
            "description": "Job Description",
            "url": "Link to job posting"
        }
    ],
    "message": "Your message here"
}
` + "```"

// LoadSystemPrompt reads the interviewer instruction from path. Any read
// failure or empty file falls back to the built-in prompt so a missing asset
// never blocks a conversation.
func LoadSystemPrompt(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return fallbackSystemPrompt, err
	}
	content := strings.TrimSpace(string(b))
	if content == "" {
		return fallbackSystemPrompt, fmt.Errorf("system prompt %s is empty", path)
	}
	return content, nil
}

// userPromptEnvelope wraps the raw user message with the response-format
// contract sent to the model. Only the outbound provider payload carries the
// envelope; the ledger and cache store the raw text.
func userPromptEnvelope(message string) string {
	return fmt.Sprintf(`%s

If you need more information, ask the user specific questions.
Always push the user to provide as much specific information as possible.

Respond in JSON format with the following structure:
`+"```json"+`
{
    "next_question": "Your question here",
    "examples": ["Example 1", "Example 2"],
    "summary": {
        "skills": "summary of skills. Include specific technologies or methodologies if applicable.",
        "experience": "summary of work experience. Include specific roles or projects if applicable.",
        "education": "summary of education. Include degrees or certifications if applicable.",
        "career_goals": "summary of career goals. Include specific aspirations or industries if applicable.",
        "matching": "summary of how the user's profile matches the wanted job and position. Include specific skills or experiences that align with the requirements.",
        "level": "summary of the user's level of expertise. Include specific levels such as junior, mid-level, or senior.",
        "wanted_level": "summary of the user's level of expertise in the field of the wanted job and position. Include specific levels such as junior, mid-level, or senior."
    },
    "completed": false
}
`+"```"+`

With the following rules:
- Always respond in JSON format.
- Set the "completed" field to true when you have enough information to conclude the conversation.`, message)
}

// jobSearchPrompt serializes the profile summary into the headhunter request.
func jobSearchPrompt(summary Summary) string {
	b, err := json.Marshal(summary)
	if err != nil {
		b = []byte("{}")
	}
	return fmt.Sprintf(`I'm looking for job opportunities based on the following profile summary:
`+"```%s```"+`

Please provide a list of actively hiring jobs that match this profile.
Prefer jobs that were posted in the last 30 days.`, string(b))
}

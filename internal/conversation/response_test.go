package conversation

import (
	"strings"
	"testing"
)

func TestParseReply_Malformed(t *testing.T) {
	reply, ok := ParseReply("not json")
	if ok {
		t.Fatalf("expected parse failure")
	}
	if reply.Completed {
		t.Fatalf("fallback payload must not be completed")
	}
	if strings.TrimSpace(reply.NextQuestion) == "" {
		t.Fatalf("fallback payload must carry an apology message")
	}
	if reply.Examples == nil || len(reply.Examples) != 0 {
		t.Fatalf("fallback examples should be empty, got %v", reply.Examples)
	}
}

func TestParseReply_Completed(t *testing.T) {
	raw := `{"next_question": "", "summary": {"skills": "Go"}, "completed": true}`
	reply, ok := ParseReply(raw)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if !reply.Completed {
		t.Fatalf("expected completed=true")
	}
	if reply.Summary.Skills != "Go" {
		t.Fatalf("unexpected summary: %+v", reply.Summary)
	}
}

func TestParseReply_MissingCompletedStaysOpen(t *testing.T) {
	reply, ok := ParseReply(`{"next_question": "What do you do?", "examples": ["I build APIs"]}`)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if reply.Completed {
		t.Fatalf("absent completed field must classify as not complete")
	}
	if reply.NextQuestion != "What do you do?" {
		t.Fatalf("unexpected next question: %q", reply.NextQuestion)
	}
}

func TestParseReply_NonBoolCompletedFallsBack(t *testing.T) {
	reply, ok := ParseReply(`{"next_question": "q", "completed": "yes"}`)
	if ok {
		t.Fatalf("non-bool completed should fail strict decode")
	}
	if reply.Completed {
		t.Fatalf("fallback must classify as not complete")
	}
}

func TestParseReply_NormalizesNilExamples(t *testing.T) {
	reply, ok := ParseReply(`{"next_question": "q"}`)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if reply.Examples == nil {
		t.Fatalf("examples should be normalized to an empty slice")
	}
}

func TestParseJobResult_Malformed(t *testing.T) {
	result, ok := ParseJobResult("<<garbage>>")
	if ok {
		t.Fatalf("expected parse failure")
	}
	if len(result.Jobs) != 0 {
		t.Fatalf("fallback job list should be empty")
	}
	if strings.TrimSpace(result.Message) == "" {
		t.Fatalf("fallback must carry an apology message")
	}
}

func TestParseJobResult_EmptyListIsValid(t *testing.T) {
	result, ok := ParseJobResult(`{"jobs_list": [], "message": "No open positions matched."}`)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if result.Jobs == nil || len(result.Jobs) != 0 {
		t.Fatalf("expected empty job list, got %v", result.Jobs)
	}
	if result.Message == "" {
		t.Fatalf("expected message to survive")
	}
}

func TestParseJobResult_Postings(t *testing.T) {
	raw := `{"jobs_list": [{"title": "Backend Engineer", "company": "Acme", "location": "Remote", "description": "Go services", "url": "https://example.com/1"}], "message": "One match."}`
	result, ok := ParseJobResult(raw)
	if !ok {
		t.Fatalf("expected parse success")
	}
	if len(result.Jobs) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(result.Jobs))
	}
	j := result.Jobs[0]
	if j.Title != "Backend Engineer" || j.Company != "Acme" || j.URL != "https://example.com/1" {
		t.Fatalf("unexpected posting: %+v", j)
	}
}

package conversation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"careermate/internal/ai"
)

// Policy bundles the per-conversation knobs the orchestrator enforces.
type Policy struct {
	RateLimit       int
	RateWindow      time.Duration
	CacheTTL        time.Duration
	MaxUserTurns    int
	MaxTokens       int
	Temperature     float32
	ProviderTimeout time.Duration
}

func (p Policy) withDefaults() Policy {
	if p.RateLimit <= 0 {
		p.RateLimit = 10
	}
	if p.RateWindow <= 0 {
		p.RateWindow = time.Minute
	}
	if p.CacheTTL <= 0 {
		p.CacheTTL = time.Hour
	}
	if p.MaxUserTurns <= 0 {
		p.MaxUserTurns = 10
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = 1500
	}
	if p.Temperature <= 0 {
		p.Temperature = 0.7
	}
	if p.ProviderTimeout <= 0 {
		p.ProviderTimeout = 90 * time.Second
	}
	return p
}

type ResultKind string

const (
	ResultReply ResultKind = "reply"
	ResultJobs  ResultKind = "jobs"
)

// AskResult is either a continuing interviewer reply or, once the dialogue is
// complete, the job-search payload that closes it.
type AskResult struct {
	Kind               ResultKind
	Reply              *StructuredReply
	Jobs               *JobSearchResult
	AssistantMessageID uint64
}

type Service struct {
	repo         *Repo
	cache        Cache
	limiter      Limiter
	provider     ai.Provider
	systemPrompt string
	policy       Policy
	log          *zap.Logger
}

func NewService(repo *Repo, cache Cache, limiter Limiter, provider ai.Provider, systemPrompt string, policy Policy, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	if systemPrompt == "" {
		systemPrompt = fallbackSystemPrompt
	}
	return &Service{
		repo:         repo,
		cache:        cache,
		limiter:      limiter,
		provider:     provider,
		systemPrompt: systemPrompt,
		policy:       policy.withDefaults(),
		log:          log,
	}
}

func (s *Service) CreateConversation(ctx context.Context) (*Conversation, error) {
	c := &Conversation{}
	if err := s.repo.CreateConversation(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) ListConversations(ctx context.Context, offset, limit int) ([]Conversation, error) {
	return s.repo.ListConversations(ctx, offset, limit)
}

// History reads the ordered ledger directly; the cache is not consulted.
func (s *Service) History(ctx context.Context, conversationID string) ([]Message, error) {
	if _, err := s.repo.GetConversation(ctx, conversationID); err != nil {
		return nil, err
	}
	return s.repo.ListMessagesAsc(ctx, conversationID)
}

// DeleteConversation drops the cache entry and then the ledger rows. After
// this, the id behaves as brand new again.
func (s *Service) DeleteConversation(ctx context.Context, conversationID string) error {
	if err := s.cache.DeleteMessages(ctx, conversationID); err != nil {
		s.log.Warn("conversation cache delete failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
	}
	return s.repo.DeleteConversation(ctx, conversationID)
}

// Ask runs one full turn: rate gate, state load, user turn append, model
// exchange, classification, and either the continuing reply or the job-search
// completion. Both appends for a turn land in the ledger before the single
// cache refresh.
func (s *Service) Ask(ctx context.Context, conversationID, userText string) (*AskResult, error) {
	allowed, err := s.limiter.Allow(ctx, conversationID, s.policy.RateLimit, s.policy.RateWindow)
	if err != nil {
		// Fail closed: a broken counter store must not open the gate.
		s.log.Error("rate limiter unavailable, denying request",
			zap.String("conversation_id", conversationID), zap.Error(err))
		return nil, ErrRateLimited
	}
	if !allowed {
		return nil, ErrRateLimited
	}

	// Reject before touching any state when the model backend is missing its
	// credentials or model name.
	if !s.provider.Configured() {
		return nil, ErrModelUnconfigured
	}

	msgs, err := s.loadMessages(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	// Safety valve: after enough user turns, stop interviewing and search
	// jobs with whatever summary the dialogue produced, even an empty one.
	if countUserTurns(msgs) >= s.policy.MaxUserTurns {
		return s.completeWithJobs(ctx, conversationID, userText, msgs, latestSummary(msgs))
	}

	// The user turn is durable before the provider call and is never rolled
	// back, even if the call times out or fails.
	msgs, err = s.appendTurn(ctx, conversationID, msgs, RoleUser, userText)
	if err != nil {
		return nil, err
	}

	raw, err := s.complete(ctx, withEnvelope(msgs, userText))
	if err != nil {
		s.refreshCache(ctx, conversationID, msgs)
		return nil, err
	}

	reply, parsedOK := ParseReply(raw)
	if !parsedOK {
		s.log.Warn("malformed model response, using fallback payload",
			zap.String("conversation_id", conversationID), zap.String("raw", raw))
	}

	if !reply.Completed {
		am := &Message{ConversationID: conversationID, Role: RoleAssistant, Content: raw}
		if err := s.repo.InsertMessage(ctx, am); err != nil {
			return nil, err
		}
		msgs = append(msgs, ai.Message{Role: RoleAssistant, Content: raw})
		s.refreshCache(ctx, conversationID, msgs)
		return &AskResult{Kind: ResultReply, Reply: &reply, AssistantMessageID: am.ID}, nil
	}

	return s.finishWithJobs(ctx, conversationID, msgs, reply.Summary)
}

// completeWithJobs handles the safety-valve path: the user turn has not been
// appended yet, so both appends happen here.
func (s *Service) completeWithJobs(ctx context.Context, conversationID, userText string, msgs []ai.Message, summary Summary) (*AskResult, error) {
	msgs, err := s.appendTurn(ctx, conversationID, msgs, RoleUser, userText)
	if err != nil {
		return nil, err
	}
	return s.finishWithJobs(ctx, conversationID, msgs, summary)
}

// finishWithJobs dispatches the headhunter exchange and persists its result
// as the closing assistant turn.
func (s *Service) finishWithJobs(ctx context.Context, conversationID string, msgs []ai.Message, summary Summary) (*AskResult, error) {
	result, err := s.searchJobs(ctx, summary)
	if err != nil {
		s.refreshCache(ctx, conversationID, msgs)
		return nil, err
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	am := &Message{ConversationID: conversationID, Role: RoleAssistant, Content: string(payload)}
	if err := s.repo.InsertMessage(ctx, am); err != nil {
		return nil, err
	}
	msgs = append(msgs, ai.Message{Role: RoleAssistant, Content: string(payload)})
	s.refreshCache(ctx, conversationID, msgs)
	return &AskResult{Kind: ResultJobs, Jobs: &result, AssistantMessageID: am.ID}, nil
}

func (s *Service) searchJobs(ctx context.Context, summary Summary) (JobSearchResult, error) {
	raw, err := s.complete(ctx, []ai.Message{
		{Role: RoleSystem, Content: headhunterSystemPrompt},
		{Role: RoleUser, Content: jobSearchPrompt(summary)},
	})
	if err != nil {
		return JobSearchResult{}, err
	}
	result, parsedOK := ParseJobResult(raw)
	if !parsedOK {
		s.log.Warn("malformed job search response, using fallback payload",
			zap.String("raw", raw))
	}
	return result, nil
}

// complete bounds every provider exchange with the policy timeout, so a hung
// backend surfaces as ErrProviderUnavailable instead of a stuck request.
func (s *Service) complete(ctx context.Context, msgs []ai.Message) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, s.policy.ProviderTimeout)
	defer cancel()

	raw, err := s.provider.Complete(cctx, msgs, ai.Options{
		MaxTokens:   s.policy.MaxTokens,
		Temperature: s.policy.Temperature,
		JSONOutput:  true,
	})
	if err != nil {
		if errors.Is(err, ai.ErrNotConfigured) {
			return "", ErrModelUnconfigured
		}
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return raw, nil
}

// loadMessages resolves conversation state: cache hit, else ledger, else a
// freshly bootstrapped conversation seeded with the system instruction.
func (s *Service) loadMessages(ctx context.Context, conversationID string) ([]ai.Message, error) {
	cached, hit, err := s.cache.GetMessages(ctx, conversationID)
	if err != nil {
		// A broken cache degrades to the ledger path.
		s.log.Warn("conversation cache read failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
	} else if hit {
		return cached, nil
	}

	ledger, err := s.repo.ListMessagesAsc(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	var msgs []ai.Message
	if len(ledger) == 0 {
		if err := s.repo.EnsureConversation(ctx, conversationID); err != nil {
			return nil, err
		}
		if err := s.repo.InsertMessage(ctx, &Message{
			ConversationID: conversationID,
			Role:           RoleSystem,
			Content:        s.systemPrompt,
		}); err != nil {
			return nil, err
		}
		msgs = []ai.Message{{Role: RoleSystem, Content: s.systemPrompt}}
	} else {
		msgs = toProviderMessages(ledger)
	}

	s.refreshCache(ctx, conversationID, msgs)
	return msgs, nil
}

func (s *Service) appendTurn(ctx context.Context, conversationID string, msgs []ai.Message, role, content string) ([]ai.Message, error) {
	if err := s.repo.InsertMessage(ctx, &Message{
		ConversationID: conversationID,
		Role:           role,
		Content:        content,
	}); err != nil {
		return nil, err
	}
	return append(msgs, ai.Message{Role: role, Content: content}), nil
}

func (s *Service) refreshCache(ctx context.Context, conversationID string, msgs []ai.Message) {
	if err := s.cache.SetMessages(ctx, conversationID, msgs, s.policy.CacheTTL); err != nil {
		// Never fail the user request for a cache fault.
		s.log.Warn("conversation cache refresh failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
	}
}

// withEnvelope swaps the trailing user turn for its prompt envelope in the
// outbound payload. The ledger and cache keep the raw text.
func withEnvelope(msgs []ai.Message, userText string) []ai.Message {
	out := make([]ai.Message, len(msgs))
	copy(out, msgs)
	out[len(out)-1] = ai.Message{Role: RoleUser, Content: userPromptEnvelope(userText)}
	return out
}

func countUserTurns(msgs []ai.Message) int {
	n := 0
	for _, m := range msgs {
		if m.Role == RoleUser {
			n++
		}
	}
	return n
}

// latestSummary re-parses assistant turns newest-first for the last usable
// profile summary. A dialogue that never produced one yields the zero value.
func latestSummary(msgs []ai.Message) Summary {
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role != RoleAssistant {
			continue
		}
		if reply, ok := ParseReply(msgs[i].Content); ok {
			return reply.Summary
		}
	}
	return Summary{}
}

func toProviderMessages(ledger []Message) []ai.Message {
	out := make([]ai.Message, 0, len(ledger))
	for _, m := range ledger {
		out = append(out, ai.Message{Role: m.Role, Content: m.Content})
	}
	return out
}

func (s *Service) CreateJob(ctx context.Context, job *AskJob) error {
	return s.repo.CreateJob(ctx, job)
}

func (s *Service) CreateJobOrGetExisting(ctx context.Context, job *AskJob) (*AskJob, bool, error) {
	return s.repo.CreateJobOrGetExisting(ctx, job)
}

func (s *Service) GetJob(ctx context.Context, jobID string) (*AskJob, error) {
	return s.repo.GetJobByID(ctx, jobID)
}

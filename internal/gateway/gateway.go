package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yungbote/interviewhub-backend/internal/clients/openai"
	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
	"github.com/yungbote/interviewhub-backend/internal/pkg/apierr"
	"github.com/yungbote/interviewhub-backend/internal/pkg/logger"
)

// Evaluation is the gateway's judgement of one interview answer.
type Evaluation struct {
	Feedback    string
	Correctness prep.AnswerVerdict
}

// Summary closes a knowledge-test sub-dialogue.
type Summary struct {
	Rating          float64
	Passed          bool
	OverallFeedback string
}

// Gateway is the single chokepoint for all model calls. It is stateless
// across calls; all conversational state is passed in by the caller. Each
// logical call walks a fixed model fallback chain and surfaces one terminal
// UpstreamUnavailable when the chain is exhausted.
type Gateway interface {
	Classify(ctx context.Context, goalText string) (prep.EventType, error)
	GenerateTitle(ctx context.Context, goalText string, eventType prep.EventType) (string, error)
	Converse(ctx context.Context, eventType prep.EventType, messages []prep.Message) (string, error)
	// GenerateChecklist returns the raw model output; the checklist validator
	// owns parsing. repairHint is non-empty on the one retry after a
	// malformed first attempt.
	GenerateChecklist(ctx context.Context, eventType prep.EventType, goalText string, context map[string]string, repairHint string) (string, error)
	GenerateInterviewQuestion(ctx context.Context, topic string, asked []string) (string, error)
	EvaluateAnswer(ctx context.Context, topic, question, answer string) (Evaluation, error)
	SummarizeInterview(ctx context.Context, topic string, transcript []prep.Message, verdicts []prep.AnswerVerdict) (Summary, error)
}

type service struct {
	log         *logger.Logger
	client      openai.Client
	chains      ModelChains
	callTimeout time.Duration
}

func New(log *logger.Logger, client openai.Client, chains ModelChains, callTimeout time.Duration) Gateway {
	if callTimeout <= 0 {
		callTimeout = CallTimeout()
	}
	return &service{
		log:         log.With("service", "LLMGateway"),
		client:      client,
		chains:      chains,
		callTimeout: callTimeout,
	}
}

// callChain walks the model chain in priority order, stopping at the first
// success. Per-model failures are absorbed here; callers never learn which
// tier responded.
func (s *service) callChain(ctx context.Context, chain []string, messages []openai.Message, opts openai.Options) (string, error) {
	if len(chain) == 0 {
		return "", apierr.Newf(apierr.KindUpstreamUnavailable, "no models configured")
	}

	var lastErr error
	for _, model := range chain {
		callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
		out, err := s.client.Complete(callCtx, model, messages, opts)
		cancel()
		if err == nil {
			return out, nil
		}
		lastErr = err
		s.log.Warn("Model call failed, trying next fallback", "model", model, "error", err.Error())
		if ctx.Err() != nil {
			break
		}
	}

	return "", apierr.New(apierr.KindUpstreamUnavailable,
		fmt.Errorf("the model service is currently unavailable, please try again: %w", lastErr))
}

func (s *service) Classify(ctx context.Context, goalText string) (prep.EventType, error) {
	out, err := s.callChain(ctx, s.chains.Utility, []openai.Message{
		{Role: "system", Content: classifySystemPrompt},
		{Role: "user", Content: classifyUserPrompt(goalText)},
	}, openai.Options{Temperature: 0.3, MaxTokens: 10})
	if err != nil {
		// Classification degrades to keyword matching rather than failing
		// session creation.
		s.log.Warn("Classification chain exhausted; falling back to keywords", "error", err.Error())
		return classifyByKeyword(goalText), nil
	}

	raw := strings.ToLower(strings.TrimSpace(out))
	if et := prep.EventType(raw); et.Valid() {
		return et, nil
	}
	for _, et := range []prep.EventType{prep.EventInterview, prep.EventPresentation, prep.EventPerformanceReview, prep.EventNegotiation} {
		if strings.Contains(raw, string(et)) || strings.Contains(string(et), raw) {
			return et, nil
		}
	}
	return prep.EventOther, nil
}

func classifyByKeyword(goalText string) prep.EventType {
	text := strings.ToLower(goalText)
	switch {
	case strings.Contains(text, "interview"):
		return prep.EventInterview
	case strings.Contains(text, "presentation"):
		return prep.EventPresentation
	case strings.Contains(text, "review") || strings.Contains(text, "performance"):
		return prep.EventPerformanceReview
	case strings.Contains(text, "negotiat"):
		return prep.EventNegotiation
	}
	return prep.EventOther
}

func (s *service) GenerateTitle(ctx context.Context, goalText string, eventType prep.EventType) (string, error) {
	out, err := s.callChain(ctx, s.chains.Utility, []openai.Message{
		{Role: "system", Content: titleSystemPrompt},
		{Role: "user", Content: titleUserPrompt(goalText, eventType)},
	}, openai.Options{Temperature: 0.5, MaxTokens: 30})
	if err != nil {
		return truncateTitle(goalText), nil
	}
	title := strings.Trim(strings.TrimSpace(out), `"'`)
	if title == "" {
		return truncateTitle(goalText), nil
	}
	return title, nil
}

func truncateTitle(goalText string) string {
	goalText = strings.TrimSpace(goalText)
	runes := []rune(goalText)
	if len(runes) > 50 {
		return string(runes[:50])
	}
	return goalText
}

func (s *service) Converse(ctx context.Context, eventType prep.EventType, messages []prep.Message) (string, error) {
	conversation := make([]openai.Message, 0, len(messages)+2)
	conversation = append(conversation, openai.Message{Role: "system", Content: converseSystemPrompt})
	conversation = append(conversation, openai.Message{
		Role:    "user",
		Content: fmt.Sprintf("[Context: %s Be proactive in asking for this information.]", converseGuidanceFor(eventType)),
	})
	for _, m := range messages {
		if strings.TrimSpace(m.Content) == "" {
			continue
		}
		conversation = append(conversation, openai.Message{Role: string(m.Role), Content: m.Content})
	}

	return s.callChain(ctx, s.chains.Utility, conversation, openai.Options{Temperature: 0.7, MaxTokens: 1000})
}

func (s *service) GenerateChecklist(ctx context.Context, eventType prep.EventType, goalText string, context map[string]string, repairHint string) (string, error) {
	return s.callChain(ctx, s.chains.Generation, []openai.Message{
		{Role: "system", Content: checklistSystemPrompt},
		{Role: "user", Content: checklistUserPrompt(eventType, goalText, context, repairHint)},
	}, openai.Options{Temperature: 0.7, MaxTokens: 2000, JSONMode: true})
}

func (s *service) GenerateInterviewQuestion(ctx context.Context, topic string, asked []string) (string, error) {
	out, err := s.callChain(ctx, s.chains.Generation, []openai.Message{
		{Role: "system", Content: interviewQuestionSystemPrompt(topic)},
		{Role: "user", Content: interviewQuestionUserPrompt(topic, asked)},
	}, openai.Options{Temperature: 0.7, MaxTokens: 300})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

type evaluationPayload struct {
	Feedback    string `json:"feedback"`
	Correctness string `json:"correctness"`
}

func (s *service) EvaluateAnswer(ctx context.Context, topic, question, answer string) (Evaluation, error) {
	out, err := s.callChain(ctx, s.chains.Generation, []openai.Message{
		{Role: "system", Content: evaluateSystemPrompt(topic)},
		{Role: "user", Content: evaluateUserPrompt(question, answer)},
	}, openai.Options{Temperature: 0.3, MaxTokens: 500, JSONMode: true})
	if err != nil {
		return Evaluation{}, err
	}

	var payload evaluationPayload
	if uErr := json.Unmarshal([]byte(out), &payload); uErr != nil {
		// Model output is untrusted; degrade to treating the text as feedback
		// and infer the verdict from it.
		return Evaluation{Feedback: strings.TrimSpace(out), Correctness: inferVerdict(out)}, nil
	}

	verdict := prep.AnswerVerdict(strings.ToLower(strings.TrimSpace(payload.Correctness)))
	if !verdict.Valid() {
		verdict = inferVerdict(payload.Feedback)
	}
	feedback := strings.TrimSpace(payload.Feedback)
	if feedback == "" {
		return Evaluation{}, errors.New("evaluation missing feedback")
	}
	return Evaluation{Feedback: feedback, Correctness: verdict}, nil
}

// inferVerdict recovers a verdict from free-text feedback when the model
// ignored the JSON contract. Negative phrasing wins over positive since
// "not correct" contains "correct".
func inferVerdict(feedback string) prep.AnswerVerdict {
	text := strings.ToLower(feedback)

	negative := []string{"incorrect", "wrong", "not quite", "not correct", "not right", "mistaken", "misunderstanding"}
	partial := []string{"partially", "partly", "mostly", "somewhat", "almost", "close"}
	positive := []string{"correct", "right", "accurate", "excellent", "exactly", "spot on", "well done"}

	for _, kw := range negative {
		if strings.Contains(text, kw) {
			return prep.VerdictIncorrect
		}
	}
	for _, kw := range partial {
		if strings.Contains(text, kw) {
			return prep.VerdictPartial
		}
	}
	for _, kw := range positive {
		if strings.Contains(text, kw) {
			return prep.VerdictCorrect
		}
	}
	return prep.VerdictPartial
}

type summaryPayload struct {
	Rating          float64 `json:"rating"`
	Passed          bool    `json:"passed"`
	OverallFeedback string  `json:"overall_feedback"`
}

func (s *service) SummarizeInterview(ctx context.Context, topic string, transcript []prep.Message, verdicts []prep.AnswerVerdict) (Summary, error) {
	out, err := s.callChain(ctx, s.chains.Generation, []openai.Message{
		{Role: "system", Content: summarySystemPrompt(topic)},
		{Role: "user", Content: summaryUserPrompt(transcript)},
	}, openai.Options{Temperature: 0.3, MaxTokens: 600, JSONMode: true})
	if err != nil {
		return Summary{}, err
	}

	var payload summaryPayload
	feedback := strings.TrimSpace(out)
	rating := -1.0
	if uErr := json.Unmarshal([]byte(out), &payload); uErr == nil {
		feedback = strings.TrimSpace(payload.OverallFeedback)
		rating = payload.Rating
	}

	// The recorded verdicts are the ground truth when a full set exists; the
	// model's self-reported rating is only a fallback.
	if len(verdicts) == prep.InterviewTotalQuestions {
		rating = prep.RateVerdicts(verdicts)
	}
	if rating < 0 {
		rating = prep.InterviewPassThreshold
	}
	if rating > 10 {
		rating = 10
	}
	if feedback == "" {
		feedback = "Assessment complete."
	}

	return Summary{
		Rating:          rating,
		Passed:          rating >= prep.InterviewPassThreshold,
		OverallFeedback: feedback,
	}, nil
}

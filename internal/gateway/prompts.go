package gateway

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yungbote/interviewhub-backend/internal/domain/prep"
)

const classifySystemPrompt = "You are a classification assistant. Respond with only the event type."

func classifyUserPrompt(goalText string) string {
	return fmt.Sprintf(`Classify the following user goal into one of these event types: interview, presentation, performance_review, negotiation, other.

User goal: %q

Respond with ONLY the event type (one word, lowercase).`, goalText)
}

const titleSystemPrompt = "You are a title generator. Respond with only the title, no quotes or extra text."

func titleUserPrompt(goalText string, eventType prep.EventType) string {
	return fmt.Sprintf(`Generate a short, concise title (max 50 characters) for this event:

User goal: %q
Event type: %s

Respond with ONLY the title, no quotes.`, goalText, eventType)
}

const converseSystemPrompt = `You are InterviewHub, a structured preparation assistant. Your job is to efficiently gather the information needed to create a personalized, actionable preparation checklist.

Rules:
- Be friendly but focused; gather key information quickly
- Proactively ask for essential details instead of waiting for the user to volunteer them
- Ask at most ONE question per response
- For interviews the job description matters most: ask for it first, then interview format, company, key technologies, and timeline
- Once enough information is gathered, the system generates the checklist automatically; acknowledge briefly and stop asking
- Keep responses short and focused on information gathering`

var converseGuidance = map[prep.EventType]string{
	prep.EventInterview:         "The user is preparing for an interview. Ask for the job description early, then interview format (coding, system design, behavioral), company name, technologies, and timeline.",
	prep.EventPresentation:      "The user is preparing for a presentation. Ask about the audience, topic, duration, format, and key objectives.",
	prep.EventPerformanceReview: "The user is preparing for a performance review. Ask about their role, achievements to highlight, areas for improvement, and goals.",
	prep.EventNegotiation:       "The user is preparing for a negotiation. Ask what they are negotiating, their current situation, and desired outcomes.",
}

func converseGuidanceFor(eventType prep.EventType) string {
	if g, ok := converseGuidance[eventType]; ok {
		return g
	}
	return fmt.Sprintf("The user is preparing for a %s.", eventType)
}

const checklistSystemPrompt = `You are InterviewHub, an expert preparation assistant. Create concise, actionable, checkable TODO items that prepare the user for an upcoming event.

Output ONLY valid JSON matching this exact schema (no markdown, no code blocks):
{
  "title": "string",
  "event_type": "string",
  "assumptions": ["string"],
  "groups": [
    {"key": "context", "label": "Context Understanding", "items": [
      {"id": "uuid-string", "group_key": "context", "text": "Actionable task starting with a verb", "status": "todo", "priority": "high|med|low", "estimate_minutes": 30, "rationale": "optional short reason"}
    ]},
    {"key": "skills", "label": "Skills / Knowledge Prep", "items": []},
    {"key": "evidence", "label": "Evidence & Examples", "items": []},
    {"key": "delivery", "label": "Delivery & Execution", "items": []},
    {"key": "logistics", "label": "Logistics & Risk", "items": []}
  ],
  "next_3_actions": ["action 1", "action 2", "action 3"]
}

Requirements:
- Group tasks into the 5 readiness dimensions (context, skills, evidence, delivery, logistics)
- Keep total tasks between 10 and 18, each starting with a verb, specific and checkable
- Include priority for each task and estimate_minutes when reasonable
- Generate next_3_actions as the most urgent immediate steps
- Include assumptions whenever required information is missing
- Avoid generic advice; be specific to this user's situation
- If time is short (under 3 days), compress into urgent steps only`

func checklistUserPrompt(eventType prep.EventType, goalText string, context map[string]string, repairHint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generate a readiness checklist for this event:\n\n")
	fmt.Fprintf(&b, "Event type: %s\n", eventType)
	fmt.Fprintf(&b, "User goal: %s\n", goalText)
	if len(context) > 0 {
		b.WriteString("Answers provided:\n")
		keys := make([]string, 0, len(context))
		for k := range context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, "- %s: %s\n", k, context[k])
		}
	}
	if repairHint != "" {
		fmt.Fprintf(&b, "\nYour previous output was rejected: %s\nOutput strictly valid JSON matching the schema this time.\n", repairHint)
	}
	b.WriteString("\nOutput the JSON checklist now.")
	return b.String()
}

func interviewQuestionSystemPrompt(topic string) string {
	return fmt.Sprintf(`You are an expert interviewer conducting a knowledge assessment on: %q

Ask one focused question that tests practical knowledge and understanding. Questions should be progressive: start easier, get more challenging. Respond with ONLY the question text, no numbering, no preamble.`, topic)
}

func interviewQuestionUserPrompt(topic string, asked []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "I'm ready to test my knowledge on: %s\n\n", topic)
	if len(asked) == 0 {
		b.WriteString("Ask the first question. Keep it focused and practical.")
		return b.String()
	}
	b.WriteString("Questions already asked (do NOT repeat any of these, not even reworded):\n")
	for i, q := range asked {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	fmt.Fprintf(&b, "\nAsk question %d. It must cover a different aspect than all of the above.", len(asked)+1)
	return b.String()
}

func evaluateSystemPrompt(topic string) string {
	return fmt.Sprintf(`You are an expert interviewer evaluating an answer in a knowledge assessment on: %q

Evaluate the answer fairly and accurately:
- If it is correct or shows good understanding, say so positively
- If it is partially correct, note what is right and what needs improvement
- If it is wrong, explain why and give the correct answer

Respond with ONLY valid JSON: {"feedback": "2-4 sentence constructive feedback stating clearly whether the answer is correct, partially correct, or incorrect", "correctness": "correct|partial|incorrect"}`, topic)
}

func evaluateUserPrompt(question, answer string) string {
	return fmt.Sprintf("Question: %s\n\nCandidate answer: %s\n\nEvaluate now.", question, answer)
}

func summarySystemPrompt(topic string) string {
	return fmt.Sprintf(`You are an expert interviewer closing a %d-question knowledge assessment on: %q

Rate the performance on a 0-10 scale: each fully correct answer is worth 2.5 points, each partially correct answer 1.5, each incorrect answer 0.5. Cap at 10. A rating of %.1f or higher passes.

Respond with ONLY valid JSON: {"rating": 8.5, "passed": true, "overall_feedback": "Overall assessment with a breakdown of correct, partial, and incorrect answers plus what to improve"}`, prep.InterviewTotalQuestions, topic, prep.InterviewPassThreshold)
}

func summaryUserPrompt(transcript []prep.Message) string {
	var b strings.Builder
	b.WriteString("Assessment transcript:\n\n")
	for _, m := range transcript {
		fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
	}
	b.WriteString("\nSummarize the assessment now.")
	return b.String()
}

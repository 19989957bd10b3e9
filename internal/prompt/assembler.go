// Package prompt turns a question, its grounding passages, the language
// directive and the bounded history view into the messages sent to the
// generation service. Pure data transformation: no truncation happens here,
// inputs are pre-bounded by the caller.
package prompt

import (
	"strings"

	"healthpaddie/internal/domain"
)

// systemPrompt fixes the grounding rules for every answer.
const systemPrompt = `You are HealthPaddie, a safe and trusted health information assistant.
You MUST:
- Answer ONLY using the information from the provided context (RAG documents).
- If the answer is not in the context, say you do not know and advise the user to consult a healthcare professional.
- Give short, clear explanations (2-4 short paragraphs).
- Use friendly and respectful language.
- This is not a medical diagnosis. Always remind users to consult a doctor for serious issues.

User language instruction:
`

// Assemble builds the chat messages for one question.
func Assemble(question, languageInstruction string, turns []domain.Turn, passages []string) []domain.ChatMessage {
	var user strings.Builder
	user.WriteString("Chat history:\n")
	user.WriteString(renderHistory(turns))
	user.WriteString("\n\nUser question:\n")
	user.WriteString(question)
	user.WriteString("\n\nRelevant health information:\n")
	user.WriteString(strings.Join(passages, "\n\n"))
	user.WriteString("\n")

	return []domain.ChatMessage{
		{Role: domain.RoleSystem, Content: systemPrompt + languageInstruction},
		{Role: domain.RoleUser, Content: user.String()},
	}
}

func renderHistory(turns []domain.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		label := "User"
		if t.Role == domain.RoleAssistant {
			label = "Bot"
		}
		lines = append(lines, label+": "+t.Text)
	}
	return strings.Join(lines, "\n")
}

package chat

import (
	"fmt"
	"strings"

	"github.com/bobmcallan/folio/internal/models"
)

// greeting is the one-time opener appended when a user first reaches the
// chat. Kept short and ending in a single question.
const greeting = "Hi, I'm your Folio advisor. I'll ask a few questions to understand " +
	"your goals and comfort with risk, then suggest a portfolio you can accept " +
	"or adjust. To start: what are you investing for?"

const engineInstructions = `You are a friendly investment advisor helping a retail investor build a portfolio.

Rules:
- Ask at most one question per reply.
- Keep replies short and conversational.
- Do not recommend specific brokers or give tax advice.
- Once you know the investor's risk tolerance, goals, and target return, propose a portfolio.

When you propose a portfolio, include exactly one JSON block in this shape:

` + "```json" + `
{
  "risk_tolerance": "conservative|moderate|aggressive",
  "roi_expectations": 7.0,
  "allocations": [
    {"ticker": "VTI", "allocation_percentage": 60.0, "asset_type": "etf", "sector": "broad market"}
  ],
  "rationale": "one or two sentences on why this mix fits"
}
` + "```" + `

Allocation percentages must sum to 100. Do not include a JSON block unless you are proposing a portfolio.`

// buildPrompt assembles the full engine prompt: instructions, accumulated
// investor context, recent conversation, and the new user message.
func buildPrompt(contextBlock string, history []*models.ChatMessage, userText string) string {
	var sb strings.Builder
	sb.WriteString(engineInstructions)
	sb.WriteString("\n\n")
	sb.WriteString(contextBlock)

	if len(history) > 0 {
		sb.WriteString("\nRecent conversation:\n")
		for _, m := range history {
			fmt.Fprintf(&sb, "%s: %s\n", m.Role, m.Text)
		}
	}

	sb.WriteString("\nuser: ")
	sb.WriteString(userText)
	sb.WriteString("\nassistant:")
	return sb.String()
}

// historyWindow bounds how many prior turns ride along in the prompt.
const historyWindow = 12

func tailHistory(messages []*models.ChatMessage) []*models.ChatMessage {
	if len(messages) <= historyWindow {
		return messages
	}
	return messages[len(messages)-historyWindow:]
}

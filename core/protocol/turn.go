package protocol

import "slices"

// TurnKind discriminates the variants of a Turn.
type TurnKind string

const (
	TurnUserMessage      TurnKind = "user_message"
	TurnToolRequest      TurnKind = "tool_request"
	TurnToolResult       TurnKind = "tool_result"
	TurnAssistantMessage TurnKind = "assistant_message"
)

// Turn is one immutable entry of a session's conversation history.
//
// Text is set for user and assistant messages. Call is set for tool requests
// and tool results; a result repeats the call it answers so the pair can be
// correlated. Round groups the tool requests and results produced by a single
// model reply.
type Turn struct {
	Kind    TurnKind `json:"kind"`
	Text    string   `json:"text,omitempty"`
	Call    ToolCall `json:"call"`
	Content string   `json:"content,omitempty"`
	IsError bool     `json:"is_error,omitempty"`
	Round   int      `json:"round,omitempty"`
}

// UserMessage creates a user message turn.
func UserMessage(text string) Turn {
	return Turn{Kind: TurnUserMessage, Text: text}
}

// AssistantMessage creates a final assistant message turn.
func AssistantMessage(text string) Turn {
	return Turn{Kind: TurnAssistantMessage, Text: text}
}

// ToolRequest creates a turn recording the model's request to call a tool.
func ToolRequest(round int, call ToolCall) Turn {
	return Turn{Kind: TurnToolRequest, Call: call, Round: round}
}

// ToolResult creates a turn recording the outcome of a tool call. When isError
// is set, content holds the error payload fed back to the model.
func ToolResult(round int, call ToolCall, content string, isError bool) Turn {
	return Turn{Kind: TurnToolResult, Call: call, Content: content, IsError: isError, Round: round}
}

// BuildMessages converts a turn history into provider messages. A non-empty
// system prompt is emitted first. Consecutive tool turns of the same round
// collapse into one assistant message carrying every requested call, followed
// by one tool message per result in history order.
func BuildMessages(system string, turns []Turn) []Message {
	messages := make([]Message, 0, len(turns)+1)
	if system != "" {
		messages = append(messages, NewMessage(RoleSystem, system))
	}

	for i := 0; i < len(turns); {
		turn := turns[i]
		switch turn.Kind {
		case TurnUserMessage:
			messages = append(messages, NewMessage(RoleUser, turn.Text))
			i++
		case TurnAssistantMessage:
			messages = append(messages, NewMessage(RoleAssistant, turn.Text))
			i++
		case TurnToolRequest, TurnToolResult:
			j := i
			for j < len(turns) && isToolTurn(turns[j]) && turns[j].Round == turn.Round {
				j++
			}
			messages = append(messages, toolRound(turns[i:j])...)
			i = j
		default:
			i++
		}
	}
	return messages
}

func isToolTurn(t Turn) bool {
	return t.Kind == TurnToolRequest || t.Kind == TurnToolResult
}

func toolRound(turns []Turn) []Message {
	assistant := Message{Role: RoleAssistant}
	var results []Message
	for _, t := range turns {
		if t.Kind == TurnToolRequest {
			assistant.ToolCalls = append(assistant.ToolCalls, t.Call)
			continue
		}
		results = append(results, Message{
			Role:       RoleTool,
			Content:    t.Content,
			Name:       t.Call.Name,
			ToolCallID: t.Call.ID,
			IsError:    t.IsError,
		})
	}

	out := make([]Message, 0, len(results)+1)
	if len(assistant.ToolCalls) > 0 {
		out = append(out, assistant)
	}
	return append(out, results...)
}

// CloneMessages returns a copy of messages whose ToolCalls slices are not
// shared with the input.
func CloneMessages(in []Message) []Message {
	out := make([]Message, len(in))
	for i, m := range in {
		out[i] = m
		out[i].ToolCalls = slices.Clone(m.ToolCalls)
	}
	return out
}

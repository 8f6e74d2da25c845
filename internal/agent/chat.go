package agent

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/agentwire/agentwire/internal/events"
	"github.com/agentwire/agentwire/internal/llm"
	"github.com/agentwire/agentwire/internal/message"
	"github.com/agentwire/agentwire/internal/tool"
)

// ChatAgentConfig configures a ChatAgent.
type ChatAgentConfig struct {
	AgentID      string
	ThreadID     string
	Instructions string
	Model        string
	MaxTokens    int

	Client llm.Client
	// Tools, when set, contributes locally executable tools. Their
	// definitions are offered to the model alongside any definitions the
	// caller passes per run; only registry tools execute locally.
	Tools *tool.Registry

	InitialMessages []message.Message
}

// ChatAgent runs a single streamed model turn per run: it forwards the
// conversation to an llm.Client, streams assistant text as content events,
// defers tool-call events behind the open message, executes registry tools
// after the message closes, and finishes the run.
type ChatAgent struct {
	*Base
	client    llm.Client
	model     string
	maxTokens int
	registry  *tool.Registry
}

func NewChatAgent(cfg ChatAgentConfig) (*ChatAgent, error) {
	if cfg.Client == nil {
		return nil, errors.New("agent: llm client is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("agent: model is required")
	}
	agentID := cfg.AgentID
	if agentID == "" {
		agentID = uuid.NewString()
	}
	return &ChatAgent{
		Base:      NewBase(agentID, cfg.ThreadID, cfg.Instructions, cfg.InitialMessages),
		client:    cfg.Client,
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
		registry:  cfg.Tools,
	}, nil
}

func (a *ChatAgent) RunAgent(ctx context.Context, params RunParams, sub Subscriber) (*RunHandle, error) {
	if sub == nil {
		return nil, ErrNilSubscriber
	}
	if !a.acquireRun() {
		return nil, ErrRunInProgress
	}
	input := a.buildInput(params)
	return a.launch(ctx, a, input, sub, a.run), nil
}

// toolCallAccum collects one tool call's fragments across stream chunks.
type toolCallAccum struct {
	id        string
	name      string
	fragments []string
}

func (a *toolCallAccum) arguments() string {
	return strings.Join(a.fragments, "")
}

func (a *ChatAgent) run(ctx context.Context, input *RunInput, em *Emitter, handle *RunHandle) error {
	em.Emit(events.NewRunStarted(input.ThreadID, input.RunID))

	// The stream gets its own cancellable context so the provider's producer
	// goroutine unblocks as soon as this run stops consuming, whether the
	// loop below drains to completion or bails out early.
	streamCtx, stopStream := context.WithCancel(ctx)
	defer stopStream()

	stream, err := a.client.Chat(streamCtx, llm.ChatParams{
		Model:     a.model,
		System:    a.systemPrompt(input),
		MaxTokens: a.maxTokens,
		Messages:  input.Messages,
		Tools:     a.offeredTools(input),
	})
	if err != nil {
		return err
	}

	messageID := uuid.NewString()
	em.Emit(events.NewTextMessageStart(messageID, string(message.RoleAssistant)))

	var text strings.Builder
	calls := map[int]*toolCallAccum{}
	var order []int

	var streamErr error
	for ev := range stream {
		if handle.Cancelled() {
			break
		}
		switch ev.Type {
		case llm.StreamText:
			if ev.Text == "" {
				continue
			}
			text.WriteString(ev.Text)
			em.Emit(events.NewTextMessageContent(messageID, ev.Text))

		case llm.StreamToolCallDelta:
			acc, ok := calls[ev.ToolCallIndex]
			if !ok {
				acc = &toolCallAccum{id: ev.ToolCallID, name: ev.ToolCallName}
				if acc.id == "" {
					acc.id = uuid.NewString()
				}
				calls[ev.ToolCallIndex] = acc
				order = append(order, ev.ToolCallIndex)
			}
			if ev.ToolCallName != "" && acc.name == "" {
				acc.name = ev.ToolCallName
			}
			if ev.ToolCallArgs != "" {
				acc.fragments = append(acc.fragments, ev.ToolCallArgs)
			}

		case llm.StreamError:
			streamErr = ev.Err

		case llm.StreamUsage, llm.StreamDone:
		}
		if streamErr != nil {
			break
		}
	}

	// Each call is emitted as one contiguous start/args/end triple only
	// once its fragments are complete, so providers that interleave
	// fragments of different calls still produce well-formed triples.
	if streamErr == nil && !handle.Cancelled() {
		for _, idx := range order {
			acc := calls[idx]
			em.Emit(events.NewToolCallStart(acc.id, acc.name, messageID))
			for _, frag := range acc.fragments {
				em.Emit(events.NewToolCallArgs(acc.id, frag))
			}
			em.Emit(events.NewToolCallEnd(acc.id))
		}
	}

	// Close the message either way; deferred tool-call events flush here.
	em.Emit(events.NewTextMessageEnd(messageID))

	if streamErr != nil {
		return streamErr
	}

	sub := em.Subscriber()
	assistant := a.recordAssistant(sub, messageID, text.String(), calls, order)

	if !handle.Cancelled() {
		a.executeCalls(ctx, em, sub, assistant.ToolCalls)
	}
	sub.OnMessagesChanged(SubscriberParams{
		Messages: a.Messages(),
		State:    a.State(),
		Agent:    a,
		Input:    input,
	})

	em.Emit(events.NewRunFinished(input.ThreadID, input.RunID))
	return nil
}

// recordAssistant appends the streamed assistant turn to the history,
// reusing the streamed message id so consumers can correlate events with
// the stored message.
func (a *ChatAgent) recordAssistant(sub Subscriber, messageID, content string, calls map[int]*toolCallAccum, order []int) message.Message {
	msg := message.Message{
		ID:      messageID,
		Role:    message.RoleAssistant,
		Content: content,
	}
	for _, idx := range order {
		acc := calls[idx]
		msg.ToolCalls = append(msg.ToolCalls, message.ToolCall{
			ID:   acc.id,
			Type: message.ToolCallTypeFunction,
			Function: message.FunctionCall{
				Name:      acc.name,
				Arguments: acc.arguments(),
			},
		})
	}
	stored := a.AddMessage(msg)
	sub.OnNewMessage(&stored)
	return stored
}

// executeCalls runs each registry-backed tool call, emits its result event,
// and appends the tool message to the history. Calls for tools the registry
// does not know are left for the caller to resolve.
func (a *ChatAgent) executeCalls(ctx context.Context, em *Emitter, sub Subscriber, calls []message.ToolCall) {
	if a.registry == nil {
		return
	}
	for _, call := range calls {
		if _, ok := a.registry.Get(call.Function.Name); !ok {
			continue
		}
		result, err := a.registry.Execute(ctx, call.Function.Name, call.Function.Arguments)

		var toolMsg message.Message
		if err != nil {
			toolMsg = message.ToolError(call.ID, err.Error())
		} else {
			toolMsg = message.ToolResult(call.ID, result)
		}
		stored := a.AddMessage(toolMsg)
		sub.OnNewMessage(&stored)
		em.Emit(events.NewToolCallResult(call.ID, stored.ID, stored.EffectiveContent()))
	}
}

// offeredTools merges caller-declared definitions with the local registry,
// caller definitions winning on name collisions.
func (a *ChatAgent) offeredTools(input *RunInput) []message.ToolDefinition {
	defs := append([]message.ToolDefinition(nil), input.Tools...)
	if a.registry == nil {
		return defs
	}
	seen := map[string]bool{}
	for _, d := range defs {
		seen[d.Name] = true
	}
	for _, d := range a.registry.Defs() {
		if !seen[d.Name] {
			defs = append(defs, d)
		}
	}
	return defs
}

// systemPrompt folds caller-supplied context items into the instructions.
func (a *ChatAgent) systemPrompt(input *RunInput) string {
	if len(input.Context) == 0 {
		return a.Instructions()
	}
	var b strings.Builder
	b.WriteString(a.Instructions())
	b.WriteString("\n\nContext:\n")
	for _, item := range input.Context {
		b.WriteString("- ")
		b.WriteString(item.Description)
		b.WriteString(": ")
		b.WriteString(item.Value)
		b.WriteString("\n")
	}
	return b.String()
}

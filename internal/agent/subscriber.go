package agent

import (
	"github.com/agentwire/agentwire/internal/events"
	"github.com/agentwire/agentwire/internal/message"
)

// SubscriberParams is the snapshot handed to lifecycle hooks: the current
// message history and state, the agent that ran, and the run's input.
type SubscriberParams struct {
	Messages []message.Message
	State    map[string]any
	Agent    Agent
	Input    *RunInput
}

// Subscriber is the capability set a consumer implements to receive
// dispatched events and lifecycle notifications. OnEvent is mandatory;
// everything else has a safe no-op default via BaseSubscriber.
type Subscriber interface {
	// OnEvent receives every event exactly once, before its typed handler.
	OnEvent(ev events.Event)

	OnRunStarted(ev *events.RunStartedEvent)
	OnRunFinished(ev *events.RunFinishedEvent)
	OnRunError(ev *events.RunErrorEvent)
	OnStepStarted(ev *events.StepStartedEvent)
	OnStepFinished(ev *events.StepFinishedEvent)
	OnTextMessageStart(ev *events.TextMessageStartEvent)
	OnTextMessageContent(ev *events.TextMessageContentEvent)
	OnTextMessageEnd(ev *events.TextMessageEndEvent)
	OnToolCallStart(ev *events.ToolCallStartEvent)
	OnToolCallArgs(ev *events.ToolCallArgsEvent)
	OnToolCallEnd(ev *events.ToolCallEndEvent)
	OnToolCallResult(ev *events.ToolCallResultEvent)
	OnMessagesSnapshot(ev *events.MessagesSnapshotEvent)
	OnStateSnapshot(ev *events.StateSnapshotEvent)
	OnStateDelta(ev *events.StateDeltaEvent)
	OnRaw(ev *events.RawEvent)
	OnCustom(ev *events.CustomEvent)

	// OnRunInitialized fires once before the run body starts.
	OnRunInitialized(params SubscriberParams)
	// OnRunFinalized fires exactly once per run, after the terminal event.
	OnRunFinalized(params SubscriberParams)
	// OnNewMessage fires when the run appends a message to the history.
	OnNewMessage(msg *message.Message)
	// OnMessagesChanged fires after any history mutation during a run.
	OnMessagesChanged(params SubscriberParams)
}

// BaseSubscriber provides no-op defaults for every Subscriber method except
// OnEvent. Embed it and implement OnEvent.
type BaseSubscriber struct{}

func (BaseSubscriber) OnRunStarted(*events.RunStartedEvent)                 {}
func (BaseSubscriber) OnRunFinished(*events.RunFinishedEvent)               {}
func (BaseSubscriber) OnRunError(*events.RunErrorEvent)                     {}
func (BaseSubscriber) OnStepStarted(*events.StepStartedEvent)               {}
func (BaseSubscriber) OnStepFinished(*events.StepFinishedEvent)             {}
func (BaseSubscriber) OnTextMessageStart(*events.TextMessageStartEvent)     {}
func (BaseSubscriber) OnTextMessageContent(*events.TextMessageContentEvent) {}
func (BaseSubscriber) OnTextMessageEnd(*events.TextMessageEndEvent)         {}
func (BaseSubscriber) OnToolCallStart(*events.ToolCallStartEvent)           {}
func (BaseSubscriber) OnToolCallArgs(*events.ToolCallArgsEvent)             {}
func (BaseSubscriber) OnToolCallEnd(*events.ToolCallEndEvent)               {}
func (BaseSubscriber) OnToolCallResult(*events.ToolCallResultEvent)         {}
func (BaseSubscriber) OnMessagesSnapshot(*events.MessagesSnapshotEvent)     {}
func (BaseSubscriber) OnStateSnapshot(*events.StateSnapshotEvent)           {}
func (BaseSubscriber) OnStateDelta(*events.StateDeltaEvent)                 {}
func (BaseSubscriber) OnRaw(*events.RawEvent)                               {}
func (BaseSubscriber) OnCustom(*events.CustomEvent)                         {}
func (BaseSubscriber) OnRunInitialized(SubscriberParams)                    {}
func (BaseSubscriber) OnRunFinalized(SubscriberParams)                      {}
func (BaseSubscriber) OnNewMessage(*message.Message)                        {}
func (BaseSubscriber) OnMessagesChanged(SubscriberParams)                   {}

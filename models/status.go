package models

import (
	"encoding/json"
	"strings"
)

// Status is the lifecycle state of an order
type Status int

const (
	StatusUnknown Status = iota
	StatusPending
	StatusInQueue
	StatusInProcess
	StatusReady
	StatusServed
	StatusPendingPayment
	StatusCompleted
)

// statusWire is the canonical backend spelling of each status
var statusWire = map[Status]string{
	StatusPending:        "PENDING",
	StatusInQueue:        "IN_QUEUE",
	StatusInProcess:      "IN_PROCESS",
	StatusReady:          "READY",
	StatusServed:         "SERVED",
	StatusPendingPayment: "PENDING_PAYMENT",
	StatusCompleted:      "COMPLETED",
}

// statusAliases maps legacy spellings (after key normalization) to a status
var statusAliases = map[string]Status{
	"IN_PROGRESS":      StatusInProcess,
	"PROCESSING":       StatusInProcess,
	"COOKING":          StatusInProcess,
	"QUEUED":           StatusInQueue,
	"AWAITING_PAYMENT": StatusPendingPayment,
	"PAID":             StatusCompleted,
	"DONE":             StatusCompleted,
}

// ParseStatus accepts any casing and '-', ' ' or '_' separators.
// Unrecognized values map to StatusUnknown.
func ParseStatus(raw string) Status {
	key := strings.ToUpper(strings.TrimSpace(raw))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	for status, wire := range statusWire {
		if wire == key {
			return status
		}
	}
	if status, ok := statusAliases[key]; ok {
		return status
	}
	return StatusUnknown
}

// String returns the canonical wire name
func (s Status) String() string {
	if wire, ok := statusWire[s]; ok {
		return wire
	}
	return "UNKNOWN"
}

// IsTerminal reports whether no further transition is permitted
func (s Status) IsTerminal() bool {
	return s == StatusCompleted
}

func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Status) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ParseStatus(raw)
	return nil
}

// Action is a user-initiated request to move an order along its lifecycle
type Action string

const (
	ActionSendToKitchen   Action = "send_to_kitchen"
	ActionStartCooking    Action = "start_cooking"
	ActionMarkReady       Action = "mark_ready"
	ActionServed          Action = "served"
	ActionProceedPayment  Action = "proceed_payment"
	ActionCompletePayment Action = "complete_payment"
)

// transitions lists the single source state and target state of every action
var transitions = map[Action]struct{ From, To Status }{
	ActionSendToKitchen:   {StatusPending, StatusInQueue},
	ActionStartCooking:    {StatusInQueue, StatusInProcess},
	ActionMarkReady:       {StatusInProcess, StatusReady},
	ActionServed:          {StatusReady, StatusServed},
	ActionProceedPayment:  {StatusServed, StatusPendingPayment},
	ActionCompletePayment: {StatusPendingPayment, StatusCompleted},
}

// ParseAction returns the action and whether it is known
func ParseAction(raw string) (Action, bool) {
	a := Action(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := transitions[a]
	return a, ok
}

// Source returns the status an order must be in for the action to apply
func (a Action) Source() Status {
	return transitions[a].From
}

// Target returns the status the action moves an order to
func (a Action) Target() Status {
	return transitions[a].To
}

// IsChefAction reports whether the action belongs to the kitchen workflow
func (a Action) IsChefAction() bool {
	return a == ActionStartCooking || a == ActionMarkReady
}

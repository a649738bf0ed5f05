package api

import (
	"encoding/json"
	"sort"

	"github.com/phrazzld/maika/internal/actions"
)

// toActionRequest flattens the tracker into an action request. The first
// value wins when an entity repeats. Numeric entity values are kept as
// json.Number.
func toActionRequest(req *WebhookRequest) actions.Request {
	msg := req.Tracker.LatestMessage

	entities := make(map[string]any, len(msg.Entities))
	for _, e := range msg.Entities {
		if e.Entity == "" {
			continue
		}
		if _, seen := entities[e.Entity]; seen {
			continue
		}
		entities[e.Entity] = decodeEntityValue(e.Value)
	}

	state := req.Tracker.Slots
	if state == nil {
		state = map[string]any{}
	}

	return actions.Request{
		UserID:   req.SenderID,
		Entities: entities,
		RawText:  msg.Text,
		Intent:   msg.Intent.Name,
		State:    state,
	}
}

func decodeEntityValue(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n
	}
	var v any
	if err := json.Unmarshal(raw, &v); err == nil {
		return v
	}
	return string(raw)
}

// toWebhookResponse renders slot updates sorted by name so responses are
// stable.
func toWebhookResponse(resp actions.Response) WebhookResponse {
	out := WebhookResponse{
		Events:    make([]SlotEvent, 0, len(resp.StateUpdates)),
		Responses: make([]TextResponse, 0, len(resp.Segments)),
	}

	names := make([]string, 0, len(resp.StateUpdates))
	for name := range resp.StateUpdates {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		out.Events = append(out.Events, SlotEvent{Event: "slot", Name: name, Value: resp.StateUpdates[name]})
	}

	for _, text := range resp.Segments {
		out.Responses = append(out.Responses, TextResponse{Text: text})
	}
	return out
}

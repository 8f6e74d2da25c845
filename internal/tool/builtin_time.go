package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// CurrentTimeTool reports the current time, optionally in a named IANA
// time zone.
type CurrentTimeTool struct{}

func (CurrentTimeTool) Name() string { return "current_time" }

func (CurrentTimeTool) Description() string {
	return "Get the current date and time, optionally in a specific IANA time zone."
}

func (CurrentTimeTool) Parameters() json.RawMessage {
	return SchemaJSON(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"timezone": map[string]any{
				"type":        "string",
				"description": "IANA time zone name, e.g. America/New_York. Defaults to UTC.",
			},
		},
	})
}

func (CurrentTimeTool) Execute(_ context.Context, params json.RawMessage) (string, error) {
	var args struct {
		Timezone string `json:"timezone"`
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, &args); err != nil {
			return "", fmt.Errorf("invalid arguments: %w", err)
		}
	}
	loc := time.UTC
	if args.Timezone != "" {
		var err error
		loc, err = time.LoadLocation(args.Timezone)
		if err != nil {
			return "", fmt.Errorf("unknown timezone %q: %w", args.Timezone, err)
		}
	}
	now := time.Now().In(loc)
	out, err := json.Marshal(map[string]string{
		"time":     now.Format(time.RFC3339),
		"timezone": loc.String(),
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}

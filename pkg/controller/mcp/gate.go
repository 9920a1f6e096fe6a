package mcp

import (
	"context"
	"encoding/json"
	"slices"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/m-mizutani/goerr/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/secmon-lab/coffeechat/pkg/utils/logging"
)

// MsgOnboardingRequired is returned by every gated tool until the user has onboarded
const MsgOnboardingRequired = "Please complete onboarding by typing 'initiate onboarding'"

// OnboardingChecker reports whether the calling user may use gated tools
type OnboardingChecker func(ctx context.Context) (bool, error)

// Enforce wraps h so that it only runs for onboarded users. Otherwise the
// caller gets MsgOnboardingRequired and an empty output shaped after Out's
// schema. Checker errors count as not onboarded.
func Enforce[In, Out any](check OnboardingChecker, h mcp.ToolHandlerFor[In, Out]) mcp.ToolHandlerFor[In, Out] {
	return func(ctx context.Context, req *mcp.CallToolRequest, in In) (*mcp.CallToolResult, Out, error) {
		ok, err := check(ctx)
		if err != nil {
			logging.From(ctx).Warn("onboarding check failed", "error", err)
			ok = false
		}
		if ok {
			return h(ctx, req, in)
		}

		out, err := Placeholder[Out]()
		if err != nil {
			logging.From(ctx).Error("failed to build placeholder output", "error", err)
		}
		return textResult(MsgOnboardingRequired), out, nil
	}
}

// Placeholder returns a value of Out whose JSON form satisfies Out's schema
// with empty values: arrays are [], strings "", numbers 0, booleans false and
// objects carry placeholder properties.
func Placeholder[Out any]() (Out, error) {
	var out Out

	schema, err := jsonschema.For[Out](nil)
	if err != nil {
		return out, goerr.Wrap(err, "failed to infer output schema")
	}

	raw, err := json.Marshal(placeholderValue(schema))
	if err != nil {
		return out, goerr.Wrap(err, "failed to marshal placeholder")
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, goerr.Wrap(err, "failed to decode placeholder")
	}
	return out, nil
}

func placeholderValue(s *jsonschema.Schema) any {
	if s == nil {
		return nil
	}

	switch schemaType(s) {
	case "array":
		return []any{}
	case "string":
		return ""
	case "number", "integer":
		return 0
	case "boolean":
		return false
	case "object":
		obj := make(map[string]any, len(s.Properties))
		for name, prop := range s.Properties {
			// optional properties stay absent so pointers decode to nil
			if !slices.Contains(s.Required, name) {
				continue
			}
			obj[name] = placeholderValue(prop)
		}
		return obj
	default:
		return nil
	}
}

// schemaType picks the concrete type of s. Nullable slices and maps are
// inferred as ["null", T]; T wins.
func schemaType(s *jsonschema.Schema) string {
	if s.Type != "" {
		return s.Type
	}
	for _, t := range s.Types {
		if t != "null" {
			return t
		}
	}
	return ""
}

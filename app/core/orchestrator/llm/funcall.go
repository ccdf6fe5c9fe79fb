package llm

import (
	"regexp"
	"strings"
)

// The model requests an action by emitting a marker line:
//
//	FUNCTION_CALL: create_task(title="Fix login bug", priority="HIGH")
//
// Anything that doesn't match is treated as a plain reply. Local models
// don't always keep the marker uppercase, so the match ignores case.
var (
	funcCallPattern = regexp.MustCompile(`(?i)FUNCTION_CALL:\s*(\w+)\((.*?)\)`)
	paramPattern    = regexp.MustCompile(`(\w+)=["']([^"']+)["']`)
)

type FunctionCall struct {
	Name   string
	Params map[string]string
}

// ParseFunctionCall extracts the first function-call marker from a model
// reply. Unquoted or malformed arguments are skipped, not errors.
func ParseFunctionCall(reply string) (FunctionCall, bool) {
	m := funcCallPattern.FindStringSubmatch(reply)
	if m == nil {
		return FunctionCall{}, false
	}
	call := FunctionCall{Name: m[1], Params: map[string]string{}}
	for _, pm := range paramPattern.FindAllStringSubmatch(m[2], -1) {
		call.Params[pm[1]] = pm[2]
	}
	return call, true
}

// StripFunctionCall removes the marker line so leftover prose can be
// shown to the user.
func StripFunctionCall(reply string) string {
	return strings.TrimSpace(funcCallPattern.ReplaceAllString(reply, ""))
}

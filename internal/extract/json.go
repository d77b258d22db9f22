// Package extract turns a scanned invoice into structured fields via a
// vision model. Malformed model output surfaces as a ParseError that
// aborts the audit; retry policy belongs to the caller.
package extract

import (
	"fmt"
	"strings"
)

// ParseError indicates the model's output could not be parsed into an
// invoice. It is a hard failure for the audit of that document.
type ParseError struct {
	Msg string
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ExtractJSONBlock pulls the outermost JSON object out of model output
// that may be wrapped in prose or markdown fences. Returns a ParseError
// when no object is present.
func ExtractJSONBlock(text string) ([]byte, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, &ParseError{Msg: "no JSON object found in model output"}
	}
	return []byte(text[start : end+1]), nil
}

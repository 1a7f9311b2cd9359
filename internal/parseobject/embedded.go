package parseobject

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/tidwall/jsonc"
)

const (
	startMarker = "/*{{{"
	endMarker   = "}}}*/"
)

// commentPattern matches from the first "/*" to the last "*/" of a line.
// Comments are neither nest-aware nor allowed to span lines.
var commentPattern = regexp.MustCompile(`/\*.*\*/`)

// StripComments removes block comments from a stylesheet
func StripComments(stylesheet string) string {
	return commentPattern.ReplaceAllString(stylesheet, "")
}

// ExtractEmbedded looks for a serialized parse object embedded in the
// stylesheet as /*{{{ ... }}}*/. It returns the markup with the marker
// removed and the decoded object. When there is no marker, po is nil and err
// is nil. When the marker is malformed, markup is the whole stylesheet, po is
// nil and err describes the problem.
//
// The payload is read as JSON with comments and trailing commas allowed.
func ExtractEmbedded(stylesheet string) (markup string, po *ParseObject, err error) {
	start := strings.Index(stylesheet, startMarker)
	if start == -1 {
		return stylesheet, nil, nil
	}
	before := stylesheet[:start]
	rest := stylesheet[start+len(startMarker):]
	end := strings.Index(rest, endMarker)
	if end == -1 {
		return stylesheet, nil, &MalformedCacheError{Reason: "missing " + endMarker}
	}

	po, err = FromJSON(jsonc.ToJSON([]byte(rest[:end])))
	if err != nil {
		return stylesheet, nil, &MalformedCacheError{Reason: "invalid payload", Err: err}
	}
	return before + rest[end+len(endMarker):], po, nil
}

// Embed prepends po to markup as an embedded parse object, so that parsing
// the result returns po without running the grammar
func Embed(markup string, po *ParseObject) (string, error) {
	payload, err := json.Marshal(po)
	if err != nil {
		return "", fmt.Errorf("failed to encode parse object: %w", err)
	}
	if strings.Contains(string(payload), endMarker) {
		return "", fmt.Errorf("parse object contains the %s marker", endMarker)
	}
	return startMarker + string(payload) + endMarker + "\n" + markup, nil
}

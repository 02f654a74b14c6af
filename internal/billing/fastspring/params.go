package fastspring

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"
)

// ParseBody flattens a webhook body into the string parameter map the
// signature is computed over. The provider posts form-encoded parameters;
// JSON bodies are accepted as well and scalar values are coerced to strings.
func ParseBody(contentType string, body []byte) (map[string]string, error) {
	if strings.Contains(strings.ToLower(contentType), "application/json") {
		return parseJSONBody(body)
	}
	return parseFormBody(body)
}

func parseFormBody(body []byte) (map[string]string, error) {
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return nil, err
	}
	params := make(map[string]string, len(values))
	for key, list := range values {
		if len(list) == 0 {
			params[key] = ""
			continue
		}
		params[key] = list[0]
	}
	return params, nil
}

func parseJSONBody(body []byte) (map[string]string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	params := make(map[string]string, len(raw))
	for key, value := range raw {
		params[key] = coerceString(value)
	}
	return params, nil
}

func coerceString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case json.Number:
		return typed.String()
	default:
		encoded, err := json.Marshal(typed)
		if err != nil {
			return ""
		}
		return string(encoded)
	}
}

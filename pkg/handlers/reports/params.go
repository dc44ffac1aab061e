package reports

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strings"
)

const maxBodyBytes = 1 << 20

// readParams extracts the params submitted for resource. Form fields are
// named "<resource>[<param>]"; JSON bodies nest them under the resource
// name. found is false when nothing was submitted for the resource.
func readParams(r *http.Request, resource string) (map[string]any, bool, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		return readJSONParams(r, resource)
	}

	if err := r.ParseForm(); err != nil {
		return nil, false, fmt.Errorf("invalid form: %w", err)
	}

	prefix := resource + "["
	params := make(map[string]any)
	for key, values := range r.Form {
		if !strings.HasPrefix(key, prefix) || !strings.HasSuffix(key, "]") {
			continue
		}
		name := key[len(prefix) : len(key)-1]
		if name == "" {
			continue
		}
		if len(values) == 1 {
			params[name] = values[0]
		} else {
			params[name] = values
		}
	}
	return params, len(params) > 0, nil
}

func readJSONParams(r *http.Request, resource string) (map[string]any, bool, error) {
	if r.Body == nil {
		return nil, false, nil
	}

	var body map[string]json.RawMessage
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return nil, false, fmt.Errorf("invalid json body: %w", err)
	}

	raw, ok := body[resource]
	if !ok || string(raw) == "null" {
		return nil, false, nil
	}

	var params map[string]any
	dec = json.NewDecoder(strings.NewReader(string(raw)))
	dec.UseNumber()
	if err := dec.Decode(&params); err != nil {
		return nil, false, fmt.Errorf("invalid %s params: %w", resource, err)
	}
	return params, true, nil
}

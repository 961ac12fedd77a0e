package normalize

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
)

// relation is a joined record the store may hand back as an object,
// a zero/one element array, a bare string or null.
type relation struct {
	Name string `mapstructure:"name"`
}

// stringList is a collection column that may arrive as a JSON array,
// a JSON-encoded string or null.
type stringList []string

var (
	relationType   = reflect.TypeOf(relation{})
	stringListType = reflect.TypeOf(stringList{})
	timeType       = reflect.TypeOf(time.Time{})
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// decodeRow copies a loosely typed row into out. Fields that cannot be
// coerced keep their zero value; the returned error only reports them.
func decodeRow(row map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			relationHook,
			stringListHook,
			timeHook,
		),
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(row)
}

func relationHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != relationType {
		return data, nil
	}
	return map[string]interface{}{"name": relationName(data)}, nil
}

func relationName(data interface{}) string {
	switch v := data.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case []byte:
		return strings.TrimSpace(string(v))
	case []interface{}:
		if len(v) == 0 {
			return ""
		}
		return relationName(v[0])
	case []map[string]interface{}:
		if len(v) == 0 {
			return ""
		}
		return relationName(v[0])
	case map[string]interface{}:
		for _, key := range []string{"name", "title", "label"} {
			if s, ok := v[key].(string); ok {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}

func stringListHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != stringListType {
		return data, nil
	}
	return toStringList(data), nil
}

func toStringList(data interface{}) []string {
	out := []string{}
	switch v := data.(type) {
	case string:
		return parseJSONList(v)
	case []byte:
		return parseJSONList(string(v))
	case []string:
		for _, s := range v {
			out = appendTrimmed(out, s)
		}
	case []interface{}:
		for _, item := range v {
			switch s := item.(type) {
			case string:
				out = appendTrimmed(out, s)
			case map[string]interface{}:
				out = appendTrimmed(out, relationName(s))
			}
		}
	}
	return out
}

func parseJSONList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []string{}
	}
	var items []interface{}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return toStringList(items)
}

func appendTrimmed(out []string, s string) []string {
	if s = strings.TrimSpace(s); s != "" {
		out = append(out, s)
	}
	return out
}

func timeHook(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
	if to != timeType {
		return data, nil
	}
	switch v := data.(type) {
	case time.Time:
		return v, nil
	case string:
		return parseTime(v), nil
	case []byte:
		return parseTime(string(v)), nil
	case int64:
		return time.Unix(v, 0).UTC(), nil
	case float64:
		return time.Unix(int64(v), 0).UTC(), nil
	}
	return time.Time{}, nil
}

func parseTime(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC()
	}
	return time.Time{}
}

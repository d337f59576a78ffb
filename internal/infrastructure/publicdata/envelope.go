package publicdata

import (
	"math"
	"strconv"
	"strings"
)

// Meta is the status header carried by data.go.kr responses.
type Meta struct {
	ResultCode string   `json:"resultCode,omitempty"`
	ResultMsg  string   `json:"resultMsg,omitempty"`
	TotalCount *float64 `json:"totalCount,omitempty"`
}

func asObject(v interface{}) map[string]interface{} {
	m, _ := v.(map[string]interface{})
	return m
}

// bodyNode returns response.body, falling back to a top-level body.
func bodyNode(root map[string]interface{}) map[string]interface{} {
	if resp := asObject(root["response"]); resp != nil {
		if body := asObject(resp["body"]); body != nil {
			return body
		}
	}
	return asObject(root["body"])
}

// ExtractMeta reads resultCode, resultMsg and totalCount from a decoded
// payload.  Absent or mistyped fields are left empty.
func ExtractMeta(payload interface{}) Meta {
	root := asObject(payload)
	if root == nil {
		return Meta{}
	}

	var meta Meta
	if header := asObject(asObject(root["response"])["header"]); header != nil {
		if code, ok := header["resultCode"].(string); ok {
			meta.ResultCode = strings.TrimSpace(code)
		}
		if msg, ok := header["resultMsg"].(string); ok {
			meta.ResultMsg = strings.TrimSpace(msg)
		}
	}

	if body := bodyNode(root); body != nil {
		switch n := body["totalCount"].(type) {
		case float64:
			meta.TotalCount = optional(n, finite(n))
		case string:
			meta.TotalCount = optional(parseJSNumber(n))
		}
	}
	return meta
}

// parseJSNumber follows Number(string): surrounding whitespace is ignored
// and a blank string is zero.
func parseJSNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// ExtractItems returns the record list from body.items.item (array or single
// object) or from body.items when it is itself an array.  Non-object
// entries are dropped.
func ExtractItems(payload interface{}) []map[string]interface{} {
	root := asObject(payload)
	if root == nil {
		return nil
	}
	body := bodyNode(root)
	if body == nil {
		return nil
	}

	var list []interface{}
	switch items := body["items"].(type) {
	case map[string]interface{}:
		switch item := items["item"].(type) {
		case []interface{}:
			list = item
		case map[string]interface{}:
			return []map[string]interface{}{item}
		}
	case []interface{}:
		list = items
	}

	out := make([]map[string]interface{}, 0, len(list))
	for _, entry := range list {
		if obj := asObject(entry); obj != nil {
			out = append(out, obj)
		}
	}
	return out
}

//Personal.AI order the ending

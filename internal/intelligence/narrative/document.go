// Package narrative produces the policy document attached to an analysis
// report.  Generated text is accepted only when it parses into a complete
// document; anything else is replaced by a deterministic fallback.
package narrative

import (
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/turtacn/urban-dds/internal/domain/scoring"
)

// FallbackConfidence is the confidence of the fallback document and the
// value used when a generated document carries a non-numeric confidence.
const FallbackConfidence = 62

// MaxMergedEvidence caps MergeEvidence output.
const MaxMergedEvidence = 8

const minUsableTextRunes = 10

var fencedBlock = regexp.MustCompile("(?i)```(?:json)?\\s*([\\s\\S]*?)\\s*```")

// ActionItem is one roadmap step.
type ActionItem struct {
	Phase    string `json:"phase"`
	Task     string `json:"task"`
	Owner    string `json:"owner"`
	Timeline string `json:"timeline"`
}

// PolicyDocument is the narrative bundle of a report.
type PolicyDocument struct {
	Summary          string       `json:"summary"`
	ExecutiveSummary string       `json:"executiveSummary"`
	Evidence         []string     `json:"evidence"`
	Risks            []string     `json:"risks"`
	ActionPlan       []ActionItem `json:"actionPlan"`
	Confidence       int          `json:"confidence"`
}

// Fallback returns the deterministic document for regionName and scenario.
func Fallback(regionName string, scenario scoring.Scenario) PolicyDocument {
	summary := string(scenario) + "을(를) 우선 검토 대상으로 권장합니다. " + regionName + "는 추가 정밀 분석이 필요합니다."
	return PolicyDocument{
		Summary:          summary,
		ExecutiveSummary: summary,
		Evidence: []string{
			regionName + "의 우선순위 점수를 기준으로 단계적 정책 우선순위 조정이 유효합니다.",
			"현장 조사항목과 예산 가용성 점검이 선행되어야 합니다.",
		},
		Risks: []string{
			"데이터 갱신 주기와 산출 근거의 검증 주기가 충분히 반영되었는지 확인이 필요합니다.",
			"사업 대상지 지정 시 주민 협의 반발과 민감도 분석이 선행되어야 합니다.",
		},
		ActionPlan: []ActionItem{
			{Phase: "1", Task: "지역 현장조사 범위 확정", Owner: "정책기획", Timeline: "1~2주"},
			{Phase: "2", Task: "예산 및 행정 영향 분석", Owner: "재정지원", Timeline: "2~4주"},
			{Phase: "3", Task: "공청회 및 타당성 확정", Owner: "민원지원", Timeline: "4~6주"},
		},
		Confidence: FallbackConfidence,
	}
}

// ExtractJSON returns the JSON object embedded in text: the body of the
// first fenced block if any, trimmed, from the first '{' through the last
// '}'.  False when no such span exists.
func ExtractJSON(text string) (string, bool) {
	candidate := text
	if m := fencedBlock.FindStringSubmatch(text); m != nil {
		candidate = m[1]
	}
	candidate = strings.TrimSpace(candidate)

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end <= start {
		return "", false
	}
	return strings.TrimSpace(candidate[start : end+1]), true
}

func nonBlankStrings(v interface{}) []string {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

func actionPlan(v interface{}) []ActionItem {
	list, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]ActionItem, 0, len(list))
	for _, entry := range list {
		obj, ok := entry.(map[string]interface{})
		if !ok {
			return nil
		}
		var fields [4]string
		for i, key := range []string{"phase", "task", "owner", "timeline"} {
			s, ok := obj[key].(string)
			if !ok || strings.TrimSpace(s) == "" {
				return nil
			}
			fields[i] = s
		}
		out = append(out, ActionItem{Phase: fields[0], Task: fields[1], Owner: fields[2], Timeline: fields[3]})
	}
	return out
}

// ClampPercent rounds v and bounds it to [0, 100].
func ClampPercent(v float64) int {
	return int(math.Max(0, math.Min(100, math.Round(v))))
}

func confidenceOf(v interface{}) (int, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return ClampPercent(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return ClampPercent(f), true
	default:
		return 0, false
	}
}

// Normalize validates a decoded candidate.  A missing executive summary
// falls back to the summary; every other required field must be present
// and non-blank or the fallback document is returned.  The second result
// reports whether the candidate was accepted.
func Normalize(raw interface{}, regionName string, scenario scoring.Scenario) (PolicyDocument, bool) {
	obj, ok := raw.(map[string]interface{})
	if !ok {
		return Fallback(regionName, scenario), false
	}

	summary := ""
	if s, ok := obj["summary"].(string); ok {
		summary = strings.TrimSpace(s)
	}
	executive := summary
	if s, ok := obj["executiveSummary"].(string); ok {
		executive = strings.TrimSpace(s)
	}
	risks := nonBlankStrings(obj["risks"])
	evidence := nonBlankStrings(obj["evidence"])
	plan := actionPlan(obj["actionPlan"])

	if summary == "" || executive == "" || len(risks) == 0 || len(evidence) == 0 || len(plan) == 0 {
		return Fallback(regionName, scenario), false
	}

	confidence, ok := confidenceOf(obj["confidence"])
	if !ok {
		confidence = FallbackConfidence
	}

	return PolicyDocument{
		Summary:          summary,
		ExecutiveSummary: executive,
		Evidence:         evidence,
		Risks:            risks,
		ActionPlan:       plan,
		Confidence:       confidence,
	}, true
}

// ParseDocument runs extraction and validation over raw model text.  It
// never fails; unusable text yields the fallback document and false.
func ParseDocument(text, regionName string, scenario scoring.Scenario) (PolicyDocument, bool) {
	if utf8.RuneCountInString(strings.TrimSpace(text)) < minUsableTextRunes {
		return Fallback(regionName, scenario), false
	}
	payload, ok := ExtractJSON(text)
	if !ok {
		return Fallback(regionName, scenario), false
	}
	var raw interface{}
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return Fallback(regionName, scenario), false
	}
	return Normalize(raw, regionName, scenario)
}

// MergeEvidence concatenates lists, trims entries, drops blanks and
// duplicates (first occurrence wins), and keeps at most MaxMergedEvidence.
func MergeEvidence(lists ...[]string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, list := range lists {
		for _, item := range list {
			s := strings.TrimSpace(item)
			if s == "" || seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}
	if len(out) > MaxMergedEvidence {
		out = out[:MaxMergedEvidence]
	}
	return out
}

//Personal.AI order the ending

package analysis

import (
	"strconv"
	"strings"
)

const emptySection = "- 없음"

func bulletLines(items []string) []string {
	if len(items) == 0 {
		return []string{emptySection}
	}
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = "- " + item
	}
	return out
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// RenderMarkdown renders report as the Korean markdown document.
func RenderMarkdown(r *Report) string {
	version := "1"
	if r.ReportVersion > 0 {
		version = strconv.Itoa(r.ReportVersion)
	}

	plan := []string{emptySection}
	if len(r.ActionPlan) > 0 {
		plan = plan[:0]
		for _, item := range r.ActionPlan {
			plan = append(plan, "- "+item.Phase+" 단계: "+item.Task+" / 담당자: "+item.Owner+" / 일정: "+item.Timeline)
		}
	}

	lines := []string{
		"# Urban-DDS 분석 리포트",
		"",
		"생성 일시: " + r.GeneratedAt,
		"지역: " + orDefault(r.RegionName, "미지정"),
		"우선순위 점수: " + strconv.FormatFloat(r.PriorityScore, 'f', -1, 64),
		"권장 시나리오: " + string(r.RecommendedScenario),
		"모델: " + orDefault(r.Model, "unknown"),
		"버전: " + version,
		"추적 ID: " + orDefault(r.TraceID, "N/A"),
		"",
		"요약: " + r.Summary,
		"",
		"## 근거 분석",
	}
	lines = append(lines, bulletLines(r.Evidence)...)
	lines = append(lines, "", "## 리스크")
	lines = append(lines, bulletLines(r.Risks)...)
	lines = append(lines, "", "## 실행 로드맵")
	lines = append(lines, plan...)
	lines = append(lines, "", "신뢰도: "+strconv.Itoa(r.Confidence), "")
	return strings.Join(lines, "\n")
}

//Personal.AI order the ending

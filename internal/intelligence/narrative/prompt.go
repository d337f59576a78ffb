package narrative

import (
	"bytes"
	"strconv"
	"text/template"

	"github.com/turtacn/urban-dds/internal/domain/region"
	"github.com/turtacn/urban-dds/internal/domain/scoring"
)

// PromptInput carries the values embedded in the prompt.
type PromptInput struct {
	RegionName    string
	Metrics       region.Metrics
	Scenario      scoring.Scenario
	PriorityScore float64
}

const promptText = `
You are a Korean public policy analyst and must return JSON only.
Return a strict JSON object with keys:
- executiveSummary (string)
- risks (array of short Korean strings, 2~4 items)
- actionPlan (array of objects: phase, task, owner, timeline)
- confidence (number 0~100)

Region: {{.RegionName}}
Aging Score: {{num .Metrics.AgingScore}}
Infrastructure Risk: {{num .Metrics.InfraRisk}}
Market Score: {{num .Metrics.MarketScore}}
Policy Fit: {{num .Metrics.PolicyFit}}
Priority Score: {{num .PriorityScore}}
Recommended Scenario: {{.Scenario}}
`

var promptTemplate = template.Must(template.New("policy").Funcs(template.FuncMap{
	"num": func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) },
}).Parse(promptText))

// BuildPrompt renders the generation prompt.
func BuildPrompt(in PromptInput) string {
	var buf bytes.Buffer
	if err := promptTemplate.Execute(&buf, in); err != nil {
		panic("narrative: prompt template: " + err.Error())
	}
	return buf.String()
}

// GenerationConfig tunes a generateContent request.
type GenerationConfig struct {
	Temperature      float64     `json:"temperature"`
	MaxOutputTokens  int         `json:"maxOutputTokens"`
	ResponseMimeType string      `json:"responseMimeType,omitempty"`
	ResponseSchema   *SchemaNode `json:"responseSchema,omitempty"`
}

// Part is a content fragment.
type Part struct {
	Text string `json:"text"`
}

// Content is one conversational turn.
type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Payload is the generateContent request body shared by both backends.
type Payload struct {
	Contents         []Content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
}

// SchemaNode is the subset of the response-schema language used here.
type SchemaNode struct {
	Type       string                 `json:"type"`
	Properties map[string]*SchemaNode `json:"properties,omitempty"`
	Items      *SchemaNode            `json:"items,omitempty"`
	Required   []string               `json:"required,omitempty"`
}

func stringNode() *SchemaNode { return &SchemaNode{Type: "STRING"} }

func stringArrayNode() *SchemaNode { return &SchemaNode{Type: "ARRAY", Items: stringNode()} }

// ResponseSchema constrains generated output to a PolicyDocument.
func ResponseSchema() *SchemaNode {
	return &SchemaNode{
		Type: "OBJECT",
		Properties: map[string]*SchemaNode{
			"summary":          stringNode(),
			"executiveSummary": stringNode(),
			"evidence":         stringArrayNode(),
			"risks":            stringArrayNode(),
			"actionPlan": {
				Type: "ARRAY",
				Items: &SchemaNode{
					Type: "OBJECT",
					Properties: map[string]*SchemaNode{
						"phase":    stringNode(),
						"task":     stringNode(),
						"owner":    stringNode(),
						"timeline": stringNode(),
					},
					Required: []string{"phase", "task", "owner", "timeline"},
				},
			},
			"confidence": {Type: "INTEGER"},
		},
		Required: []string{"summary", "executiveSummary", "evidence", "risks", "actionPlan", "confidence"},
	}
}

// BuildPayload builds the request body; useSchema adds the JSON response
// constraint.
func BuildPayload(in PromptInput, temperature float64, maxTokens int, useSchema bool) Payload {
	p := Payload{
		Contents: []Content{{Role: "user", Parts: []Part{{Text: BuildPrompt(in)}}}},
		GenerationConfig: GenerationConfig{
			Temperature:     temperature,
			MaxOutputTokens: maxTokens,
		},
	}
	if useSchema {
		p.GenerationConfig.ResponseMimeType = "application/json"
		p.GenerationConfig.ResponseSchema = ResponseSchema()
	}
	return p
}

//Personal.AI order the ending

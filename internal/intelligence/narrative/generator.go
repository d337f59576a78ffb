package narrative

import (
	"context"
	"time"

	"github.com/turtacn/urban-dds/internal/infrastructure/monitoring/logging"
)

// Report sources.
const (
	SourceModel    = "gemini"
	SourceFallback = "fallback"
)

// Fallback reasons.
const (
	ReasonNoBackend       = "no-backend-available"
	ReasonRequestFailed   = "generation-failed"
	ReasonInvalidResponse = "invalid-response"
)

// Generation outcomes reported to the Recorder.
const (
	OutcomeAccepted = "accepted"
	OutcomeError    = "error"
	OutcomeEmpty    = "empty"
	OutcomeRejected = "rejected"
)

// Recorder receives per-call observations.
type Recorder interface {
	ObserveNarrative(backend, outcome string)
}

// Result is a generated or fallback document plus provenance.
type Result struct {
	Document       PolicyDocument
	Source         string
	FallbackReason string
	Backend        string
}

// Options tune generation requests.
type Options struct {
	Model           string
	Temperature     float64
	MaxOutputTokens int
	Timeout         time.Duration
}

// Generator tries backends in order, each with the schema-constrained
// payload first and the plain payload second.
type Generator struct {
	backends []Backend
	opts     Options
	recorder Recorder
	logger   logging.Logger
}

// GeneratorOption customises a Generator.
type GeneratorOption func(*Generator)

// WithRecorder installs a metrics recorder.
func WithRecorder(r Recorder) GeneratorOption {
	return func(g *Generator) { g.recorder = r }
}

// NewGenerator creates a Generator over backends.
func NewGenerator(opts Options, backends []Backend, log logging.Logger, options ...GeneratorOption) *Generator {
	if log == nil {
		log = logging.NewNopLogger()
	}
	if opts.Temperature == 0 {
		opts.Temperature = 0.2
	}
	if opts.MaxOutputTokens <= 0 {
		opts.MaxOutputTokens = 500
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 20 * time.Second
	}
	g := &Generator{backends: backends, opts: opts, logger: log.Named("narrative")}
	for _, o := range options {
		o(g)
	}
	return g
}

// BackendChain orders backends for mode: "vertex" tries the identity-token
// backend before the API-key backend; any other mode uses the API-key
// backend alone.
func BackendChain(mode string, apiKey, vertex Backend) []Backend {
	if mode == "vertex" && vertex != nil {
		return []Backend{vertex, apiKey}
	}
	return []Backend{apiKey}
}

// Model returns the configured model name.
func (g *Generator) Model() string { return g.opts.Model }

// Generate returns a complete document for in.  It never fails.
func (g *Generator) Generate(ctx context.Context, in PromptInput) Result {
	fallback := Fallback(in.RegionName, in.Scenario)
	payloads := []Payload{
		BuildPayload(in, g.opts.Temperature, g.opts.MaxOutputTokens, true),
		BuildPayload(in, g.opts.Temperature, g.opts.MaxOutputTokens, false),
	}

	reason := ReasonNoBackend
	for _, b := range g.backends {
		if !b.Available() {
			continue
		}
		for i, p := range payloads {
			doc, outcome := g.try(ctx, b, p, in, fallback.Summary)
			g.observe(b.Name(), outcome)
			switch outcome {
			case OutcomeAccepted:
				return Result{Document: doc, Source: SourceModel, Backend: b.Name()}
			case OutcomeError:
				if reason == ReasonNoBackend {
					reason = ReasonRequestFailed
				}
			default:
				reason = ReasonInvalidResponse
			}
			g.logger.Debug("narrative attempt unusable",
				logging.String("backend", b.Name()),
				logging.Bool("schema", i == 0),
				logging.String("outcome", outcome))
		}
	}

	g.logger.Warn("using fallback policy document",
		logging.String("region", in.RegionName),
		logging.String("reason", reason))
	return Result{Document: fallback, Source: SourceFallback, FallbackReason: reason}
}

func (g *Generator) try(ctx context.Context, b Backend, p Payload, in PromptInput, fallbackSummary string) (PolicyDocument, string) {
	ctx, cancel := context.WithTimeout(ctx, g.opts.Timeout)
	defer cancel()

	text, err := b.Generate(ctx, p)
	if err != nil {
		g.logger.Warn("narrative generation failed", logging.String("backend", b.Name()), logging.Err(err))
		return PolicyDocument{}, OutcomeError
	}
	if text == "" {
		return PolicyDocument{}, OutcomeEmpty
	}
	doc, ok := ParseDocument(text, in.RegionName, in.Scenario)
	if !ok || doc.Summary == fallbackSummary {
		return PolicyDocument{}, OutcomeRejected
	}
	return doc, OutcomeAccepted
}

func (g *Generator) observe(backend, outcome string) {
	if g.recorder != nil {
		g.recorder.ObserveNarrative(backend, outcome)
	}
}

//Personal.AI order the ending

package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/jonathan/storyweaver/internal/confidence"
	"github.com/jonathan/storyweaver/internal/prompts"
	"github.com/jonathan/storyweaver/internal/schemas"
	"github.com/jonathan/storyweaver/internal/types"
)

// ReasonLLMOptimization is appended to the confidence reasons of an optimized story
const ReasonLLMOptimization = "LLM optimization"

// Provider is an abstraction over remote LLM backends
type Provider interface {
	// Optimize asks the backend to rewrite one story. The request story is never modified.
	Optimize(ctx context.Context, req types.OptimizationRequest) (*types.OptimizationResponse, error)
	// EstimateCost prices a call in USD from its token counts
	EstimateCost(promptTokens, completionTokens int) float64
	// Model returns the configured model
	Model() Model
	// Name returns the backend serving the model
	Name() ProviderName
	// Close releases any resources held by the provider
	Close() error
}

// transport performs one completion round trip. Implementations return
// *Error for provider failures and raw context errors for cancellation.
type transport interface {
	complete(ctx context.Context, system, prompt string) (string, error)
	close() error
}

// Option configures a provider
type Option func(*options)

type options struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zap.Logger
}

// WithHTTPClient sets the HTTP client used by chat/completions providers
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRateLimit limits calls to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) Option {
	return func(o *options) {
		if rps <= 0 {
			o.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		o.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

type provider struct {
	cfg     Config
	spec    providerSpec
	tr      transport
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewProvider creates the provider serving cfg.Model. Unknown models are
// sent to OpenAI. A blank API key is accepted here; calls then fail with
// CodeCredentialMissing without touching the network.
func NewProvider(ctx context.Context, cfg Config, opts ...Option) (Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	spec := providerSpecs[ProviderFor(cfg.Model)]
	p := &provider{
		cfg:     cfg,
		spec:    spec,
		limiter: o.limiter,
		logger:  o.logger.With(zap.String("provider", string(spec.name)), zap.String("model", string(cfg.Model))),
	}

	switch spec.auth {
	case authSDK:
		tr, err := newGeminiTransport(ctx, cfg, spec)
		if err != nil {
			return nil, err
		}
		p.tr = tr
	default:
		p.tr = newChatTransport(cfg, spec, o.httpClient)
	}
	return p, nil
}

func (p *provider) Model() Model       { return p.cfg.Model }
func (p *provider) Name() ProviderName { return p.spec.name }
func (p *provider) Close() error       { return p.tr.close() }

func (p *provider) EstimateCost(promptTokens, completionTokens int) float64 {
	return float64(promptTokens+completionTokens) / 1000 * p.spec.rate(p.cfg.Model)
}

// Optimize implements Provider
func (p *provider) Optimize(ctx context.Context, req types.OptimizationRequest) (*types.OptimizationResponse, error) {
	start := time.Now()

	if req.Story == nil {
		return nil, newError(CodeCallFailed, p.spec.name, "request has no story", nil)
	}
	if !p.cfg.HasCredentials() {
		return nil, newError(CodeCredentialMissing, p.spec.name, "API key is required", nil)
	}

	system, prompt, err := buildPrompt(req)
	if err != nil {
		return nil, newError(CodeCallFailed, p.spec.name, "failed to build prompt", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	if p.limiter != nil {
		if err := p.limiter.Wait(callCtx); err != nil {
			if ctx.Err() != nil {
				return nil, newError(CodeCallFailed, p.spec.name, "request cancelled", ctx.Err())
			}
			return nil, newError(CodeTimeout, p.spec.name, "rate limit wait exceeded the request timeout", err)
		}
	}

	apiStart := time.Now()
	content, err := p.tr.complete(callCtx, system, prompt)
	apiCall := time.Since(apiStart)
	if err != nil {
		return nil, p.callError(ctx, callCtx, err)
	}

	reply, err := parseReply(p.spec.name, content)
	if err != nil {
		p.logger.Debug("unparseable reply", zap.String("story_id", req.Story.ID), zap.Error(err))
		return nil, err
	}

	optimized, changes := mergeReply(req.Story, reply, time.Now())

	promptTokens := EstimateTokens(system) + EstimateTokens(prompt)
	completionTokens := EstimateTokens(content)
	total := time.Since(start)

	resp := &types.OptimizationResponse{
		OptimizedStory: optimized,
		Changes:        changes,
		Confidence:     optimized.Confidence.Overall,
		Cost: types.OptimizationCost{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
			CostUSD:          p.EstimateCost(promptTokens, completionTokens),
		},
		Timing: types.OptimizationTiming{
			APICall:    apiCall,
			Processing: total - apiCall,
			Total:      total,
		},
		Model: string(p.cfg.Model),
	}

	p.logger.Debug("story optimized",
		zap.String("story_id", req.Story.ID),
		zap.Int("tokens", resp.Cost.TotalTokens),
		zap.Float64("cost_usd", resp.Cost.CostUSD),
		zap.Duration("duration", total),
	)
	return resp, nil
}

// callError maps a transport failure to an *Error. The call context expiring
// while the parent is still live is a timeout; parent cancellation is a
// failed call.
func (p *provider) callError(parent, call context.Context, err error) error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	if parent.Err() != nil {
		return newError(CodeCallFailed, p.spec.name, "request cancelled", err)
	}
	if errors.Is(call.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return newError(CodeTimeout, p.spec.name, fmt.Sprintf("no reply within %s", p.cfg.RequestTimeout), err)
	}
	return newError(CodeCallFailed, p.spec.name, "request failed", err)
}

func buildPrompt(req types.OptimizationRequest) (string, string, error) {
	system, err := prompts.System()
	if err != nil {
		return "", "", err
	}

	s := req.Story
	goals := make([]string, 0, len(req.OptimizationGoals))
	for i, g := range req.OptimizationGoals {
		goals = append(goals, fmt.Sprintf("%d. %s", i+1, g))
	}
	module := s.Module
	if module == "" {
		module = "未指定"
	}
	sourceContext := req.SourceContext
	if sourceContext == "" {
		sourceContext = "无"
	}

	prompt, err := prompts.OptimizeStory(prompts.StoryFields{
		Role:          s.Role,
		Action:        s.Action,
		Value:         s.Value,
		Module:        module,
		Priority:      string(s.Priority),
		Confidence:    strconv.Itoa(int(s.Confidence.Overall*100 + 0.5)),
		Description:   s.Description,
		Goals:         strings.Join(goals, "\n"),
		SourceContext: sourceContext,
	})
	if err != nil {
		return "", "", err
	}
	return system, prompt, nil
}

// optimizationReply is the JSON object the model is asked to return
type optimizationReply struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Role        string   `json:"role"`
	Action      string   `json:"action"`
	Value       string   `json:"value"`
	Module      string   `json:"module"`
	Priority    string   `json:"priority"`
	Changes     []string `json:"changes"`
	Confidence  float64  `json:"confidence"`
}

func parseReply(name ProviderName, content string) (*optimizationReply, error) {
	obj, ok := ExtractJSONObject(content)
	if !ok {
		return nil, newError(CodeInvalidResponse, name, "no JSON object in reply", nil)
	}
	if err := schemas.Validate(schemas.OptimizationReply, []byte(obj)); err != nil {
		return nil, newError(CodeInvalidResponse, name, "reply does not match the expected shape", err)
	}

	var reply optimizationReply
	if err := json.Unmarshal([]byte(obj), &reply); err != nil {
		return nil, newError(CodeInvalidResponse, name, "malformed JSON in reply", err)
	}
	return &reply, nil
}

// mergeReply applies the non-empty reply fields to a copy of the story. The
// description is re-rendered from the merged role, action and value so it
// always follows the story template.
func mergeReply(orig *types.Story, r *optimizationReply, now time.Time) (*types.Story, []string) {
	s := orig.Clone()
	var diff []string

	set := func(dst *string, v, label string) {
		v = strings.TrimSpace(v)
		if v != "" && v != *dst {
			*dst = v
			diff = append(diff, "optimized "+label)
		}
	}
	set(&s.Title, r.Title, "title")
	set(&s.Role, r.Role, "role")
	set(&s.Action, r.Action, "action")
	set(&s.Value, r.Value, "value")
	set(&s.Module, r.Module, "module")

	if p := types.Priority(strings.ToUpper(strings.TrimSpace(r.Priority))); validPriority(p) && p != s.Priority {
		s.Priority = p
		diff = append(diff, "optimized priority")
	}

	s.Description = types.RenderDescription(s.Role, s.Action, s.Value)
	if r.Confidence > 0 {
		s.Confidence = confidence.Rescore(s.Confidence, r.Confidence)
	}
	s.Confidence.Reasons = append(s.Confidence.Reasons, ReasonLLMOptimization)
	s.UpdatedAt = now

	var changes []string
	for _, c := range r.Changes {
		if c = strings.TrimSpace(c); c != "" {
			changes = append(changes, c)
		}
	}
	if len(changes) == 0 {
		changes = diff
	}
	if len(changes) == 0 {
		changes = []string{"optimized wording"}
	}
	return s, changes
}

func validPriority(p types.Priority) bool {
	switch p {
	case types.PriorityP0, types.PriorityP1, types.PriorityP2, types.PriorityP3:
		return true
	}
	return false
}

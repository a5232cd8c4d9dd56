// Package pipeline drives a staged article generation run: outline, then a
// draft per section, then a sequential polish where each section sees the
// polished text of every section before it.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/tnglemongrass/blogwriter/internal/agents"
	"github.com/tnglemongrass/blogwriter/internal/llm"
)

// Stage is the state of a run. Stages advance strictly in order.
type Stage int

const (
	StageOutlining Stage = iota
	StageDrafting
	StagePolishing
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageOutlining:
		return "outlining"
	case StageDrafting:
		return "drafting"
	case StagePolishing:
		return "polishing"
	default:
		return "done"
	}
}

// Event reports progress. Index and Total are zero for stage transitions;
// for per-section events Index is 1-based.
type Event struct {
	RunID string
	Stage Stage
	Index int
	Total int
	Title string
}

// Options configure a Pipeline.
type Options struct {
	Model string
	Style string

	OutlineTemperature float64
	ContentTemperature float64
	PolishTemperature  float64

	PromptPolicy  PromptPolicy
	DefaultPrompt string

	// Concurrency above 1 drafts sections with that many workers. Polishing
	// is always sequential.
	Concurrency int

	Agent   agents.Options
	Logger  *slog.Logger
	OnEvent func(Event)
}

// DefaultOptions returns sequential drafting with the stock temperatures.
func DefaultOptions() Options {
	return Options{
		Model:              agents.DefaultModel,
		OutlineTemperature: agents.DefaultOutlineTemperature,
		ContentTemperature: agents.DefaultContentTemperature,
		PolishTemperature:  agents.DefaultPolishTemperature,
		PromptPolicy:       PolicyTruncate,
		Concurrency:        1,
	}
}

// Result is the outcome of one run.
type Result struct {
	RunID string
	// Titles and WritingPrompts are the outline as parsed, before pairing.
	Titles         []string
	WritingPrompts []string
	Sections       []SectionContent
	Article        string
}

// EmptySections returns the 1-based indexes of sections that produced no
// body in either stage.
func (r *Result) EmptySections() []int {
	var out []int
	for i, sc := range r.Sections {
		if sc.Polished == "" && sc.Drafted == formatDraft(sc.Section.Title, "") {
			out = append(out, i+1)
		}
	}
	return out
}

// Pipeline sequences the three agents. A Pipeline holds no per-run state and
// may be reused; concurrent runs should each use their own completer.
type Pipeline struct {
	outline *agents.OutlineAgent
	content *agents.ContentAgent
	polish  *agents.PolishAgent
	opts    Options
	logger  *slog.Logger
}

// New creates a Pipeline whose agents all share c.
func New(c llm.Completer, opts Options) *Pipeline {
	if opts.Model == "" {
		opts.Model = agents.DefaultModel
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Agent.Logger == nil {
		opts.Agent.Logger = opts.Logger
	}
	return &Pipeline{
		outline: agents.NewOutlineAgent(c, opts.Agent),
		content: agents.NewContentAgent(c, opts.Agent),
		polish:  agents.NewPolishAgent(c, opts.Agent),
		opts:    opts,
		logger:  opts.Logger,
	}
}

// Run generates an article from referenceText. Agent failures degrade the
// affected section only; the sole error is ErrOutlineMismatch under
// PolicyStrict. An outline with no sections yields an empty article.
func (p *Pipeline) Run(ctx context.Context, referenceText string) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := p.logger.With("run", res.RunID)

	p.emit(Event{RunID: res.RunID, Stage: StageOutlining})
	log.Info("generating outline", "model", p.opts.Model)
	res.Titles, res.WritingPrompts = p.outline.GenerateOutline(ctx, referenceText, p.opts.Style, p.opts.OutlineTemperature, p.opts.Model)

	sections, err := pair(res.Titles, res.WritingPrompts, p.opts.PromptPolicy, p.opts.DefaultPrompt)
	if err != nil {
		log.Error("outline rejected", "error", err)
		return nil, err
	}
	if len(res.Titles) != len(res.WritingPrompts) {
		log.Warn("outline and prompts differ in length", "sections", len(res.Titles), "prompts", len(res.WritingPrompts), "policy", string(p.opts.PromptPolicy), "kept", len(sections))
	}
	log.Info("outline ready", "sections", len(sections))

	p.emit(Event{RunID: res.RunID, Stage: StageDrafting, Total: len(sections)})
	if p.opts.Concurrency > 1 {
		res.Sections = p.draftConcurrent(ctx, log, res.RunID, referenceText, sections, p.opts.Concurrency)
	} else {
		res.Sections = p.draft(ctx, log, res.RunID, referenceText, sections)
	}

	p.emit(Event{RunID: res.RunID, Stage: StagePolishing, Total: len(res.Sections)})
	p.polishAll(ctx, log, res.RunID, referenceText, res.Sections)

	res.Article = Assemble(res.Sections)
	p.emit(Event{RunID: res.RunID, Stage: StageDone, Total: len(res.Sections)})
	log.Info("article ready", "sections", len(res.Sections), "bytes", len(res.Article))
	return res, nil
}

// Draft writes every section in index order, one call at a time.
func (p *Pipeline) Draft(ctx context.Context, referenceText string, sections []Section) []SectionContent {
	return p.draft(ctx, p.logger, "", referenceText, sections)
}

// DraftConcurrent writes sections with up to workers calls in flight. The
// result order matches sections regardless of completion order.
func (p *Pipeline) DraftConcurrent(ctx context.Context, referenceText string, sections []Section, workers int) []SectionContent {
	return p.draftConcurrent(ctx, p.logger, "", referenceText, sections, workers)
}

// Polish revises contents in place, in index order. Section i sees the
// polished text of sections 0..i-1 and nothing after it.
func (p *Pipeline) Polish(ctx context.Context, referenceText string, contents []SectionContent) {
	p.polishAll(ctx, p.logger, "", referenceText, contents)
}

func (p *Pipeline) draft(ctx context.Context, log *slog.Logger, runID, referenceText string, sections []Section) []SectionContent {
	contents := make([]SectionContent, 0, len(sections))
	for i, s := range sections {
		log.Debug("drafting section", "index", i+1, "title", s.Title)
		p.emit(Event{RunID: runID, Stage: StageDrafting, Index: i + 1, Total: len(sections), Title: s.Title})
		contents = append(contents, p.draftOne(ctx, referenceText, s))
	}
	return contents
}

func (p *Pipeline) draftConcurrent(ctx context.Context, log *slog.Logger, runID, referenceText string, sections []Section, workers int) []SectionContent {
	contents := make([]SectionContent, len(sections))
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, s := range sections {
		g.Go(func() error {
			log.Debug("drafting section", "index", i+1, "title", s.Title)
			contents[i] = p.draftOne(ctx, referenceText, s)
			return nil
		})
	}
	_ = g.Wait()
	for i, s := range sections {
		p.emit(Event{RunID: runID, Stage: StageDrafting, Index: i + 1, Total: len(sections), Title: s.Title})
	}
	return contents
}

func (p *Pipeline) draftOne(ctx context.Context, referenceText string, s Section) SectionContent {
	body := p.content.GenerateContent(ctx, s.Title, referenceText, s.WritingPrompt, p.opts.ContentTemperature, p.opts.Model)
	return SectionContent{Section: s, Drafted: formatDraft(s.Title, body)}
}

func (p *Pipeline) polishAll(ctx context.Context, log *slog.Logger, runID, referenceText string, contents []SectionContent) {
	for i := range contents {
		prior := priorContext(contents, i)
		polished := p.polish.PolishContent(ctx, prior, contents[i].Drafted, referenceText, p.opts.PolishTemperature, p.opts.Model)
		contents[i].Polished = polished
		if polished == "" {
			log.Warn("polish produced no text, keeping draft", "index", i+1, "title", contents[i].Section.Title)
		} else {
			log.Debug("polished section", "index", i+1, "title", contents[i].Section.Title)
		}
		p.emit(Event{RunID: runID, Stage: StagePolishing, Index: i + 1, Total: len(contents), Title: contents[i].Section.Title})
	}
}

func (p *Pipeline) emit(e Event) {
	if p.opts.OnEvent != nil {
		p.opts.OnEvent(e)
	}
}

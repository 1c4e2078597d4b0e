package refine

import (
	"context"
	"time"

	"extractforge/internal/codewriter"
	"extractforge/internal/config"
	"extractforge/internal/constraints"
	"extractforge/internal/llmorch"
	"extractforge/internal/logging"
	"extractforge/internal/parsing"
	"extractforge/internal/pipelineerrors"
	"extractforge/internal/progress"
	"extractforge/internal/render"
)

// Controller drives one run through the Init→Parsing→Planning→Coding→Validating→Writing→
// Done/Failed state machine (spec §4.5), wiring C1-C4/C6/C7 together. A Controller is reusable
// across runs provided those runs target distinct project directories (spec §5).
type Controller struct {
	engine       *constraints.Engine
	orchestrator *llmorch.Orchestrator
	writer       *codewriter.Writer
	bus          *progress.Bus
}

// NewController constructs a Controller from its four collaborators. bus may be nil, in which
// case progress events are simply dropped.
func NewController(engine *constraints.Engine, orchestrator *llmorch.Orchestrator, writer *codewriter.Writer, bus *progress.Bus) *Controller {
	if bus == nil {
		bus = progress.NewBus()
	}
	return &Controller{engine: engine, orchestrator: orchestrator, writer: writer, bus: bus}
}

// run carries the mutable working state threaded through the FSM that doesn't belong on the
// returned GenerationContext (the prompt-rendering inputs), mirroring ouroboros.go's loop-local
// variables (tool, lastViolations, retryCount) kept outside LoopResult.
type run struct {
	ctx                context.Context
	projectName        string
	projectDescription string
	constraintPolicy   config.ConstraintConfig
	genCfg             config.GenerationConfig

	parsed          *parsing.ParsedExamples
	plan            render.Plan
	code            llmorch.CodeResult
	priorViolations []pipelineerrors.ViolationSummary
}

// Generate executes one full pipeline run and returns its GenerationContext. The context is
// always non-nil: on failure Completed is false and Errors is populated (spec §3).
func (c *Controller) Generate(ctx context.Context, examples []parsing.Example, projectCfg config.ProjectConfig) (out *GenerationContext) {
	start := time.Now()
	gctx := newGenerationContext(projectCfg.Name, start)
	logging.Refine("=== REFINE RUN START: run_id=%s project=%s ===", gctx.RunID, projectCfg.Name)

	description := ""
	if projectCfg.DataSource.Kind != "" {
		description = projectCfg.DataSource.Kind
	}

	r := &run{
		ctx:                ctx,
		projectName:        projectCfg.Name,
		projectDescription: description,
		constraintPolicy:   projectCfg.Constraints,
		genCfg:             projectCfg.Generation,
	}

	defer func() {
		if rec := recover(); rec != nil {
			logging.Get(logging.CategoryRefine).Error("PANIC in refinement controller: %v", rec)
			gctx.fail(&pipelineerrors.CodeValidationError{Attempts: gctx.Attempt})
			out = gctx
		}
		logging.Refine("=== REFINE RUN END: run_id=%s completed=%v duration=%.2fs ===",
			gctx.RunID, gctx.Completed, gctx.DurationSeconds)
	}()

	state := StateInit
	for !state.terminal() {
		if err := c.checkCancelled(ctx); err != nil {
			c.publish(progress.StepFinalize, "cancelled", progress.StatusFailed, 0, err.Error())
			gctx.fail(err)
			return gctx
		}
		next := c.step(state, r, gctx, examples)
		state = next
	}

	if state == StateDone {
		return gctx.succeed()
	}
	return gctx
}

// step implements state(state) -> state' per spec §4.5/§9's explicit step-function design note,
// mirroring ouroboros.go's ExecuteWithConfig phase staging (Proposal→Audit→Simulation→Commit)
// generalised to Parsing→Planning→Coding→Validating→Writing.
func (c *Controller) step(state State, r *run, gctx *GenerationContext, examples []parsing.Example) State {
	switch state {
	case StateInit:
		return StateParsing
	case StateParsing:
		return c.stepParsing(r, gctx, examples)
	case StatePlanning:
		return c.stepPlanning(r, gctx)
	case StateCoding:
		return c.stepCoding(r, gctx)
	case StateValidating:
		return c.stepValidating(r, gctx)
	case StateWriting:
		return c.stepWriting(r, gctx)
	default:
		return StateFailed
	}
}

func (c *Controller) stepParsing(r *run, gctx *GenerationContext, examples []parsing.Example) State {
	t0 := time.Now()
	c.publish(progress.StepParse, "parse examples", progress.StatusRunning, 0, "")

	parsed, err := parsing.Parse(examples, r.genCfg.PatternConfidenceThreshold)
	if err != nil {
		c.publish(progress.StepParse, "parse examples", progress.StatusFailed, time.Since(t0).Seconds(), err.Error())
		gctx.fail(err)
		return StateFailed
	}
	r.parsed = parsed
	c.publish(progress.StepParse, "parse examples", progress.StatusSucceeded, time.Since(t0).Seconds(), "")
	return StatePlanning
}

func (c *Controller) stepPlanning(r *run, gctx *GenerationContext) State {
	t0 := time.Now()
	c.publish(progress.StepPlan, "generate plan", progress.StatusRunning, 0, "")

	prompt, err := render.RenderPlanPrompt(r.projectName, r.projectDescription, r.parsed, r.priorViolations)
	if err != nil {
		c.publish(progress.StepPlan, "generate plan", progress.StatusFailed, time.Since(t0).Seconds(), err.Error())
		gctx.fail(err)
		return StateFailed
	}

	plan, err := c.orchestrator.Plan(r.ctx, prompt)
	if err != nil {
		c.publish(progress.StepPlan, "generate plan", progress.StatusFailed, time.Since(t0).Seconds(), err.Error())
		gctx.fail(err)
		return StateFailed
	}
	r.plan = plan
	gctx.Plan = &plan
	c.publish(progress.StepPlan, "generate plan", progress.StatusSucceeded, time.Since(t0).Seconds(), "")
	return StateCoding
}

func (c *Controller) stepCoding(r *run, gctx *GenerationContext) State {
	t0 := time.Now()
	c.publish(progress.StepCode, "generate code", progress.StatusRunning, 0, "")

	prompt, err := render.RenderCodePrompt(r.projectName, r.plan, r.constraintPolicy, r.priorViolations)
	if err != nil {
		c.publish(progress.StepCode, "generate code", progress.StatusFailed, time.Since(t0).Seconds(), err.Error())
		gctx.fail(err)
		return StateFailed
	}

	code, err := c.orchestrator.Code(r.ctx, prompt)
	if err != nil {
		c.publish(progress.StepCode, "generate code", progress.StatusFailed, time.Since(t0).Seconds(), err.Error())
		gctx.fail(err)
		return StateFailed
	}
	r.code = code
	gctx.GeneratedCode = &codewriter.GeneratedCode{
		ExtractorSource: code.Extractor,
		ModelsSource:    code.Models,
		TestsSource:     code.Tests,
	}
	c.publish(progress.StepCode, "generate code", progress.StatusSucceeded, time.Since(t0).Seconds(), "")

	if !r.genCfg.EnforceValidation {
		return StateWriting
	}
	return StateValidating
}

// stepValidating runs C4 against the extractor source. On failure under remaining retry budget it
// takes the refinement edge back to Planning (spec §4.5): attempt increments, the prior
// violations are retained and threaded back into both the planner and coder prompts so the
// refinement revises the plan rather than merely rewording the same code.
func (c *Controller) stepValidating(r *run, gctx *GenerationContext) State {
	t0 := time.Now()
	c.publish(progress.StepValidate, "validate code", progress.StatusRunning, 0, "")

	result := c.engine.ValidateSource("extractor.py", []byte(r.code.Extractor))
	gctx.ValidationResult = &result

	summaries := constraints.Summaries(result.Violations)
	gctx.AttemptHistory = append(gctx.AttemptHistory, AttemptRecord{Attempt: gctx.Attempt, Violations: summaries})

	if result.Passed() {
		c.publish(progress.StepValidate, "validate code", progress.StatusSucceeded, time.Since(t0).Seconds(), "")
		return StateWriting
	}

	c.publish(progress.StepValidate, "validate code", progress.StatusFailed, time.Since(t0).Seconds(),
		render.FormatViolationsForFeedback(summaries))

	maxRetries := r.genCfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	if gctx.Attempt < maxRetries {
		gctx.Attempt++
		r.priorViolations = summaries
		return StatePlanning
	}

	gctx.fail(&pipelineerrors.CodeValidationError{Violations: summaries, Attempts: gctx.Attempt})
	return StateFailed
}

func (c *Controller) stepWriting(r *run, gctx *GenerationContext) State {
	t0 := time.Now()
	c.publish(progress.StepWrite, "write files", progress.StatusRunning, 0, "")

	if r.genCfg.DryRun || !r.genCfg.WriteFiles {
		c.publish(progress.StepWrite, "write files", progress.StatusSucceeded, time.Since(t0).Seconds(), "dry run: no files written")
		c.publish(progress.StepFinalize, "finalize", progress.StatusSucceeded, 0, "")
		return StateDone
	}

	code := codewriter.GeneratedCode{
		ExtractorSource: r.code.Extractor,
		ModelsSource:    r.code.Models,
		TestsSource:     r.code.Tests,
	}
	result, err := c.writer.Write(code, r.projectName, true)
	if err != nil {
		c.publish(progress.StepWrite, "write files", progress.StatusFailed, time.Since(t0).Seconds(), err.Error())
		gctx.fail(err)
		return StateFailed
	}
	gctx.WrittenPaths = result
	c.publish(progress.StepWrite, "write files", progress.StatusSucceeded, time.Since(t0).Seconds(), "")
	c.publish(progress.StepFinalize, "finalize", progress.StatusSucceeded, 0, "")
	return StateDone
}

func (c *Controller) checkCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		if ctx.Err() == context.DeadlineExceeded {
			return &pipelineerrors.Cancelled{Reason: pipelineerrors.CancelDeadline}
		}
		return &pipelineerrors.Cancelled{Reason: pipelineerrors.CancelExplicit}
	default:
		return nil
	}
}

func (c *Controller) publish(step progress.StepIndex, name string, status progress.Status, elapsed float64, message string) {
	c.bus.Publish(progress.Event{StepIndex: step, Name: name, Status: status, ElapsedSeconds: elapsed, Message: message})
}

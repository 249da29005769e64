// Package wizard implements the five stage demo flow: upload a resume, paste
// a job description, watch a simulated analysis and compare the canned
// before/after result.
//
// The controller is a mutex-guarded state machine. All delayed work goes
// through a Scheduler and every pending callback is tied to an epoch that is
// bumped when its timers are cancelled, so a callback that lost the race
// against Reset or a stage change never touches state.
package wizard

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MaxProgress is the value at which processing is complete.
const MaxProgress = 100.0

type timerGroup int

const (
	// groupFlow holds timers that move the flow forward: the accept delay,
	// progress ticks and the settle transitions.
	groupFlow timerGroup = iota
	// groupSuccess holds the timer that hides the success notice.
	groupSuccess
	groupCount
)

type pendingTimer struct {
	group timerGroup
	timer Timer
}

// Controller drives one demo session.
type Controller struct {
	mu     sync.Mutex
	emitMu sync.Mutex

	content *Content
	matcher *Matcher
	sched   Scheduler
	rnd     RandomSource
	timing  Timing
	log     *zap.SugaredLogger

	observers []Observer

	stage       Stage
	highest     Stage
	phase       Phase
	document    *Document
	jobText     string
	keywords    []string
	progress    float64
	comparison  *Comparison
	showSuccess bool
	closed      bool

	epochs  [groupCount]uint64
	nextID  uint64
	timers  map[uint64]pendingTimer
	pending []Event
}

// Option configures a Controller.
type Option func(*Controller)

func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.sched = s }
}

func WithRandomSource(r RandomSource) Option {
	return func(c *Controller) { c.rnd = r }
}

func WithTiming(t Timing) Option {
	return func(c *Controller) { c.timing = t.withDefaults() }
}

func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Controller) {
		if o != nil {
			c.observers = append(c.observers, o)
		}
	}
}

// NewController builds a controller in the upload stage. Without options it
// uses wall-clock timers, a time-seeded random source and DefaultTiming.
func NewController(content *Content, opts ...Option) *Controller {
	c := &Controller{
		content: content,
		matcher: NewMatcher(content.Keywords),
		sched:   RealScheduler(),
		timing:  DefaultTiming(),
		log:     zap.NewNop().Sugar(),
		timers:  make(map[uint64]pendingTimer),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rnd == nil {
		c.rnd = NewRandomSource(time.Now().UnixNano())
	}
	return c
}

// SubmitDocument takes the selected resume. Files that are not PDF, DOC or
// DOCX are ignored, as is any submission outside the upload stage. After
// the accept delay the flow moves to the job description stage.
func (c *Controller) SubmitDocument(doc Document) bool {
	c.mu.Lock()
	kind, ok := DetectKind(doc.Name, doc.MimeType)
	if !ok || c.closed || c.stage != StageUpload {
		c.mu.Unlock()
		return false
	}

	doc.Kind = kind
	c.cancel(groupFlow)
	c.document = &doc
	c.record(Event{Kind: EventDocumentAccepted, From: c.stage, To: c.stage, Document: &doc})
	c.schedule(groupFlow, c.timing.AcceptDelay, func() {
		if c.stage == StageUpload {
			c.setStage(StageJobDescription)
		}
	})
	c.log.Debugw("document accepted", "name", doc.Name, "kind", doc.Kind, "size", doc.Size)
	c.unlockAndEmit()
	return true
}

// UpdateJobText replaces the job description and recomputes the detected
// keywords. It only applies in the job description stage.
func (c *Controller) UpdateJobText(text string) bool {
	c.mu.Lock()
	if c.closed || c.stage != StageJobDescription {
		c.mu.Unlock()
		return false
	}

	c.jobText = text
	c.keywords = c.matcher.Detect(text)
	c.record(Event{Kind: EventJobTextUpdated, From: c.stage, To: c.stage, Keywords: len(c.keywords)})
	c.unlockAndEmit()
	return true
}

// StartProcessing begins the simulated analysis. It needs the job
// description stage and a non-blank job description.
func (c *Controller) StartProcessing() bool {
	c.mu.Lock()
	if c.closed || c.stage != StageJobDescription || strings.TrimSpace(c.jobText) == "" {
		c.mu.Unlock()
		return false
	}

	c.cancel(groupFlow, groupSuccess)
	c.comparison = nil
	c.showSuccess = false
	c.progress = 0
	c.phase = PhaseRunning
	c.setStage(StageProcessing)
	c.record(Event{Kind: EventProcessingStarted, From: StageJobDescription, To: StageProcessing, Keywords: len(c.keywords)})
	c.schedule(groupFlow, c.timing.TickInterval, c.tick)
	c.log.Debugw("processing started", "keywords", len(c.keywords))
	c.unlockAndEmit()
	return true
}

// Reset cancels all pending work and returns to an empty upload stage.
func (c *Controller) Reset() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	from := c.stage
	phase := c.phase
	c.clear()
	c.record(Event{Kind: EventReset, From: from, To: StageUpload, Phase: phase})
	c.log.Debugw("wizard reset", "from", from)
	c.unlockAndEmit()
}

// SelectStage navigates back to a stage that was already reached. Stages
// beyond the highest one reached are refused. Moving to another stage
// cancels the flow timers and leaves every other field untouched.
func (c *Controller) SelectStage(s Stage) bool {
	c.mu.Lock()
	if c.closed || !s.Valid() || s > c.highest {
		c.mu.Unlock()
		return false
	}
	if s == c.stage {
		c.mu.Unlock()
		return true
	}

	c.cancel(groupFlow)
	if c.phase == PhaseRunning || c.phase == PhaseSettling {
		c.phase = PhaseIdle
	}
	c.setStage(s)
	c.unlockAndEmit()
	return true
}

// Close cancels all timers and turns every later call into a no-op.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.cancel(groupFlow, groupSuccess)
	c.closed = true
	c.pending = nil
}

// MilestoneStatus is a processing step with its completion flag.
type MilestoneStatus struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Stage        Stage
	HighestStage Stage
	Phase        Phase
	Document     *Document
	JobText      string
	Keywords     []string
	Progress     float64
	Milestones   []MilestoneStatus
	Comparison   *Comparison
	ShowSuccess  bool
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Stage:        c.stage,
		HighestStage: c.highest,
		Phase:        c.phase,
		JobText:      c.jobText,
		Keywords:     append([]string{}, c.keywords...),
		Progress:     c.progress,
		ShowSuccess:  c.showSuccess,
	}
	if c.document != nil {
		d := *c.document
		s.Document = &d
	}
	if c.comparison != nil {
		cmp := *c.comparison
		s.Comparison = &cmp
	}
	s.Milestones = make([]MilestoneStatus, len(c.content.Milestones))
	for i, m := range c.content.Milestones {
		s.Milestones[i] = MilestoneStatus{Label: m.Label, Done: m.Done(c.progress)}
	}
	return s
}

func (c *Controller) tick() {
	inc := c.rnd.Float64() * c.timing.MaxIncrement
	if inc < 0 {
		inc = 0
	}
	c.progress += inc

	if c.progress >= MaxProgress {
		c.progress = MaxProgress
		c.phase = PhaseSettling
		c.record(Event{Kind: EventProgress, From: c.stage, To: c.stage, Progress: c.progress})
		c.schedule(groupFlow, c.timing.TransformDelay, c.transform)
		return
	}

	c.record(Event{Kind: EventProgress, From: c.stage, To: c.stage, Progress: c.progress})
	c.schedule(groupFlow, c.timing.TickInterval, c.tick)
}

func (c *Controller) transform() {
	c.setStage(StageTransforming)
	c.schedule(groupFlow, c.timing.CompleteDelay, c.complete)
}

func (c *Controller) complete() {
	c.phase = PhaseDone
	cmp := c.content.Comparison
	c.comparison = &cmp
	c.showSuccess = true
	c.setStage(StageComplete)
	c.record(Event{Kind: EventCompleted, From: StageTransforming, To: StageComplete, Progress: c.progress, Keywords: len(c.keywords)})
	c.schedule(groupSuccess, c.timing.SuccessDuration, func() {
		c.showSuccess = false
		c.record(Event{Kind: EventSuccessCleared, From: c.stage, To: c.stage})
	})
	c.log.Debug("processing complete")
}

func (c *Controller) clear() {
	c.cancel(groupFlow, groupSuccess)
	c.stage = StageUpload
	c.highest = StageUpload
	c.phase = PhaseIdle
	c.document = nil
	c.jobText = ""
	c.keywords = nil
	c.progress = 0
	c.comparison = nil
	c.showSuccess = false
}

// setStage must be called with mu held.
func (c *Controller) setStage(to Stage) {
	from := c.stage
	if from == to {
		return
	}
	c.stage = to
	if to > c.highest {
		c.highest = to
	}
	c.record(Event{Kind: EventStageChanged, From: from, To: to, Progress: c.progress})
}

// schedule must be called with mu held. fn runs with mu held, and only if
// no cancel of its group happened in between.
func (c *Controller) schedule(g timerGroup, d time.Duration, fn func()) {
	epoch := c.epochs[g]
	c.nextID++
	id := c.nextID

	t := c.sched.AfterFunc(d, func() {
		c.mu.Lock()
		if _, live := c.timers[id]; !live || c.epochs[g] != epoch || c.closed {
			c.mu.Unlock()
			return
		}
		delete(c.timers, id)
		fn()
		c.unlockAndEmit()
	})
	c.timers[id] = pendingTimer{group: g, timer: t}
}

// cancel must be called with mu held.
func (c *Controller) cancel(groups ...timerGroup) {
	for _, g := range groups {
		c.epochs[g]++
	}
	for id, pt := range c.timers {
		for _, g := range groups {
			if pt.group == g {
				pt.timer.Stop()
				delete(c.timers, id)
				break
			}
		}
	}
}

func (c *Controller) record(e Event) {
	if len(c.observers) == 0 {
		return
	}
	// reset events carry the phase that was interrupted
	if e.Kind != EventReset {
		e.Phase = c.phase
	}
	c.pending = append(c.pending, e)
}

// unlockAndEmit releases mu and then delivers the events recorded under it.
// emitMu is taken before mu is released so deliveries keep mutation order.
func (c *Controller) unlockAndEmit() {
	events := c.pending
	c.pending = nil
	if len(events) == 0 {
		c.mu.Unlock()
		return
	}
	c.emitMu.Lock()
	c.mu.Unlock()
	defer c.emitMu.Unlock()
	for _, e := range events {
		for _, o := range c.observers {
			o.OnEvent(e)
		}
	}
}

// PendingTimers reports how many callbacks are still scheduled.
func (c *Controller) PendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

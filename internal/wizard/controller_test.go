package wizard_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"alfredoptarigan/resumeai/internal/wizard"
	"alfredoptarigan/resumeai/internal/wizard/wizardtest"
)

const jobText = "We need React, Node.js, and AWS experience"

type harness struct {
	ctrl  *wizard.Controller
	sched *wizardtest.ManualScheduler
	rec   *wizardtest.EventRecorder
}

// newHarness uses a fixed increment of 4 per tick, so processing takes
// exactly 25 ticks.
func newHarness(t *testing.T, rnd wizard.RandomSource) *harness {
	t.Helper()
	if rnd == nil {
		rnd = wizardtest.FixedRandom(0.5)
	}
	h := &harness{
		sched: wizardtest.NewManualScheduler(),
		rec:   &wizardtest.EventRecorder{},
	}
	h.ctrl = wizard.NewController(
		wizard.MustDefaultContent(),
		wizard.WithScheduler(h.sched),
		wizard.WithRandomSource(rnd),
		wizard.WithObserver(h.rec),
	)
	return h
}

func resumePDF() wizard.Document {
	return wizard.Document{Name: "resume.pdf", Size: 2048, MimeType: "application/pdf"}
}

// toJobDescription uploads a resume and waits out the accept delay.
func (h *harness) toJobDescription(t *testing.T) {
	t.Helper()
	require.True(t, h.ctrl.SubmitDocument(resumePDF()))
	h.sched.Advance(600 * time.Millisecond)
	require.Equal(t, wizard.StageJobDescription, h.ctrl.Snapshot().Stage)
}

func (h *harness) toProcessing(t *testing.T) {
	t.Helper()
	h.toJobDescription(t)
	require.True(t, h.ctrl.UpdateJobText(jobText))
	require.True(t, h.ctrl.StartProcessing())
}

func TestSubmitDocumentAdvancesAfterAcceptDelay(t *testing.T) {
	h := newHarness(t, nil)

	require.True(t, h.ctrl.SubmitDocument(resumePDF()))
	snap := h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageUpload, snap.Stage)
	require.NotNil(t, snap.Document)
	assert.Equal(t, wizard.KindPDF, snap.Document.Kind)

	h.sched.Advance(599 * time.Millisecond)
	assert.Equal(t, wizard.StageUpload, h.ctrl.Snapshot().Stage)

	h.sched.Advance(time.Millisecond)
	snap = h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageJobDescription, snap.Stage)
	assert.Equal(t, wizard.StageJobDescription, snap.HighestStage)
}

func TestSubmitDocumentAcceptsWordFiles(t *testing.T) {
	cases := []struct {
		doc  wizard.Document
		kind wizard.DocumentKind
	}{
		{wizard.Document{Name: "cv.doc", MimeType: "application/msword"}, wizard.KindDOC},
		{wizard.Document{Name: "cv.docx", MimeType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document"}, wizard.KindDOCX},
		{wizard.Document{Name: "CV.DOCX"}, wizard.KindDOCX},
	}
	for _, tc := range cases {
		t.Run(tc.doc.Name, func(t *testing.T) {
			h := newHarness(t, nil)
			require.True(t, h.ctrl.SubmitDocument(tc.doc))
			assert.Equal(t, tc.kind, h.ctrl.Snapshot().Document.Kind)
		})
	}
}

func TestSubmitDocumentIgnoresRejectedTypes(t *testing.T) {
	h := newHarness(t, nil)

	assert.False(t, h.ctrl.SubmitDocument(wizard.Document{Name: "photo.png", MimeType: "image/png"}))
	assert.False(t, h.ctrl.SubmitDocument(wizard.Document{Name: "notes.txt"}))

	assert.Nil(t, h.ctrl.Snapshot().Document)
	assert.Zero(t, h.sched.Pending())
	assert.Empty(t, h.rec.Events())
}

func TestSubmitDocumentReplacesPreviousSelection(t *testing.T) {
	h := newHarness(t, nil)

	require.True(t, h.ctrl.SubmitDocument(resumePDF()))
	h.sched.Advance(300 * time.Millisecond)
	require.True(t, h.ctrl.SubmitDocument(wizard.Document{Name: "other.docx"}))

	// the first accept delay would have ended here
	h.sched.Advance(300 * time.Millisecond)
	assert.Equal(t, wizard.StageUpload, h.ctrl.Snapshot().Stage)

	h.sched.Advance(300 * time.Millisecond)
	snap := h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageJobDescription, snap.Stage)
	assert.Equal(t, "other.docx", snap.Document.Name)
	assert.Equal(t, []wizard.Stage{wizard.StageJobDescription}, h.rec.StageTransitions())
}

func TestSubmitDocumentOutsideUploadStageIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.toJobDescription(t)

	assert.False(t, h.ctrl.SubmitDocument(wizard.Document{Name: "second.pdf"}))
	assert.Equal(t, "resume.pdf", h.ctrl.Snapshot().Document.Name)
}

func TestResetBeforeAcceptDelayStaysInUpload(t *testing.T) {
	h := newHarness(t, nil)

	require.True(t, h.ctrl.SubmitDocument(resumePDF()))
	h.sched.Advance(100 * time.Millisecond)
	h.ctrl.Reset()
	h.sched.Advance(5 * time.Second)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageUpload, snap.Stage)
	assert.Nil(t, snap.Document)
	assert.Empty(t, h.rec.StageTransitions())
	assert.Zero(t, h.ctrl.PendingTimers())
}

func TestUpdateJobTextDetectsKeywords(t *testing.T) {
	h := newHarness(t, nil)
	h.toJobDescription(t)

	require.True(t, h.ctrl.UpdateJobText(jobText))
	snap := h.ctrl.Snapshot()
	assert.Equal(t, jobText, snap.JobText)
	assert.Subset(t, snap.Keywords, []string{"React", "Node.js", "AWS"})

	require.True(t, h.ctrl.UpdateJobText("Docker"))
	assert.Equal(t, []string{"Docker"}, h.ctrl.Snapshot().Keywords)

	require.True(t, h.ctrl.UpdateJobText(""))
	assert.Empty(t, h.ctrl.Snapshot().Keywords)
}

func TestUpdateJobTextOutsideJobDescriptionIsIgnored(t *testing.T) {
	h := newHarness(t, nil)

	assert.False(t, h.ctrl.UpdateJobText(jobText))
	snap := h.ctrl.Snapshot()
	assert.Empty(t, snap.JobText)
	assert.Empty(t, snap.Keywords)
}

func TestStartProcessingRequiresJobText(t *testing.T) {
	h := newHarness(t, nil)

	assert.False(t, h.ctrl.StartProcessing(), "upload stage")

	h.toJobDescription(t)
	for _, text := range []string{"", "   ", "\n\t "} {
		require.True(t, h.ctrl.UpdateJobText(text))
		assert.False(t, h.ctrl.StartProcessing())
		assert.Equal(t, wizard.StageJobDescription, h.ctrl.Snapshot().Stage)
	}
	assert.Zero(t, h.sched.Pending())
}

func TestProcessingRunsToCompletion(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageProcessing, snap.Stage)
	assert.Equal(t, wizard.PhaseRunning, snap.Phase)
	assert.Zero(t, snap.Progress)

	// 24 ticks of 4 leave progress at 96
	h.sched.Advance(24 * 200 * time.Millisecond)
	assert.InDelta(t, 96.0, h.ctrl.Snapshot().Progress, 1e-9)

	h.sched.Advance(200 * time.Millisecond)
	snap = h.ctrl.Snapshot()
	assert.Equal(t, wizard.MaxProgress, snap.Progress)
	assert.Equal(t, wizard.PhaseSettling, snap.Phase)
	assert.Equal(t, wizard.StageProcessing, snap.Stage)

	h.sched.Advance(799 * time.Millisecond)
	assert.Equal(t, wizard.StageProcessing, h.ctrl.Snapshot().Stage)
	h.sched.Advance(time.Millisecond)
	assert.Equal(t, wizard.StageTransforming, h.ctrl.Snapshot().Stage)

	h.sched.Advance(2 * time.Second)
	snap = h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageComplete, snap.Stage)
	assert.Equal(t, wizard.PhaseDone, snap.Phase)
	assert.True(t, snap.ShowSuccess)
	require.NotNil(t, snap.Comparison)
	assert.Equal(t, 42, snap.Comparison.Original.Score)
	assert.Equal(t, 94, snap.Comparison.Optimized.Score)

	h.sched.Advance(3 * time.Second)
	snap = h.ctrl.Snapshot()
	assert.False(t, snap.ShowSuccess)
	assert.Equal(t, wizard.StageComplete, snap.Stage)
	assert.Zero(t, h.sched.Pending())

	assert.Equal(t, []wizard.Stage{
		wizard.StageJobDescription,
		wizard.StageProcessing,
		wizard.StageTransforming,
		wizard.StageComplete,
	}, h.rec.StageTransitions())
}

func TestProgressIsMonotonicAndBounded(t *testing.T) {
	rnd := wizardtest.NewSequenceRandom(0.9, 0, 0.99, 0.1, 0.5, 0.999, 0.3, 0.7)
	h := newHarness(t, rnd)
	h.toProcessing(t)

	h.sched.RunUntilIdle(1000)

	values := h.rec.Progress()
	require.NotEmpty(t, values)
	for i := 1; i < len(values); i++ {
		assert.GreaterOrEqual(t, values[i], values[i-1])
	}
	for _, v := range values {
		assert.LessOrEqual(t, v, wizard.MaxProgress)
	}
	assert.Equal(t, wizard.MaxProgress, values[len(values)-1])
	assert.Equal(t, wizard.StageComplete, h.ctrl.Snapshot().Stage)
}

func TestProgressClampsOvershoot(t *testing.T) {
	// 0.999 * 8 per tick overshoots 100 on the 13th tick
	h := newHarness(t, wizardtest.FixedRandom(0.999))
	h.toProcessing(t)

	h.sched.Advance(13 * 200 * time.Millisecond)
	assert.Equal(t, wizard.MaxProgress, h.ctrl.Snapshot().Progress)
}

func TestResetWhileRunningCancelsEverything(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)
	h.sched.Advance(time.Second)

	h.ctrl.Reset()
	before := len(h.rec.Events())
	h.sched.Advance(time.Minute)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageUpload, snap.Stage)
	assert.Equal(t, wizard.StageUpload, snap.HighestStage)
	assert.Equal(t, wizard.PhaseIdle, snap.Phase)
	assert.Nil(t, snap.Document)
	assert.Empty(t, snap.JobText)
	assert.Empty(t, snap.Keywords)
	assert.Zero(t, snap.Progress)
	assert.Nil(t, snap.Comparison)
	assert.Len(t, h.rec.Events(), before)
	assert.Zero(t, h.sched.Pending())
}

func TestResetDuringSettlingCancelsTransitions(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)
	h.sched.Advance(5 * time.Second)
	require.Equal(t, wizard.PhaseSettling, h.ctrl.Snapshot().Phase)

	h.ctrl.Reset()
	h.sched.Advance(10 * time.Second)
	assert.Equal(t, wizard.StageUpload, h.ctrl.Snapshot().Stage)
	assert.NotContains(t, h.rec.StageTransitions(), wizard.StageTransforming)
}

func TestResetAfterCompleteHidesSuccess(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)
	h.sched.Advance(8 * time.Second)
	require.True(t, h.ctrl.Snapshot().ShowSuccess)

	h.ctrl.Reset()
	assert.False(t, h.ctrl.Snapshot().ShowSuccess)
	assert.Zero(t, h.sched.Pending())

	var resets int
	for _, e := range h.rec.Events() {
		if e.Kind == wizard.EventReset {
			resets++
			assert.Equal(t, wizard.StageComplete, e.From)
			assert.Equal(t, wizard.PhaseDone, e.Phase)
		}
	}
	assert.Equal(t, 1, resets)
}

func TestSelectStageBeyondHighestIsIgnored(t *testing.T) {
	h := newHarness(t, nil)
	h.toJobDescription(t)

	assert.False(t, h.ctrl.SelectStage(wizard.StageProcessing))
	assert.False(t, h.ctrl.SelectStage(wizard.StageComplete))
	assert.False(t, h.ctrl.SelectStage(wizard.Stage(42)))
	assert.Equal(t, wizard.StageJobDescription, h.ctrl.Snapshot().Stage)
}

func TestSelectStageNavigatesBackWithoutSideEffects(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)
	h.sched.Advance(8 * time.Second)
	before := h.ctrl.Snapshot()
	require.Equal(t, wizard.StageComplete, before.Stage)

	require.True(t, h.ctrl.SelectStage(wizard.StageUpload))
	after := h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageUpload, after.Stage)
	assert.Equal(t, wizard.StageComplete, after.HighestStage)
	assert.Equal(t, before.Document, after.Document)
	assert.Equal(t, before.JobText, after.JobText)
	assert.Equal(t, before.Keywords, after.Keywords)
	assert.Equal(t, before.Progress, after.Progress)
	assert.Equal(t, before.Comparison, after.Comparison)

	// forward again to any reached stage
	require.True(t, h.ctrl.SelectStage(wizard.StageTransforming))
	assert.Equal(t, wizard.StageTransforming, h.ctrl.Snapshot().Stage)
}

func TestSelectStageWhileRunningStopsTicks(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)
	h.sched.Advance(time.Second)
	progress := h.ctrl.Snapshot().Progress

	require.True(t, h.ctrl.SelectStage(wizard.StageJobDescription))
	h.sched.Advance(time.Minute)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageJobDescription, snap.Stage)
	assert.Equal(t, wizard.PhaseIdle, snap.Phase)
	assert.Equal(t, progress, snap.Progress)
	assert.Zero(t, h.sched.Pending())

	// the job description is still there, so processing can restart
	require.True(t, h.ctrl.StartProcessing())
	assert.Zero(t, h.ctrl.Snapshot().Progress)
}

func TestReselectingInterruptedProcessingStaysIdle(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)
	h.sched.Advance(time.Second)
	require.True(t, h.ctrl.SelectStage(wizard.StageJobDescription))
	progress := h.ctrl.Snapshot().Progress

	// processing was reached, so it can be selected, but the run stays stopped
	require.True(t, h.ctrl.SelectStage(wizard.StageProcessing))
	h.sched.Advance(time.Minute)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, wizard.StageProcessing, snap.Stage)
	assert.Equal(t, wizard.PhaseIdle, snap.Phase)
	assert.Equal(t, progress, snap.Progress)
	assert.Zero(t, h.sched.Pending())
	assert.False(t, h.ctrl.StartProcessing())

	// going back to the job description is the way to run again
	require.True(t, h.ctrl.SelectStage(wizard.StageJobDescription))
	require.True(t, h.ctrl.StartProcessing())
	h.sched.Advance(10 * time.Second)
	assert.Equal(t, wizard.StageComplete, h.ctrl.Snapshot().Stage)
}

func TestSelectCurrentStageKeepsTimers(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)

	assert.True(t, h.ctrl.SelectStage(wizard.StageProcessing))
	h.sched.Advance(8 * time.Second)
	assert.Equal(t, wizard.StageComplete, h.ctrl.Snapshot().Stage)
}

func TestMilestonesFollowProgress(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)

	// 6 ticks: progress 24
	h.sched.Advance(6 * 200 * time.Millisecond)
	done := func() []bool {
		var out []bool
		for _, m := range h.ctrl.Snapshot().Milestones {
			out = append(out, m.Done)
		}
		return out
	}
	assert.Equal(t, []bool{true, false, false, false, false}, done())

	// 24 ticks: progress 96
	h.sched.Advance(18 * 200 * time.Millisecond)
	assert.Equal(t, []bool{true, true, true, true, false}, done())

	h.sched.Advance(200 * time.Millisecond)
	assert.Equal(t, []bool{true, true, true, true, true}, done())
}

func TestCloseMakesControllerInert(t *testing.T) {
	h := newHarness(t, nil)
	h.toProcessing(t)

	h.ctrl.Close()
	assert.Zero(t, h.sched.Pending())
	h.sched.Advance(time.Minute)

	assert.Equal(t, wizard.StageProcessing, h.ctrl.Snapshot().Stage)
	assert.False(t, h.ctrl.SelectStage(wizard.StageUpload))
	assert.False(t, h.ctrl.UpdateJobText("x"))
}

func TestRealSchedulerLeavesNoGoroutines(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctrl := wizard.NewController(
		wizard.MustDefaultContent(),
		wizard.WithRandomSource(wizardtest.FixedRandom(0.99)),
		wizard.WithTiming(wizard.Timing{
			AcceptDelay:     time.Millisecond,
			TickInterval:    time.Millisecond,
			MaxIncrement:    50,
			TransformDelay:  time.Millisecond,
			CompleteDelay:   time.Millisecond,
			SuccessDuration: time.Millisecond,
		}),
	)

	require.True(t, ctrl.SubmitDocument(resumePDF()))
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().Stage == wizard.StageJobDescription
	}, time.Second, time.Millisecond)

	require.True(t, ctrl.UpdateJobText(jobText))
	require.True(t, ctrl.StartProcessing())
	require.Eventually(t, func() bool {
		s := ctrl.Snapshot()
		return s.Stage == wizard.StageComplete && !s.ShowSuccess
	}, time.Second, time.Millisecond)

	ctrl.Reset()
	assert.Zero(t, ctrl.PendingTimers())
}

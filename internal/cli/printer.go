package cli

import (
	"context"
	"fmt"
	"io"
	"sync"

	"alfredoptarigan/resumeai/internal/wizard"
)

// demoPrinter writes wizard events as they happen and lets Run wait for a
// stage. It only reads events, never calls back into the controller.
type demoPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	lastStep int
	reached  map[wizard.Stage]chan struct{}
}

func newDemoPrinter(out io.Writer) *demoPrinter {
	p := &demoPrinter{out: out, lastStep: -1, reached: make(map[wizard.Stage]chan struct{})}
	for _, s := range wizard.Stages() {
		p.reached[s] = make(chan struct{})
	}
	return p
}

func (p *demoPrinter) OnEvent(e wizard.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch e.Kind {
	case wizard.EventDocumentAccepted:
		if e.Document != nil {
			fmt.Fprintf(p.out, "Uploading %s ...\n", e.Document.Name)
		}
	case wizard.EventStageChanged:
		fmt.Fprintf(p.out, "-> %s\n", e.To)
		// complete is signalled by the completed event that follows
		if e.To != wizard.StageComplete {
			p.signal(e.To)
		}
	case wizard.EventProcessingStarted:
		fmt.Fprintf(p.out, "Analyzing with %d keyword(s) detected\n", e.Keywords)
	case wizard.EventProgress:
		// one line per 10%
		if step := int(e.Progress) / 10; step > p.lastStep {
			p.lastStep = step
			fmt.Fprintf(p.out, "   %3.0f%%\n", e.Progress)
		}
	case wizard.EventCompleted:
		fmt.Fprintln(p.out, "Resume optimized!")
		p.signal(wizard.StageComplete)
	}
}

func (p *demoPrinter) signal(s wizard.Stage) {
	select {
	case <-p.reached[s]:
	default:
		close(p.reached[s])
	}
}

func (p *demoPrinter) waitFor(ctx context.Context, s wizard.Stage) error {
	p.mu.Lock()
	ch := p.reached[s]
	p.mu.Unlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

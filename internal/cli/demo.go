package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"alfredoptarigan/resumeai/internal/config"
	"alfredoptarigan/resumeai/internal/services"
	"alfredoptarigan/resumeai/internal/wizard"
)

const previewLen = 240

type DemoOptions struct {
	Resume      string
	Job         string
	ContentPath string
	Seed        int64
	Speed       float64
}

func DefaultDemoOptions() *DemoOptions {
	return &DemoOptions{Speed: 1}
}

func NewCmdDemo() *cobra.Command {
	o := DefaultDemoOptions()
	cmd := &cobra.Command{
		Use:   "demo --resume FILE --job TEXT",
		Short: "Walk through the optimization demo in the terminal.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := o.Validate(args); err != nil {
				return err
			}
			return o.Run(cmd.Context(), cmd.OutOrStdout())
		},
		SilenceUsage: true,
	}
	o.Bind(cmd.Flags())
	return cmd
}

func (o *DemoOptions) Bind(fs *pflag.FlagSet) {
	fs.StringVarP(&o.Resume, "resume", "r", "", "Resume file (PDF, DOC or DOCX)")
	fs.StringVarP(&o.Job, "job", "j", "", "Job description text")
	fs.StringVar(&o.ContentPath, "content", "", "YAML demo content file (default: built in)")
	fs.Int64Var(&o.Seed, "seed", 0, "Seed for the progress pacing (default: time based)")
	fs.Float64Var(&o.Speed, "speed", o.Speed, "Playback speed multiplier")
}

func (o *DemoOptions) Validate(args []string) error {
	if o.Resume == "" {
		return errors.New("--resume is required")
	}
	if strings.TrimSpace(o.Job) == "" {
		return errors.New("--job is required")
	}
	if o.Speed <= 0 {
		return errors.New("--speed must be positive")
	}
	return nil
}

func (o *DemoOptions) Run(ctx context.Context, out io.Writer) error {
	content, err := o.content()
	if err != nil {
		return err
	}

	doc, err := o.document(out)
	if err != nil {
		return err
	}

	seed := o.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	p := newDemoPrinter(out)
	ctrl := wizard.NewController(content,
		wizard.WithRandomSource(wizard.NewRandomSource(seed)),
		wizard.WithTiming(scaleTiming(demoTiming(), o.Speed)),
		wizard.WithObserver(p),
	)
	defer ctrl.Close()

	if !ctrl.SubmitDocument(doc) {
		return errors.Newf("%s is not a PDF, DOC or DOCX file", doc.Name)
	}
	if err := p.waitFor(ctx, wizard.StageJobDescription); err != nil {
		return err
	}

	ctrl.UpdateJobText(o.Job)
	if !ctrl.StartProcessing() {
		return errors.New("job description is empty")
	}
	if err := p.waitFor(ctx, wizard.StageComplete); err != nil {
		return err
	}

	printComparison(out, ctrl.Snapshot())
	return nil
}

func (o *DemoOptions) content() (*wizard.Content, error) {
	return wizard.LoadContent(o.ContentPath)
}

// document describes the resume file and prints a text preview for PDFs.
func (o *DemoOptions) document(out io.Writer) (wizard.Document, error) {
	raw, err := os.ReadFile(o.Resume)
	if err != nil {
		return wizard.Document{}, errors.Wrap(err, "failed to read resume")
	}

	name := filepath.Base(o.Resume)
	mimeType := mime.TypeByExtension(filepath.Ext(name))
	kind, _ := wizard.DetectKind(name, mimeType)
	doc := wizard.Document{
		Name:     name,
		Size:     int64(len(raw)),
		MimeType: mimeType,
		Kind:     kind,
	}

	if kind == wizard.KindPDF {
		parsed, err := services.NewPDFParserService().ExtractText(bytes.NewReader(raw), int64(len(raw)))
		if err != nil {
			fmt.Fprintf(out, "(no text preview: %v)\n", err)
		} else {
			doc.PageCount = parsed.PageCount
			fmt.Fprintf(out, "%s, %d page(s)\n%s\n\n", name, parsed.PageCount, preview(parsed.Text))
		}
	}
	return doc, nil
}

func demoTiming() wizard.Timing {
	if cfg, err := config.LoadClient(); err == nil {
		return cfg.Timing.Wizard()
	}
	return wizard.DefaultTiming()
}

func scaleTiming(t wizard.Timing, speed float64) wizard.Timing {
	scale := func(d time.Duration) time.Duration {
		return time.Duration(float64(d) / speed)
	}
	t.AcceptDelay = scale(t.AcceptDelay)
	t.TickInterval = scale(t.TickInterval)
	t.TransformDelay = scale(t.TransformDelay)
	t.CompleteDelay = scale(t.CompleteDelay)
	t.SuccessDuration = scale(t.SuccessDuration)
	return t
}

func preview(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	if len(text) <= previewLen {
		return text
	}
	return text[:previewLen] + "..."
}

func printComparison(out io.Writer, s wizard.Snapshot) {
	if len(s.Keywords) > 0 {
		fmt.Fprintf(out, "\nKeywords matched: %s\n", strings.Join(s.Keywords, ", "))
	}
	if s.Comparison == nil {
		return
	}
	for _, v := range []wizard.ResumeVersion{s.Comparison.Original, s.Comparison.Optimized} {
		fmt.Fprintf(out, "\n== %s (ATS score %d) ==\n%s\n", v.Title, v.Score, strings.TrimSpace(v.Text))
	}
}

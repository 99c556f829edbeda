// Command dlp_render renders a DLP document from a JSON file holding the
// lesson inputs and already generated content. It never calls the LLM.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/yungbote/dlp-generator/internal/app"
	"github.com/yungbote/dlp-generator/internal/modules/lessonplan/content"
	"github.com/yungbote/dlp-generator/internal/platform/envutil"
	"github.com/yungbote/dlp-generator/internal/platform/logger"
	"github.com/yungbote/dlp-generator/internal/services"
)

type renderFile struct {
	content.LessonPlanInputs
	TeacherName   string      `json:"teacher_name"`
	PrincipalName string      `json:"principal_name"`
	Date          string      `json:"date"`
	Content       content.Raw `json:"content"`
}

type options struct {
	In         string
	Out        string
	ImagePath  string
	FetchImage bool
}

func main() {
	var opts options
	flag.StringVar(&opts.In, "in", "", "JSON file with inputs and content (required)")
	flag.StringVar(&opts.Out, "out", "", "output .docx path (default DLP_<subject>_<grade>.docx)")
	flag.StringVar(&opts.ImagePath, "image", "", "picture for the lesson purpose row")
	flag.BoolVar(&opts.FetchImage, "fetch-image", false, "fetch a picture from the image service when -image is not set")
	flag.Parse()

	if strings.TrimSpace(opts.In) == "" {
		flag.Usage()
		os.Exit(2)
	}
	if err := run(opts); err != nil {
		fmt.Fprintf(os.Stderr, "dlp_render: %v\n", err)
		os.Exit(1)
	}
}

func run(opts options) error {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	cfg, err := app.LoadConfig()
	if err != nil {
		return err
	}
	path, size, err := render(context.Background(), log, cfg, opts)
	if err != nil {
		return err
	}
	log.Info("lesson plan written", "path", path, "bytes", size)
	return nil
}

// render writes the document and returns the path and size written.
func render(ctx context.Context, log *logger.Logger, cfg app.Config, opts options) (string, int, error) {
	raw, err := os.ReadFile(opts.In)
	if err != nil {
		return "", 0, err
	}
	var rf renderFile
	if err := json.Unmarshal(raw, &rf); err != nil {
		return "", 0, fmt.Errorf("parse %s: %w", opts.In, err)
	}

	req := services.LessonPlanRequest{
		Inputs:        rf.LessonPlanInputs,
		TeacherName:   rf.TeacherName,
		PrincipalName: rf.PrincipalName,
	}
	if rf.Date != "" {
		if req.Date, err = time.Parse("2006-01-02", rf.Date); err != nil {
			return "", 0, fmt.Errorf("date %q: want YYYY-MM-DD", rf.Date)
		}
	}
	if opts.ImagePath != "" {
		if req.Image, err = os.ReadFile(opts.ImagePath); err != nil {
			return "", 0, err
		}
	}

	svc := services.NewLessonPlanService(log, nil, app.NewAssembler(log, cfg, opts.FetchImage), nil, services.LessonPlanServiceConfig{})
	doc, err := svc.Render(ctx, req, rf.Content.Normalize())
	if err != nil {
		return "", 0, err
	}
	out := opts.Out
	if out == "" {
		out = doc.FileName
	}
	if err := os.WriteFile(out, doc.Data, 0o644); err != nil {
		return "", 0, err
	}
	return out, len(doc.Data), nil
}

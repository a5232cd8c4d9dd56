// blogwriter turns a reference text into a long-form article by outlining,
// drafting and polishing it section by section against any OpenAI-compatible API.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/baalimago/go_away_boilerplate/pkg/ancli"
	"github.com/baalimago/go_away_boilerplate/pkg/shutdown"
	"github.com/openai/openai-go/option"

	"github.com/tnglemongrass/blogwriter/internal/config"
	"github.com/tnglemongrass/blogwriter/internal/input"
	"github.com/tnglemongrass/blogwriter/internal/llm"
	"github.com/tnglemongrass/blogwriter/internal/llm/openaisdk"
	"github.com/tnglemongrass/blogwriter/internal/models"
	"github.com/tnglemongrass/blogwriter/internal/pipeline"
	"github.com/tnglemongrass/blogwriter/internal/render"
)

func main() {
	ancli.SetupSlog()
	ctx, cancel := context.WithCancel(context.Background())
	go func() { shutdown.Monitor(cancel) }()

	os.Exit(run(ctx, os.Args[1:], os.Stdin, os.Stdout))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
	cfg, err := config.Load(args)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("loading config: %v\n", err))
		return 1
	}

	if cfg.APIKey == "" {
		ancli.PrintWarn("no API key configured. Set OPENAI_API_KEY or use --api-key.\n")
	}

	httpClient := &http.Client{Timeout: cfg.Timeout}
	client := llm.NewClient(cfg.APIBase, cfg.APIKey)
	client.HTTPClient = httpClient
	modelMgr := models.NewManager(client)

	if cfg.ListModels {
		return listModels(ctx, modelMgr, cfg.Model, stdout)
	}
	warnUnknownModel(ctx, modelMgr, cfg.Model)

	completer, err := buildCompleter(cfg, client, httpClient)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("creating client: %v\n", err))
		return 1
	}

	reference, style, err := readInput(cfg, stdin)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("reading reference text: %v\n", err))
		return 1
	}
	if strings.TrimSpace(reference) == "" {
		ancli.PrintErr("reference text is empty\n")
		return 1
	}

	opts := cfg.PipelineOptions()
	opts.Style = style
	opts.Logger = slog.Default()
	opts.OnEvent = printProgress
	if cfg.Stream {
		opts.Agent.OnDelta = func(d string) { fmt.Fprint(os.Stderr, d) }
	}

	res, err := pipeline.New(completer, opts).Run(ctx, reference)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("generating article: %v\n", err))
		return 1
	}
	if empty := res.EmptySections(); len(empty) > 0 {
		ancli.PrintWarn(fmt.Sprintf("sections without content: %v\n", empty))
	}
	if len(res.Sections) == 0 {
		ancli.PrintWarn("outline produced no sections, the article is empty\n")
	}

	if err := emit(cfg, res.Article, stdout); err != nil {
		ancli.PrintErr(fmt.Sprintf("writing article: %v\n", err))
		return 1
	}
	return 0
}

func buildCompleter(cfg *config.Config, client *llm.Client, httpClient *http.Client) (llm.Completer, error) {
	if cfg.Backend == "sdk" {
		return openaisdk.New(cfg.APIBase, cfg.APIKey, option.WithHTTPClient(httpClient))
	}
	return client, nil
}

func readInput(cfg *config.Config, stdin io.Reader) (reference, style string, err error) {
	if !cfg.Interactive {
		if cfg.File == "" {
			return "", "", errors.New("no reference text: use --file or --interactive")
		}
		reference, err = input.ReadFile(cfg.File, stdin)
		return reference, cfg.Style, err
	}

	term, err := input.NewTerminal(input.HistoryPath())
	if err != nil {
		return "", "", err
	}
	defer term.Close()

	fmt.Printf("Enter the reference text, finish with a single %q line or Ctrl-D.\n", input.EndMarker)
	if reference, err = input.ReadReference(term.ReadLine); err != nil {
		return "", "", err
	}
	style, err = input.ReadStyle(term.ReadLine, cfg.Style)
	return reference, style, err
}

func listModels(ctx context.Context, mgr *models.Manager, current string, stdout io.Writer) int {
	list, err := mgr.List(ctx)
	if err != nil {
		ancli.PrintErr(fmt.Sprintf("listing models: %v\n", err))
		return 1
	}
	fmt.Fprintln(stdout, "Available models:")
	for _, m := range list {
		marker := "  "
		if m.ID == current {
			marker = "* "
		}
		fmt.Fprintf(stdout, "%s%s\n", marker, m.ID)
	}
	return 0
}

// warnUnknownModel is best effort; many compatible endpoints do not serve /models.
func warnUnknownModel(ctx context.Context, mgr *models.Manager, model string) {
	ok, err := mgr.Has(ctx, model)
	if err != nil {
		slog.Debug("model list unavailable", "error", err)
		return
	}
	if !ok {
		ancli.PrintWarn(fmt.Sprintf("model %q is not listed by the endpoint\n", model))
	}
}

func printProgress(e pipeline.Event) {
	switch {
	case e.Stage == pipeline.StageOutlining:
		ancli.PrintOK("1. generating outline...\n")
	case e.Stage == pipeline.StageDrafting && e.Index == 0:
		ancli.PrintOK(fmt.Sprintf("2. drafting %d sections...\n", e.Total))
	case e.Stage == pipeline.StageDrafting:
		ancli.PrintOK(fmt.Sprintf("drafted section %d/%d: %s\n", e.Index, e.Total, e.Title))
	case e.Stage == pipeline.StagePolishing && e.Index == 0:
		ancli.PrintOK("3. polishing article...\n")
	case e.Stage == pipeline.StagePolishing:
		ancli.PrintOK(fmt.Sprintf("polished section %d/%d\n", e.Index, e.Total))
	}
}

func emit(cfg *config.Config, article string, stdout io.Writer) error {
	if cfg.Output != "" {
		if err := render.Save(cfg.Output, article, cfg.Format); err != nil {
			return err
		}
		ancli.PrintOK(fmt.Sprintf("article saved to %s\n", cfg.Output))
	}

	if cfg.Render {
		r, err := render.NewRenderer(stdout)
		if err != nil {
			return err
		}
		return r.Render(article)
	}

	sep := strings.Repeat("=", 50)
	_, err := fmt.Fprintf(stdout, "%s\n%s\n%s\n", sep, article, sep)
	return err
}

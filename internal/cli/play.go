package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"codecrafter-quiz/internal/app"
	"codecrafter-quiz/internal/catalog"
	"codecrafter-quiz/internal/config"
	"codecrafter-quiz/internal/infra/memory"
	"codecrafter-quiz/internal/view"
	"codecrafter-quiz/internal/visits"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

const playHelp = `commands:
  start                 open the topic list
  <n>                   pick entry n on the current page (topic, quiz, answer, post)
  next                  next question / finish quiz
  time                  show the remaining time
  home                  back to the start page (abandons a running quiz)
  about|privacy|terms|blog
  dismiss               clear the notice
  help | quit`

// NewPlayCmd plays a quiz in the terminal against the catalog API, or the
// bundled catalog with --local.
func NewPlayCmd(configPath *string) *cobra.Command {
	var local bool
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a quiz in the terminal",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd.Context(), *configPath, local, os.Stdin, os.Stdout)
		},
	}
	cmd.Flags().BoolVar(&local, "local", false, "use the bundled catalog instead of the HTTP API")
	return cmd
}

func runPlay(ctx context.Context, configPath string, local bool, in io.Reader, out io.Writer) error {
	// logs go to stderr so they do not interleave with the game screen
	cfg, log, err := loadConfigTo(configPath, os.Stderr)
	if err != nil {
		return err
	}

	var resources cleanup
	defer resources.run()

	var source app.Catalog
	if local {
		source = catalog.NewLocal(memory.NewQuizRepository(
			memory.NewStaticQuizLoader(catalog.Sample()),
			config.TTLDuration(cfg.Quiz.TTL, 10*time.Minute),
		))
	} else {
		source = catalog.NewHTTPClient(cfg.Catalog.BaseURL, &http.Client{
			Timeout: config.TTLDuration(cfg.Catalog.Timeout, 5*time.Second),
		})
	}

	redisClient := newRedisClient(cfg)
	if redisClient != nil {
		resources.add(func() { _ = redisClient.Close() })
	}
	visitSvc, err := buildVisits(ctx, cfg, redisClient, log, &resources)
	if err != nil {
		return err
	}
	userID := visits.AnonymousID(cfg.Services.InitialSessionToken)
	go visitSvc.Start(ctx, userID)

	dispatcher := buildAnalytics(cfg, log, nil, &resources)
	rt := app.NewRuntime(uuid.NewString(), source, dispatcher.Session(userID), runtimeOptions(cfg, log)...)
	return newPlayer(rt, time.Now).run(ctx, in, out)
}

// player drives one runtime from line-oriented input.
type player struct {
	rt  *app.Runtime
	now func() time.Time
}

func newPlayer(rt *app.Runtime, now func() time.Time) *player {
	return &player{rt: rt, now: now}
}

func (p *player) run(ctx context.Context, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := &lockedWriter{w: out}
	updates, unsubscribe := p.rt.Subscribe()
	defer unsubscribe()
	go func() { _ = p.rt.Run(ctx) }()

	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		last := ""
		for snap := range updates {
			key := screenKey(snap)
			if key == last {
				continue
			}
			last = key
			_ = view.WriteText(w, view.Render(snap, p.now()))
		}
	}()

	reader := bufio.NewReader(in)
	for {
		line, err := reader.ReadString('\n')
		if cmd := strings.ToLower(strings.TrimSpace(line)); cmd != "" {
			if cmd == "quit" || cmd == "exit" {
				break
			}
			p.handle(ctx, w, cmd)
		}
		if err != nil {
			break
		}
	}

	cancel()
	<-p.rt.Done()
	<-printerDone
	return nil
}

func (p *player) handle(ctx context.Context, w io.Writer, cmd string) {
	snap := p.rt.Snapshot()
	var msg app.Message

	switch cmd {
	case "help", "?":
		fmt.Fprintln(w, playHelp)
		return
	case "time":
		fmt.Fprintf(w, "time left: %s\n", view.FormatTimer(snap.RemainingSeconds))
		return
	case "start":
		msg = app.GetStarted{}
	case "next":
		msg = app.NextQuestion{}
	case "home":
		msg = app.GoHome{}
	case "dismiss":
		msg = app.DismissNotice{}
	case "about", "privacy", "terms", "blog", "topics":
		msg = app.Navigate{Page: app.Page(cmd)}
	default:
		n, err := strconv.Atoi(cmd)
		if err != nil {
			fmt.Fprintf(w, "unknown command %q, type 'help'\n", cmd)
			return
		}
		msg, err = pick(view.Render(snap, p.now()), n)
		if err != nil {
			fmt.Fprintf(w, "! %v\n", err)
			return
		}
	}

	if _, err := p.rt.Dispatch(ctx, msg); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(w, "! %v\n", err)
	}
}

var errNoChoice = errors.New("nothing to pick on this page")

// pick maps a 1-based number to the action for the current page.
func pick(v view.View, n int) (app.Message, error) {
	outOfRange := func(count int) error {
		return fmt.Errorf("choose 1-%d", count)
	}

	switch v.Page {
	case app.PageTopics:
		if n < 1 || n > len(v.Topics) {
			return nil, outOfRange(len(v.Topics))
		}
		return app.SelectTopic{Topic: v.Topics[n-1]}, nil
	case app.PageInstructions:
		if n < 1 || n > len(v.Quizzes) {
			return nil, outOfRange(len(v.Quizzes))
		}
		return app.StartQuiz{QuizID: v.Quizzes[n-1].ID}, nil
	case app.PageQuiz:
		if v.Question == nil {
			return nil, errNoChoice
		}
		if n < 1 || n > len(v.Question.Options) {
			return nil, outOfRange(len(v.Question.Options))
		}
		return app.SelectAnswer{Option: v.Question.Options[n-1].Text}, nil
	case app.PageBlog:
		if n < 1 || n > len(v.Posts) {
			return nil, outOfRange(len(v.Posts))
		}
		return app.OpenPost{PostID: v.Posts[n-1].ID}, nil
	default:
		return nil, errNoChoice
	}
}

// screenKey changes whenever the terminal screen would look different,
// ignoring the per-second countdown.
func screenKey(s app.Snapshot) string {
	quizID := ""
	if s.SelectedQuiz != nil {
		quizID = s.SelectedQuiz.ID
	}
	return fmt.Sprintf("%s|%d|%s|%s|%d|%s|%s|%s|%d",
		s.Page, len(s.Quizzes), s.SelectedTopic, quizID, s.CurrentQuestion,
		s.SelectedAnswer, s.SelectedPost, s.Notice, s.Attempt)
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

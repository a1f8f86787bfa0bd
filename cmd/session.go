package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/specrunner/specrunner/internal/models"
	"github.com/specrunner/specrunner/internal/ui"
	"github.com/specrunner/specrunner/internal/workflow"
	"github.com/specrunner/specrunner/internal/workspace"
)

// interruptExitCode follows the shell convention of 128 + SIGINT.
const interruptExitCode = 130

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Start the interactive spec workflow session",
	Run:   runSession,
}

func init() {
	rootCmd.AddCommand(sessionCmd)
}

// session holds the per-session state: the app, the session id and the
// feature currently being worked on.
type session struct {
	*app
	id      string
	feature *models.Feature
	tty     bool
}

func runSession(cmd *cobra.Command, _ []string) {
	a, err := newApp()
	if err != nil {
		fmt.Fprintln(os.Stderr, ui.Failure(err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	s := &session{
		app: a,
		id:  uuid.NewString(),
		tty: term.IsTerminal(int(os.Stdin.Fd())),
	}
	if f, ok := a.detector.Detect(); ok {
		s.feature = &f
	}
	if s.tty {
		a.exec.OnChunk = func(chunk string) { fmt.Print(chunk) }
	}

	// Hot-reload agent definitions while the session runs.
	go func() {
		_ = a.catalog.Watch(ctx, func() {
			a.logger.Info("agent definitions reloaded")
		})
	}()

	s.printBanner()
	s.loop(ctx)

	if ctx.Err() != nil {
		fmt.Println()
		os.Exit(interruptExitCode)
	}
}

func (s *session) loop(ctx context.Context) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		if s.tty {
			fmt.Print(ui.StylePrompt.Render("spec> "))
		}
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if done := s.handle(ctx, strings.TrimSpace(line)); done {
				return
			}
		}
	}
}

// handle processes one input line. It returns true when the session should
// end.
func (s *session) handle(ctx context.Context, line string) bool {
	switch {
	case line == "":
		return false
	case line == "exit" || line == "quit":
		return true
	case line == "help":
		s.printHelp()
	case line == "context":
		s.printContext()
	case line == "refresh":
		if err := s.catalog.Reload(); err != nil {
			fmt.Println(ui.Failure(err.Error()))
		} else {
			fmt.Println(ui.Success(fmt.Sprintf("reloaded %d agents", len(s.catalog.List(true)))))
		}
	case strings.HasPrefix(line, "agents"):
		s.handleAgents(strings.Fields(line)[1:])
	case strings.HasPrefix(line, "feature "):
		s.handleFeature(strings.Fields(line)[1:])
	case strings.HasPrefix(line, "/spec."):
		s.handleCommand(ctx, line)
	default:
		fmt.Println(ui.Warn(fmt.Sprintf("unknown input %q; type help for usage", line)))
	}
	return false
}

// handleCommand parses and dispatches a "/spec.<command> [text] [--agents
// a,b]" line.
func (s *session) handleCommand(ctx context.Context, line string) {
	name, rest, _ := strings.Cut(strings.TrimPrefix(line, "/spec."), " ")
	ct, err := models.ParseCommandType(name)
	if err != nil {
		fmt.Println(ui.Failure(err.Error()))
		return
	}

	userInput, agents := splitAgentsFlag(rest)

	feature, err := s.resolveFeature(ct, userInput)
	if err != nil {
		fmt.Println(ui.Failure(err.Error()))
		return
	}

	resp, err := s.dispatcher.Dispatch(ctx, &workflow.Request{
		Command:   ct,
		Feature:   feature,
		UserInput: userInput,
		Agents:    agents,
		SessionID: s.id,
	})
	if err != nil {
		fmt.Println(ui.Failure(err.Error()))
		return
	}

	if s.tty {
		fmt.Println() // streamed output has no trailing newline
	} else {
		fmt.Println(resp.Content)
	}
	fmt.Println(ui.Success(fmt.Sprintf("%s complete (agent: %s) → %s", ct, ui.StyleAgent.Render(resp.Agent), resp.ArtifactPath)))
	if resp.Suggestions != "" {
		fmt.Println(ui.StyleSuggestionsBox.Render("Next steps:\n" + resp.Suggestions))
	}
}

// resolveFeature picks the feature a command applies to. specify bootstraps
// a new feature from its description when none is active.
func (s *session) resolveFeature(ct models.CommandType, userInput string) (models.Feature, error) {
	if s.feature != nil {
		return *s.feature, nil
	}
	if f, ok := s.detector.Detect(); ok {
		s.feature = &f
		return f, nil
	}
	if ct == models.CommandSpecify && userInput != "" {
		f, err := s.detector.GetOrCreate(s.detector.NextID(), workspace.Slugify(userInput))
		if err != nil {
			return models.Feature{}, err
		}
		s.feature = &f
		fmt.Println(ui.StyleSubtle.Render("starting feature " + f.Slug()))
		return f, nil
	}
	if ct == models.CommandConstitution {
		// project-wide, no feature needed; use a placeholder spec dir
		return s.detector.GetOrCreate("000", "project")
	}
	return models.Feature{}, fmt.Errorf("no active feature; check out a NNN-name branch or run /spec.specify <description>")
}

func (s *session) handleFeature(args []string) {
	if len(args) != 2 {
		fmt.Println(ui.Warn("usage: feature <id> <name>   e.g. feature 001 user-login"))
		return
	}
	f, err := s.detector.GetOrCreate(args[0], args[1])
	if err != nil {
		fmt.Println(ui.Failure(err.Error()))
		return
	}
	s.feature = &f
	fmt.Println(ui.Success("active feature: " + f.Slug()))
}

func (s *session) handleAgents(args []string) {
	if len(args) == 0 {
		args = []string{"list"}
	}
	switch args[0] {
	case "list":
		for _, d := range s.catalog.List(true) {
			marker := ui.StyleSuccess.Render("enabled ")
			if !s.catalog.Enabled(d.Name) {
				marker = ui.StyleSubtle.Render("disabled")
			}
			fmt.Printf("  %s  %s  %s\n", marker, ui.StyleAgent.Render(d.Name), ui.StyleSubtle.Render(d.Specialization))
		}
	case "show":
		if len(args) < 2 {
			fmt.Println(ui.Warn("usage: agents show <name>"))
			return
		}
		d, ok := s.catalog.ByName(args[1])
		if !ok {
			fmt.Println(ui.Failure("unknown agent: " + args[1]))
			return
		}
		fmt.Println(ui.StyleSectionTitle.Render(d.Name))
		fmt.Println("  role:           " + d.Role)
		fmt.Println("  specialization: " + d.Specialization)
		fmt.Println("  capabilities:   " + strings.Join(d.Capabilities, ", "))
		fmt.Printf("  priority:       %d\n", d.Priority)
		fmt.Println("  source:         " + d.Path)
	case "enable", "disable":
		if len(args) < 2 {
			fmt.Printf("usage: agents %s <name>\n", args[0])
			return
		}
		toggle := s.catalog.Enable
		if args[0] == "disable" {
			toggle = s.catalog.Disable
		}
		if !toggle(args[1]) {
			fmt.Println(ui.Failure("unknown agent: " + args[1]))
			return
		}
		fmt.Println(ui.Success(args[1] + " " + args[0] + "d for this session"))
	default:
		fmt.Println(ui.Warn("usage: agents [list|show <name>|enable <name>|disable <name>]"))
	}
}

func (s *session) printBanner() {
	if !s.tty {
		return
	}
	banner := fmt.Sprintf("specrunner %s — session %s\n%d agents loaded. Type help for usage.",
		version, s.id[:8], len(s.catalog.List(true)))
	fmt.Println(ui.StyleBanner.Render(banner))
}

func (s *session) printHelp() {
	fmt.Println(ui.StyleSectionTitle.Render("Workflow commands"))
	fmt.Println(`  /spec.constitution [principles]   create the project constitution
  /spec.specify <description>       create a feature specification
  /spec.clarify                     surface ambiguities in the spec
  /spec.plan                        generate the implementation plan
  /spec.tasks                       break the plan into tasks
  /spec.implement [focus]           generate implementation guidance
  /spec.analyze                     check artifacts for consistency
  /spec.checklist [extras]          generate a quality checklist

  Append --agents a,b to any command to pick agents explicitly.`)
	fmt.Println(ui.StyleSectionTitle.Render("Session commands"))
	fmt.Println(`  context                           show the active feature and state
  feature <id> <name>               switch the active feature
  agents [list|show|enable|disable] inspect or toggle agents
  refresh                           reload agent definitions
  exit                              leave the session`)
}

func (s *session) printContext() {
	if s.feature == nil {
		fmt.Println(ui.StyleSubtle.Render("no active feature"))
		return
	}
	f := *s.feature
	fmt.Println(ui.StyleSectionTitle.Render("Feature " + f.Slug()))
	fmt.Println("  branch:  " + f.Branch)
	fmt.Println("  status:  " + string(f.Status))
	fmt.Println("  specDir: " + f.SpecDir)

	st, err := s.dispatcher.State(f)
	if err != nil {
		fmt.Println(ui.Failure(err.Error()))
		return
	}
	fmt.Println("  phase:   " + string(st.CurrentPhase))
	if st.SuggestedNext != nil {
		fmt.Println("  next:    /spec." + string(*st.SuggestedNext))
	}
	if len(st.CompletedCommands) > 0 {
		fmt.Println(ui.StyleSectionTitle.Render("History"))
		for _, rec := range st.CompletedCommands {
			fmt.Printf("  %s  %s\n", rec.Timestamp.Format("2006-01-02 15:04"), rec.Command)
		}
	}
}

// splitAgentsFlag extracts a trailing or embedded "--agents a,b" from the
// free-text remainder of a command line.
func splitAgentsFlag(rest string) (userInput string, agents []string) {
	fields := strings.Fields(rest)
	var kept []string
	for i := 0; i < len(fields); i++ {
		if fields[i] == "--agents" && i+1 < len(fields) {
			for _, name := range strings.Split(fields[i+1], ",") {
				if name = strings.TrimSpace(name); name != "" {
					agents = append(agents, name)
				}
			}
			i++
			continue
		}
		if v, ok := strings.CutPrefix(fields[i], "--agents="); ok {
			for _, name := range strings.Split(v, ",") {
				if name = strings.TrimSpace(name); name != "" {
					agents = append(agents, name)
				}
			}
			continue
		}
		kept = append(kept, fields[i])
	}
	return strings.Join(kept, " "), agents
}

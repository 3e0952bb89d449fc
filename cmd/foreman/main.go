// Command foreman runs an autonomous agent against a goal: it plans the
// goal into subtasks, executes them with filesystem, shell, and web tools,
// and prints an evaluation of the outcome.
//
// Usage:
//
//	foreman [flags] "goal"
//
// Progress events are streamed to stderr as JSON lines; the final
// evaluation is printed to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/kettleworks/foreman/agent"
	"github.com/kettleworks/foreman/gateway"
	"github.com/kettleworks/foreman/history"
	"github.com/kettleworks/foreman/tools"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "path to YAML config file")
		extra       = flag.String("context", "", "additional context for planning")
		quick       = flag.Bool("quick", false, "execute the goal as a single task, no planning")
		topological = flag.Bool("topo", false, "schedule subtasks by dependency order")
		historyPath = flag.String("history", "", "path to the run history database")
		recent      = flag.Int("recent", 0, "print the N most recent runs and exit")
	)
	flag.Parse()

	cfg := agent.DefaultConfig()
	if *configPath != "" {
		loaded, err := agent.LoadConfig(*configPath)
		if err != nil {
			return fail(err)
		}
		cfg = loaded
	}

	var store *history.Store
	if *historyPath != "" {
		s, err := history.Open(*historyPath)
		if err != nil {
			return fail(err)
		}
		defer s.Close()
		store = s
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *recent > 0 {
		if store == nil {
			return fail(fmt.Errorf("-recent requires -history"))
		}
		if err := printRecent(ctx, store, *recent); err != nil {
			return fail(err)
		}
		return 0
	}

	goal := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if goal == "" {
		fmt.Fprintln(os.Stderr, "usage: foreman [flags] \"goal\"")
		flag.PrintDefaults()
		return 2
	}

	workspace := cfg.Agent.Workspace
	if workspace == "" {
		workspace = "."
	}

	client := gateway.NewClientFromEnv()
	defer client.Close()

	registry := tools.NewRegistry()
	registry.Register(tools.NewFileReadTool(workspace))
	registry.Register(tools.NewFileWriteTool(workspace))
	registry.Register(tools.NewFileListTool(workspace))
	registry.Register(tools.NewCommandTool(workspace))
	registry.Register(tools.NewWebFetchTool())

	var opts []agent.Option
	if store != nil {
		opts = append(opts, agent.WithRecorder(store))
	}
	a := agent.New(cfg, client, registry, opts...)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		enc := json.NewEncoder(os.Stderr)
		for ev := range a.Events() {
			enc.Encode(ev)
		}
	}()

	exitCode := 0
	if *quick {
		result, err := a.QuickTask(ctx, goal)
		if err != nil {
			a.Close()
			return fail(err)
		}
		fmt.Println(result.Output)
		if !result.Success {
			if result.Error != "" {
				fmt.Fprintln(os.Stderr, result.Error)
			}
			exitCode = 1
		}
	} else {
		runGoal := a.Run
		if *topological {
			runGoal = a.RunTopological
		}
		final, err := runGoal(ctx, goal, *extra)
		if err != nil {
			a.Close()
			return fail(err)
		}
		printEvaluation(final)
		if !final.OverallSuccess {
			exitCode = 1
		}
	}

	a.Close()
	wg.Wait()
	return exitCode
}

func printEvaluation(final *agent.FinalEvaluation) {
	fmt.Printf("Goal: %s\n", final.Goal)
	fmt.Printf("Result: %s (score %.2f)\n", verdict(final.OverallSuccess), final.OverallScore)
	fmt.Printf("Summary: %s\n", final.Summary)
	for _, step := range final.StepEvaluations {
		fmt.Printf("  [%d] %.2f  %s\n", step.StepID, step.Score, step.StepDescription)
		for _, issue := range step.Issues {
			fmt.Printf("        issue: %s\n", issue)
		}
	}
	for _, s := range final.Strengths {
		fmt.Printf("  + %s\n", s)
	}
	for _, w := range final.Weaknesses {
		fmt.Printf("  - %s\n", w)
	}
}

func printRecent(ctx context.Context, store *history.Store, n int) error {
	runs, err := store.RecentRuns(ctx, n)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no recorded runs")
		return nil
	}
	for _, r := range runs {
		fmt.Printf("%s  %-7s %.2f  %s  %s\n",
			r.CompletedAt.Local().Format("2006-01-02 15:04"),
			verdict(r.Success), r.Score, r.RunID, r.Goal)
	}
	return nil
}

func verdict(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

func fail(err error) int {
	fmt.Fprintf(os.Stderr, "foreman: %v\n", err)
	return 1
}

// jobctl inspects and mutates the local ledgers without touching
// Telegram or the remote. Exit code 1 means the operation itself failed;
// usage errors print help and exit 2.

package main

import (
	"fmt"
	"log"
	"os"
	"sort"

	"go-jobsearch-pipeline/internal/config"
	"go-jobsearch-pipeline/internal/digest"
	"go-jobsearch-pipeline/internal/learning"
	"go-jobsearch-pipeline/internal/score"
	"go-jobsearch-pipeline/internal/state"
	"go-jobsearch-pipeline/internal/store"
	"go-jobsearch-pipeline/internal/tracker"
)

const usage = `Usage: jobctl <command>

Commands:
  age update                 advance job ages by days since last run
  age stats                  show the age histogram
  state stats                show applied/ignored/sent counts
  state applied              list applied jobs
  state ignored              list ignored jobs
  state undo <category> <id> remove a mark (category: applied|ignored)
  digest                     print today's digest selection without sending
`

func main() {
	log.SetFlags(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}

	args := os.Args[1:]
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var cmdErr error
	switch args[0] {
	case "age":
		cmdErr = runAge(cfg, args[1:])
	case "state":
		cmdErr = runState(cfg, args[1:])
	case "digest":
		cmdErr = runDigest(cfg)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if cmdErr != nil {
		log.Fatalf("❌ %v", cmdErr)
	}
}

func runAge(cfg *config.Config, args []string) error {
	if len(args) != 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	tr := tracker.New(cfg.TrackerPath(), cfg.MaxAge)

	switch args[0] {
	case "update":
		jobs := store.New(cfg.JobsPath(), nil)
		records, skipped, err := jobs.Load()
		if err != nil {
			return fmt.Errorf("load job store: %w", err)
		}
		if skipped > 0 {
			log.Printf("⚠️ %d malformed store lines skipped", skipped)
		}
		res, err := tr.Update(records)
		if err != nil {
			return err
		}
		if res.Skipped {
			fmt.Println("Already updated today, nothing to do.")
			return nil
		}
		fmt.Printf("Advanced %d days: %d new, %d removed, %d active\n",
			res.DaysPassed, res.New, res.Removed, res.Active)
	case "stats":
		hist := tr.AgeHistogram()
		if len(hist) == 0 {
			fmt.Println("No tracked jobs.")
			return nil
		}
		ages := make([]int, 0, len(hist))
		for age := range hist {
			ages = append(ages, age)
		}
		sort.Ints(ages)
		for _, age := range ages {
			fmt.Printf("age %2d: %d jobs\n", age, hist[age])
		}
		fmt.Printf("last updated: %s\n", tr.LastUpdated())
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	return nil
}

func runState(cfg *config.Config, args []string) error {
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	ledger := state.NewLedger(cfg.StatePath())

	switch args[0] {
	case "stats":
		stats := ledger.Stats()
		fmt.Printf("applied: %d\nignored: %d\nsent:    %d\n",
			stats.Applied, stats.Ignored, stats.Sent)
	case "applied":
		entries := ledger.Applied()
		if len(entries) == 0 {
			fmt.Println("No applied jobs.")
			return nil
		}
		for _, id := range sortedKeys(entries) {
			e := entries[id]
			fmt.Printf("%s  %s @ %s (%s)\n", id, e.Title, e.Company, e.Date)
		}
	case "ignored":
		entries := ledger.Ignored()
		if len(entries) == 0 {
			fmt.Println("No ignored jobs.")
			return nil
		}
		for _, id := range sortedKeys(entries) {
			e := entries[id]
			fmt.Printf("%s  %s @ %s (%s, %s)\n", id, e.Title, e.Company, e.Date, e.Reason)
		}
	case "undo":
		if len(args) != 3 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		category, id := args[1], args[2]
		removed, err := ledger.Unmark(category, id)
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no %s mark found for %s", category, id)
		}
		fmt.Printf("Removed %s mark for %s\n", category, id)
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	return nil
}

func runDigest(cfg *config.Config) error {
	rows, err := score.LoadScores(cfg.ScoresPath())
	if err != nil {
		return fmt.Errorf("load scores (run the pipeline first): %w", err)
	}

	ledger := state.NewLedger(cfg.StatePath())
	selector := digest.NewSelector(ledger, cfg.ScoreThreshold, cfg.DigestMax)

	patterns := learning.Load(cfg.LearningPath())
	selector = selector.WithAdjustment(patterns.Adjustment)

	selection := selector.Select(rows)
	switch selection.Outcome {
	case digest.OutcomeNoJobs:
		fmt.Println("No jobs above threshold.")
		return nil
	case digest.OutcomeAllHandled:
		fmt.Println("All matching jobs already handled.")
		return nil
	}

	for i, job := range selection.Jobs {
		fmt.Printf("%2d. [%.2f] %s @ %s (age %d)\n     %s\n",
			i+1, job.Score, job.Title, job.Company, job.Age, job.URL)
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

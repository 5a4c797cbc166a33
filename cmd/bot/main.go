package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go-jobsearch-pipeline/internal/config"
	"go-jobsearch-pipeline/internal/gitsync"
	"go-jobsearch-pipeline/internal/httpclient"
	"go-jobsearch-pipeline/internal/pipeline"
	"go-jobsearch-pipeline/internal/score"
	"go-jobsearch-pipeline/internal/state"
	"go-jobsearch-pipeline/internal/store"
	"go-jobsearch-pipeline/internal/telegram"
	"go-jobsearch-pipeline/internal/tracker"

	"github.com/robfig/cron/v3"
)

func main() {
	//load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if err := cfg.RequireTelegram(); err != nil {
		log.Fatalf("❌ %v", err)
	}

	boards, err := config.LoadBoards(cfg.BoardsPath)
	if err != nil {
		log.Fatalf("❌ Failed to load boards config: %v", err)
	}
	log.Printf("🔧 Config loaded. Titles: %v", boards.Titles)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	//shared ledgers and resolver for callback metadata
	ledger := state.NewLedger(cfg.StatePath())
	jobs := store.New(cfg.JobsPath(), store.NewTitleFilter(boards.ExcludedRoles, boards.RequiredLeadership))
	tr := tracker.New(cfg.TrackerPath(), cfg.MaxAge)

	resolve := func(id string) (state.Meta, bool) {
		if entry, ok := tr.Entry(id); ok {
			return state.Meta{Title: entry.Title, Company: entry.Company}, true
		}
		records, _, err := jobs.Load()
		if err != nil {
			return state.Meta{}, false
		}
		for _, rec := range records {
			if rec.ID == id {
				return state.Meta{Title: rec.Title, Company: rec.Company}, true
			}
		}
		return state.Meta{}, false
	}

	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, ledger, resolve)
	if err != nil {
		log.Fatalf("❌ Failed to init Telegram Bot: %v", err)
	}
	log.Println("🤖 Telegram Bot initialized.")

	syncer := gitsync.NewSyncer(cfg.RepoDir, cfg.GitHubBranch, gitsync.DefaultFiles)
	if err := syncer.Configure(ctx); err != nil {
		log.Printf("⚠️ Could not configure git identity: %v", err)
	}

	runPipeline := func() {
		scorer := score.NewEmbeddingScorer(httpclient.New(cfg.HTTPTimeout), cfg.OpenAIKey)
		p := pipeline.New(cfg, boards, scorer, bot, syncer)
		if err := p.Run(ctx); err != nil {
			log.Printf("❌ Pipeline run failed: %v", err)
			if sendErr := bot.SendError(err); sendErr != nil {
				log.Printf("⚠️ Failed to report error to Telegram: %v", sendErr)
			}
		}
	}

	//scheduled batch runs
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.PipelineCron, runPipeline); err != nil {
		log.Fatalf("❌ Invalid PIPELINE_CRON %q: %v", cfg.PipelineCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()
	log.Printf("⏰ Pipeline scheduled: %s", cfg.PipelineCron)

	//push ledger changes made by button presses; fall back to the
	//contents API when this deployment has no git checkout
	var pusher gitsync.Pusher = syncer
	if cfg.GitHubToken != "" && cfg.GitHubOwner != "" && cfg.GitHubRepo != "" {
		client := gitsync.NewContentsClient(cfg.GitHubOwner, cfg.GitHubRepo, cfg.GitHubBranch, cfg.GitHubToken)
		pusher = gitsync.NewContentsPusher(client, gitsync.DefaultFiles)
		log.Println("☁️ Ledger sync via GitHub contents API")
	}
	watcher := gitsync.NewWatcher(pusher, cfg.StatePath(), cfg.SyncInterval)
	go watcher.Run(ctx)

	log.Println("🚀 Bot is up, waiting for commands...")
	bot.Run(ctx, runPipeline)

	log.Println("🏁 Bot stopped.")
}

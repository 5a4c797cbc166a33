package main

import (
	"context"
	"log"
	"time"

	"go-jobsearch-pipeline/internal/config"
	"go-jobsearch-pipeline/internal/gitsync"
	"go-jobsearch-pipeline/internal/httpclient"
	"go-jobsearch-pipeline/internal/pipeline"
	"go-jobsearch-pipeline/internal/score"
	"go-jobsearch-pipeline/internal/state"
	"go-jobsearch-pipeline/internal/telegram"
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
	if cfg.OpenAIKey == "" {
		log.Fatalf("❌ OPENAI_API_KEY is required")
	}

	boards, err := config.LoadBoards(cfg.BoardsPath)
	if err != nil {
		log.Fatalf("❌ Failed to load boards config: %v", err)
	}
	log.Printf("🔧 Config loaded. Titles: %v", boards.Titles)

	//init telegram bot
	ledger := state.NewLedger(cfg.StatePath())
	bot, err := telegram.NewBot(cfg.TelegramToken, cfg.TelegramChatID, ledger, nil)
	if err != nil {
		log.Fatalf("❌ Failed to init Telegram Bot: %v", err)
	}
	log.Println("🤖 Telegram Bot initialized.")

	//single batch run with a hard timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	log.Println("🚀 Starting job search pipeline...")

	scorer := score.NewEmbeddingScorer(httpclient.New(cfg.HTTPTimeout), cfg.OpenAIKey)
	syncer := gitsync.NewSyncer(cfg.RepoDir, cfg.GitHubBranch, gitsync.DefaultFiles)

	p := pipeline.New(cfg, boards, scorer, bot, syncer)
	if err := p.Run(ctx); err != nil {
		if sendErr := bot.SendError(err); sendErr != nil {
			log.Printf("⚠️ Failed to report error to Telegram: %v", sendErr)
		}
		log.Fatalf("❌ Pipeline failed: %v", err)
	}

	log.Println("🏁 Execution finished.")
}

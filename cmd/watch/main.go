package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alfredoptarigan/intelliapply/internal/client"
	"alfredoptarigan/intelliapply/internal/config"
	"alfredoptarigan/intelliapply/internal/history"
	"alfredoptarigan/intelliapply/internal/middleware"
)

var icons = map[client.Level]string{
	client.LevelInfo:    "ℹ️ ",
	client.LevelSuccess: "✅",
	client.LevelWarning: "⚠️ ",
	client.LevelError:   "❌",
}

// Follows a user's job board from the terminal: loads profiles and jobs, then
// prints every notice the change feed produces until interrupted.
func main() {
	baseURL := flag.String("api", "http://localhost:8000", "backend base URL")
	userID := flag.String("user", "", "user id to sign a token for")
	historyPath := flag.String("history", "./history.db", "application history database")
	resync := flag.Duration("resync", 0, "reload the job list on this interval, 0 disables")
	prune := flag.Bool("prune", false, "delete every job not marked as tracked before watching")
	flag.Parse()

	if *userID == "" {
		log.Fatal("❌ -user is required")
	}

	cfg := config.Load()
	token, err := middleware.IssueToken([]byte(cfg.Auth.Secret), *userID, "", 12*time.Hour)
	if err != nil {
		log.Fatalf("❌ Failed to issue token: %v", err)
	}

	store, err := history.Open(*historyPath)
	if err != nil {
		log.Fatalf("❌ Failed to open history: %v", err)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	entries, err := store.Load(ctx)
	if err != nil {
		log.Fatalf("❌ Failed to read history: %v", err)
	}
	log.Printf("📚 %d application(s) in history", len(entries))

	notifier := client.NotifierFunc(func(n client.Notice) {
		log.Printf("%s %s", icons[n.Level], n.Message)
	})
	// the feed is long lived; only the wait for response headers is bounded
	api := client.NewAPI(*baseURL, token, &http.Client{Transport: &http.Transport{
		ResponseHeaderTimeout: 30 * time.Second,
	}})
	session := client.NewSession(api, store, notifier)

	if err := session.Start(ctx); err != nil {
		log.Fatalf("❌ Failed to start session: %v", err)
	}
	defer session.Close()

	if *prune {
		// the editor reports the outcome through the notifier
		_ = session.Editor.DeleteUntracked(ctx)
	}

	log.Printf("👀 Watching %d job(s) across %d profile(s)", len(session.Jobs.Jobs()), len(session.Profiles.List()))
	if *resync > 0 {
		go session.Jobs.ResyncEvery(ctx, *resync)
	}

	<-ctx.Done()
	log.Println("👋 Stopping")
}

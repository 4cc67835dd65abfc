package main

import (
	"bufio"
	"context"
	"crypto/subtle"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/lbianchi/customgpt-go/internal/agent"
	"github.com/lbianchi/customgpt-go/internal/attach"
	"github.com/lbianchi/customgpt-go/internal/config"
	"github.com/lbianchi/customgpt-go/internal/history"
	"github.com/lbianchi/customgpt-go/internal/llm"
	"github.com/lbianchi/customgpt-go/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	if cfg.LLM.APIKey == "" {
		logger.L.Error("no API key configured; set llm.api_key or CUSTOMGPT_LLM_API_KEY")
		os.Exit(1)
	}

	stdin := bufio.NewScanner(os.Stdin)
	stdin.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	if cfg.App.Password != "" && !authenticate(stdin, cfg.App.Password) {
		fmt.Println("incorrect password")
		os.Exit(1)
	}

	store, err := newStore(cfg.History)
	if err != nil {
		logger.L.Error("failed to open history store", "error", err)
		os.Exit(1)
	}

	session, err := agent.New(llm.NewClient(cfg.LLM), store, cfg)
	if err != nil {
		logger.L.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	logger.L.Info("session started", "id", session.ID(), "messages", len(session.History()))

	repl(stdin, session)
}

func authenticate(stdin *bufio.Scanner, password string) bool {
	fmt.Print("Password: ")
	if !stdin.Scan() {
		return false
	}
	entered := stdin.Text()
	return subtle.ConstantTimeCompare([]byte(entered), []byte(password)) == 1
}

func newStore(cfg config.HistoryConfig) (history.Store, error) {
	switch cfg.Backend {
	case "sqlite":
		return history.NewSQLiteStore(cfg.Path)
	default:
		return history.NewFileStore(cfg.Path, cfg.BackupOnClear), nil
	}
}

func repl(stdin *bufio.Scanner, session *agent.Session) {
	var pending []attach.File

	fmt.Println("Type a message, /attach <path>, /clear, or /quit.")
	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			return
		}
		line := strings.TrimSpace(stdin.Text())
		switch {
		case line == "":
			continue
		case line == "/quit", line == "/exit":
			return
		case line == "/clear":
			if err := session.Reset(); err != nil {
				fmt.Println("clear failed:", err)
				continue
			}
			fmt.Println("history cleared")
		case strings.HasPrefix(line, "/attach "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/attach "))
			f, err := readAttachment(path)
			if err != nil {
				fmt.Println("attach failed:", err)
				continue
			}
			pending = append(pending, f)
			fmt.Printf("queued %s (%d bytes)\n", f.Name, len(f.Bytes))
		default:
			reply, err := session.Turn(context.Background(), line, pending)
			pending = nil
			if err != nil {
				fmt.Println("error:", err)
				continue
			}
			fmt.Println(reply)
		}
	}
}

func readAttachment(path string) (attach.File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return attach.File{}, err
	}
	return attach.File{
		Name:      filepath.Base(path),
		MediaType: mime.TypeByExtension(filepath.Ext(path)),
		Bytes:     data,
	}, nil
}

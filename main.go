// ollamakit - streaming tool-calling chat for local models.
//
// Copyright (c) 2025 Jackson Zamorano
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jacksonzamorano/ollamakit/internal/config"
	"github.com/jacksonzamorano/ollamakit/internal/ollama"
	"github.com/jacksonzamorano/ollamakit/internal/session"
	"github.com/jacksonzamorano/ollamakit/internal/tools"
	"github.com/jacksonzamorano/ollamakit/internal/transcript"
	"github.com/jacksonzamorano/ollamakit/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version = "0.1.0"
)

func main() {
	hostFlag := flag.String("host", "", "chat service address (host:port or URL)")
	modelFlag := flag.String("model", "", "model name")
	configFlag := flag.String("config", "", "path to config.toml")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println("ollamakit", Version)
		return
	}

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ollamakit:", err)
		os.Exit(1)
	}
	if *hostFlag != "" {
		cfg.Host = *hostFlag
	}
	if *modelFlag != "" {
		cfg.Model = *modelFlag
	}

	client := ollama.NewClient(&ollama.Config{
		Host:           cfg.Host,
		ConnectTimeout: cfg.ConnectTimeout(),
		RequestTimeout: cfg.RequestTimeout(),
	})

	if flag.Arg(0) == "models" {
		if err := printToolModels(client); err != nil {
			fmt.Fprintln(os.Stderr, "ollamakit:", err)
			os.Exit(1)
		}
		return
	}

	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "ollamakit: the chat interface requires a terminal")
		os.Exit(1)
	}

	if err := runTUI(client, cfg, *configFlag); err != nil {
		fmt.Fprintln(os.Stderr, "ollamakit:", err)
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFromPath(path)
	}
	return config.Load()
}

// printToolModels lists the models on the server that advertise tool
// calling.
func printToolModels(client *ollama.Client) error {
	ctx := context.Background()
	if err := client.CheckRunning(ctx); err != nil {
		return err
	}
	models, err := client.ToolModels(ctx)
	if err != nil {
		return err
	}
	if len(models) == 0 {
		fmt.Println("No tool-capable models found.")
		return nil
	}
	for _, m := range models {
		fmt.Printf("%-40s %s\n", m.Name, m.FormatSize())
	}
	return nil
}

func runTUI(client *ollama.Client, cfg *config.Config, configPath string) error {
	model := cfg.Model
	if model == "" {
		// Pick the first tool-capable model when none is configured.
		ctx := context.Background()
		candidates, err := client.ToolModels(ctx)
		if err != nil {
			return err
		}
		if len(candidates) == 0 {
			return fmt.Errorf("no model configured and no tool-capable model found")
		}
		model = candidates[0].Name
	}

	renderer := transcript.NewRenderer(cfg.UI.WordWrap)
	sess := session.New(client, renderer)
	sess.SetModel(model)
	if cfg.SystemPrompt != "" {
		sess.SetSystemPrompt(cfg.SystemPrompt)
	}
	sess.RegisterTool(tools.CurrentTime())
	sess.RegisterTool(tools.ReadFile())

	p := tea.NewProgram(
		chat.New(sess, cfg),
		tea.WithAltScreen(),
	)
	sess.SetOnChange(func() {
		p.Send(chat.SessionChangedMsg{})
	})

	if watcher := watchConfig(client, configPath, p); watcher != nil {
		defer watcher.Close()
	}

	_, err := p.Run()
	return err
}

// watchConfig applies config file edits between queries: the host takes
// effect on the client immediately, the model change is forwarded to the
// view. Watch setup failure is non-fatal.
func watchConfig(client *ollama.Client, configPath string, p *tea.Program) *config.Watcher {
	path := configPath
	if path == "" {
		var err error
		path, err = config.Path()
		if err != nil {
			return nil
		}
	}
	w, err := config.NewWatcher(path, func(cfg *config.Config) {
		client.SetHost(cfg.Host)
		p.Send(chat.ConfigReloadedMsg{Model: cfg.Model})
	})
	if err != nil {
		return nil
	}
	return w
}

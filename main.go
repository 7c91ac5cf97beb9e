package main

import (
	"flag"
	"fmt"
	"os"

	"jsh/internal/config"
	"jsh/internal/job"
	"jsh/internal/launch"
	"jsh/internal/logging"
	"jsh/internal/readline"
	"jsh/internal/shell"
	"jsh/internal/signalcenter"
	"jsh/internal/terminal"
)

func main() {
	// A stand-in child re-execs this same binary with
	// launch.MissingProgramFlag as its first argument; handle that
	// before anything else starts up (no terminal claim, no config
	// load — just report and exit 127).
	if len(os.Args) >= 3 && os.Args[1] == launch.MissingProgramFlag {
		launch.ReportMissingProgram(os.Args[2])
	}

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.Defaults()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "jsh: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	if err := logging.Init(cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "jsh: %v\n", err)
		os.Exit(1)
	}
	defer logging.Sync()

	shellPgid, err := terminal.ClaimShellProcessGroup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsh: claiming process group: %v\n", err)
		os.Exit(1)
	}
	if err := terminal.SetForeground(shellPgid); err != nil {
		fmt.Fprintf(os.Stderr, "jsh: claiming terminal: %v\n", err)
		os.Exit(1)
	}

	table := job.NewTable()

	center := signalcenter.New(table, shellPgid)
	center.Install()
	defer center.Stop()

	line, err := readline.Open(cfg.Prompt, cfg.HistoryFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jsh: %v\n", err)
		os.Exit(1)
	}
	defer line.Close()

	shell.New(table, line, logging.L()).Run()
}

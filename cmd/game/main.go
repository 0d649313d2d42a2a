package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/tomz197/sshooter/internal/config"
	"github.com/tomz197/sshooter/internal/loop/client"
	"github.com/tomz197/sshooter/internal/loop/server"
	"github.com/tomz197/sshooter/internal/quality"
)

func main() {
	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	tuning := config.DefaultTuning()
	if path := os.Getenv("TUNING_FILE"); path != "" {
		tuning, err = config.LoadTuning(path)
		if err != nil {
			_ = term.Restore(fd, oldState)
			fmt.Fprintf(os.Stderr, "tuning error: %v\n", err)
			os.Exit(1)
		}
	}

	hub := server.NewHub()
	reader := bufio.NewReader(os.Stdin)
	c := client.NewClient(hub, reader, os.Stdout, client.ClientOptions{
		Username:     config.GetEnv("USER", "player"),
		Capabilities: quality.Detect(os.Getenv("TERM"), false),
		Tuning:       tuning,
	})
	if err := c.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "game error: %v\n", err)
		os.Exit(1)
	}
}

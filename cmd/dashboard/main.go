// ====================================
// File: cmd/dashboard/main.go
// ====================================
package main

import (
	"flag"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rovshanmuradov/genesis-launchpad/internal/ui"
)

func main() {
	apiURL := flag.String("api", "http://localhost:8080", "Base URL of a launchpad node")
	interval := flag.Duration("interval", 5*time.Second, "Refresh interval")
	flag.Parse()

	client := ui.NewClient(*apiURL, 10*time.Second)
	program := tea.NewProgram(ui.New(client, *interval), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		log.Fatalf("Dashboard failed: %v", err)
	}
}

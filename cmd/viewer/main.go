package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/olekukonko/tablewriter"
)

// Read-only terminal viewer: connects to a running pad server, never claims a
// name, and renders every roster/attribution broadcast it receives.
func main() {
	addr := flag.String("addr", "localhost:8080", "pad server host:port")
	colours := flag.Bool("colours", true, "colorize identities with their pad color")
	flag.Parse()

	u := url.URL{Scheme: "ws", Host: *addr, Path: "/ws"}
	conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Failed to connect to %s: %v", u.String(), err)
	}
	defer conn.Close()

	fmt.Printf("Watching pad at %s (ctrl-c to quit)\n", u.String())

	var content string
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Connection lost: %v", err)
		}

		var msg serverMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		switch msg.Type {
		case "documentUpdate":
			content = msg.Content
			fmt.Printf("\n--- document (%d lines) ---\n%s\n", lineCount(content), content)
		case "userListUpdate":
			renderUsers(msg.Users, *colours)
		case "lineAttributionUpdate":
			renderAttribution(msg.LineEdits, *colours)
		}
	}
}

type serverMessage struct {
	Type      string              `json:"type"`
	Content   string              `json:"content"`
	Users     []userEntry         `json:"users"`
	LineEdits map[string]lineEdit `json:"lineEdits"`
}

type userEntry struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

type lineEdit struct {
	UserID string `json:"userId"`
	Color  string `json:"color"`
}

func renderUsers(users []userEntry, colours bool) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Identity", "Color"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, u := range users {
		table.Append([]string{render(u.ID, u.Color, colours), u.Color})
	}
	fmt.Printf("\n--- roster (%d) ---\n", len(users))
	table.Render()
}

func renderAttribution(lineEdits map[string]lineEdit, colours bool) {
	// JSON object keys arrive as strings, sort them numerically for display
	lines := make([]int, 0, len(lineEdits))
	byLine := make(map[int]lineEdit, len(lineEdits))
	for key, entry := range lineEdits {
		line, err := strconv.Atoi(key)
		if err != nil {
			continue
		}
		lines = append(lines, line)
		byLine[line] = entry
	}
	sort.Ints(lines)

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"Line", "Last Editor"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, line := range lines {
		entry := byLine[line]
		table.Append([]string{strconv.Itoa(line), render(entry.UserID, entry.Color, colours)})
	}
	fmt.Printf("\n--- attribution (%d lines) ---\n", len(lines))
	table.Render()
}

func render(identity, hex string, colours bool) string {
	if !colours || hex == "" {
		return identity
	}
	return color.HEX(hex).Sprint(identity)
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	return len(strings.Split(content, "\n"))
}

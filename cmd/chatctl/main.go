// Command chatctl prints the participants currently connected to a relay.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Tyrowin/relaychat/internal/chat"
	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

func main() {
	addr := flag.String("addr", "http://localhost:5001", "relay base URL")
	timeout := flag.Duration("timeout", 5*time.Second, "request timeout")
	flag.Parse()

	if err := run(*addr, *timeout, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, color.Red.Sprintf("chatctl: %v", err))
		os.Exit(1)
	}
}

func run(addr string, timeout time.Duration, out io.Writer) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	participants, err := fetchParticipants(ctx, addr)
	if err != nil {
		return err
	}
	render(out, participants)
	return nil
}

func fetchParticipants(ctx context.Context, addr string) ([]chat.Participant, error) {
	url := strings.TrimRight(addr, "/") + "/api/admin/users"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	var participants []chat.Participant
	if err := json.NewDecoder(resp.Body).Decode(&participants); err != nil {
		return nil, fmt.Errorf("decode participants: %w", err)
	}
	return participants, nil
}

func render(out io.Writer, participants []chat.Participant) {
	if len(participants) == 0 {
		fmt.Fprintln(out, color.Yellow.Render("No participants online"))
		return
	}

	table := tablewriter.NewWriter(out)
	table.SetHeader([]string{"ID", "Username", "IP", "User Agent", "Joined"})
	table.SetAutoWrapText(false)
	table.AppendBulk(lo.Map(participants, func(p chat.Participant, _ int) []string {
		return []string{
			p.ID,
			p.DisplayName,
			p.SourceAddress,
			p.ClientAgent,
			p.JoinedAt.Local().Format(time.DateTime),
		}
	}))
	table.Render()

	fmt.Fprintln(out, color.Green.Sprintf("%d participant(s) online", len(participants)))
}

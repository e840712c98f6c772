// chatcli is a terminal chat client for manual testing against a running API
// server. It drives the same reconciliation layer a UI would: guest history
// mirrored to disk, server-backed history after /login.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joshfermano/perpsbot/server/pkg/client"
)

func main() {
	log.SetFlags(0)

	baseURL := flag.String("url", "http://localhost:5000", "API base URL")
	stateDir := flag.String("state", ".chatcli", "directory for guest history")
	flag.Parse()

	local, err := client.NewFileStore(*stateDir)
	if err != nil {
		log.Fatalf("failed to open state directory: %v", err)
	}

	c, err := client.New(*baseURL, local)
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	ctx := context.Background()
	if err := c.Restore(ctx); err == nil {
		if u, ok := c.User(); ok {
			fmt.Printf("restored session for %s\n", u.Username)
		}
	}

	printTranscript(c)
	fmt.Println(`commands: /register <user> <email> <pass>, /login <email> <pass>, /logout, /list, /new, /open <id>, /delete <id>, /clear, /quit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if quit := runCommand(ctx, c, line); quit {
				return
			}
			continue
		}

		c.Send(ctx, line)
		messages := c.Messages()
		fmt.Printf("perps: %s\n", messages[len(messages)-1].Content)
	}
}

func runCommand(ctx context.Context, c *client.Client, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "/quit":
		return true
	case "/register":
		if len(fields) != 4 {
			fmt.Println("usage: /register <username> <email> <password>")
			return false
		}
		report(c.Register(ctx, fields[1], fields[2], fields[3]))
	case "/login":
		if len(fields) != 3 {
			fmt.Println("usage: /login <email> <password>")
			return false
		}
		report(c.Login(ctx, fields[1], fields[2]))
	case "/logout":
		report(c.Logout(ctx))
	case "/list":
		summaries, err := c.Conversations(ctx)
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return false
		}
		for _, s := range summaries {
			fmt.Printf("%s  %s  (%s)\n", s.ID, s.Title, s.Timestamp.Local().Format("Jan 2 15:04"))
		}
	case "/new":
		summary, err := c.NewConversation(ctx, "")
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return false
		}
		fmt.Printf("created %s\n", summary.ID)
	case "/open":
		if len(fields) != 2 {
			fmt.Println("usage: /open <id>")
			return false
		}
		if err := c.OpenConversation(ctx, fields[1]); err != nil {
			fmt.Printf("error: %v\n", err)
			return false
		}
		printTranscript(c)
	case "/delete":
		if len(fields) != 2 {
			fmt.Println("usage: /delete <id>")
			return false
		}
		report(c.DeleteConversation(ctx, fields[1]))
	case "/clear":
		report(c.ClearConversation())
	default:
		fmt.Printf("unknown command %s\n", fields[0])
	}
	return false
}

func report(err error) {
	if err != nil {
		fmt.Printf("error: %v\n", err)
		return
	}
	fmt.Println("ok")
}

func printTranscript(c *client.Client) {
	for _, msg := range c.Messages() {
		fmt.Printf("%s: %s\n", msg.Role, msg.Content)
	}
}

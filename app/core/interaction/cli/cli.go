package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"helios/app/pkg/types"
)

type CLIChannel struct {
	id        string
	userID    string
	agentName string
	sessionID string
}

func NewCLIChannel(userID, agentName string) *CLIChannel {
	if strings.TrimSpace(userID) == "" {
		userID = "local_user"
	}
	if strings.TrimSpace(agentName) == "" {
		agentName = "Helios"
	}
	return &CLIChannel{
		id:        "cli",
		userID:    userID,
		agentName: agentName,
		sessionID: fmt.Sprintf("cli-%d", time.Now().Unix()),
	}
}

func (c *CLIChannel) ID() string {
	return c.id
}

func (c *CLIChannel) Start(ctx context.Context, handler func(types.Message)) error {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf(">> %s CLI started. Type /help for commands, 'exit' to quit.\n", c.agentName)

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			fmt.Print("> ")
			if !scanner.Scan() {
				return nil
			}
			text := strings.TrimSpace(scanner.Text())
			if text == "exit" || text == "quit" {
				fmt.Println("Bye!")
				return nil
			}

			handler(types.Message{
				ID:        fmt.Sprintf("cli-%d", time.Now().UnixNano()),
				Content:   text,
				Role:      "user",
				ChannelID: c.id,
				UserID:    c.userID,
				SessionID: c.sessionID,
			})
		}
	}
}

func (c *CLIChannel) Send(ctx context.Context, msg types.Message) error {
	if strings.TrimSpace(msg.Content) == "" {
		return nil
	}
	fmt.Printf("[%s]: %s\n", c.agentName, msg.Content)
	return nil
}

package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"biz-assistant-be/internal/dto"

	"github.com/fatih/color"
	"github.com/google/uuid"
)

// simulate drives the webhook endpoint from a terminal: type messages, see
// routed replies. Useful for poking at the FSM and clarification flows
// without a messaging gateway.
func main() {
	baseURL := flag.String("url", "http://localhost:3000", "server base URL")
	token := flag.String("token", "", "gateway token (X-Gateway-Token)")
	userFlag := flag.String("user", "", "user id (random when empty)")
	flag.Parse()

	userID := uuid.New()
	if *userFlag != "" {
		parsed, err := uuid.Parse(*userFlag)
		if err != nil {
			log.Fatalf("invalid user id: %v", err)
		}
		userID = parsed
	}

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	cyan.Printf("Simulating user %s against %s\n", userID, *baseURL)
	cyan.Println("Type a message and press enter. Ctrl+D to quit.")

	client := &http.Client{Timeout: 60 * time.Second}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		res, err := sendMessage(client, *baseURL, *token, userID, text)
		if err != nil {
			red.Printf("error: %v\n", err)
			continue
		}

		if res.Clarification {
			yellow.Printf("[clarify] %s\n", res.Reply)
		} else {
			green.Printf("[%s/%s] %s\n", res.Intent, res.State, res.Reply)
		}
		if res.Duplicate {
			yellow.Println("(duplicate delivery, cached reply)")
		}
	}
}

type envelope struct {
	Success bool                        `json:"success"`
	Message string                      `json:"message"`
	Data    *dto.WebhookMessageResponse `json:"data"`
}

func sendMessage(client *http.Client, baseURL, token string, userID uuid.UUID, text string) (*dto.WebhookMessageResponse, error) {
	payload, err := json.Marshal(dto.WebhookMessageRequest{
		UserId:    userID,
		MessageId: uuid.NewString(),
		Text:      text,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest("POST", baseURL+"/api/webhook/v1/message", bytes.NewBuffer(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Gateway-Token", token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		return nil, fmt.Errorf("empty response body")
	}
	return env.Data, nil
}

// Command tester is a terminal chat client used for manual smoke testing.
// It signs its own token with the shared secret, joins one project channel
// and prints everything the channel delivers.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"

	"collabhub/auth"
	"collabhub/transport/ws"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL     string        `env:"HUB_SERVER_URL,default=ws://localhost:8080/ws"`
	ProjectID     string        `env:"HUB_PROJECT_ID,default=demo"`
	UserID        string        `env:"HUB_USER_ID,default=tester"`
	JWTSecret     string        `env:"JWT_SECRET,required=true"`
	TokenDuration time.Duration `env:"AUTH_TOKEN_DURATION,default=1h"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, err
	}

	token, err := signToken(config)
	if err != nil {
		return exitConfig, err
	}

	url := fmt.Sprintf("%s?projectId=%s", config.ServerURL, config.ProjectID)
	header := http.Header{"Authorization": []string{"Bearer " + token}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		return exitRuntime, fmt.Errorf("dial %s: %w", url, err)
	}
	defer conn.Close()

	color.Greenln("Connected to", config.ProjectID, "as", config.UserID)
	color.Grayln("Type a message and press enter. Prefix with @ai to ask the assistant. Ctrl+C quits.")

	done := make(chan struct{})
	go func() {
		defer close(done)
		receive(conn)
	}()

	go send(conn, config)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	select {
	case <-sig:
	case <-done:
	}
	return exitOK, nil
}

func receive(conn *websocket.Conn) {
	for {
		var frame ws.OutboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			color.Redln("Connection closed:", err)
			return
		}
		switch frame.Type {
		case ws.FrameProjectMessage:
			color.New(color.FgGreen, color.OpBold).Printf("%s: ", frame.Sender)
			fmt.Println(frame.Message)
		case ws.FrameSystemNotice:
			color.Grayln("--", frame.Message)
		case ws.FrameErrorNotice:
			color.Redln("!!", frame.Code, frame.Message)
		}
	}
}

func send(conn *websocket.Conn, config Config) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		body := scanner.Text()
		if body == "" {
			continue
		}
		frame := ws.InboundFrame{
			Type:    ws.FrameProjectMessage,
			Message: body,
			Sender:  config.UserID,
		}
		payload, err := json.Marshal(frame)
		if err != nil {
			color.Redln("Marshal failed:", err)
			continue
		}
		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			color.Redln("Send failed:", err)
			return
		}
	}
}

func signToken(config Config) (string, error) {
	return auth.NewTokenManager(config.JWTSecret, config.TokenDuration).Generate(config.UserID)
}

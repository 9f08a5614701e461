// Manual test client for the playback WebSocket. Speaks a short
// dialogue, changes the rate mid-speech, and logs every event and
// audio frame the server sends back.
package main

import (
	"encoding/json"
	"log"
	"net/url"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	host := os.Getenv("SERVER_ADDR")
	if host == "" {
		host = "localhost:8080"
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	u := url.URL{Scheme: "ws", Host: host, Path: "/ws"}
	log.Printf("connecting to %s", u.String())

	c, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatal("dial:", err)
	}
	defer c.Close()

	done := make(chan struct{})
	go handleIncomingMessages(c, done)

	speak := map[string]interface{}{
		"type":     "speak_start",
		"dialogue": true,
		"rate":     1.0,
		"text": "M: Good morning! Did you finish the report?\n" +
			"W: Almost. I still need to check the numbers from last quarter.\n" +
			"M: Let me know if you want a second pair of eyes.",
	}
	if err := writeJSON(c, speak); err != nil {
		log.Fatal("speak_start:", err)
	}

	// Change the rate mid-playback to exercise cancel-and-restart.
	time.AfterFunc(3*time.Second, func() {
		if err := writeJSON(c, map[string]interface{}{"type": "set_rate", "rate": 1.5}); err != nil {
			log.Println("set_rate:", err)
		}
	})

	select {
	case <-done:
		return
	case <-interrupt:
		log.Println("interrupt")
		err := c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		if err != nil {
			log.Println("write close:", err)
			return
		}
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func writeJSON(c *websocket.Conn, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.WriteMessage(websocket.TextMessage, payload)
}

func handleIncomingMessages(c *websocket.Conn, done chan struct{}) {
	defer close(done)
	audioBytes := 0

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Println("read:", err)
			return
		}

		switch messageType {
		case websocket.BinaryMessage:
			audioBytes += len(message)
		case websocket.TextMessage:
			var event struct {
				Type  string `json:"type"`
				Event string `json:"event"`
				Index int    `json:"index"`
				Total int    `json:"total"`
			}
			if err := json.Unmarshal(message, &event); err != nil {
				log.Println("unmarshal:", err)
				continue
			}
			log.Printf("event=%s/%s index=%d/%d audioBytes=%d",
				event.Type, event.Event, event.Index, event.Total, audioBytes)

			if event.Event == "speak_ended" || event.Event == "speak_error" {
				return
			}
		}
	}
}

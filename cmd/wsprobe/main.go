// Command wsprobe drives one capture cycle against a running server over the
// WebSocket protocol, the way the page does.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

type message struct {
	Type        string  `json:"type"`
	Status      string  `json:"status"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	ErrorCode   string  `json:"error_code"`
	Message     string  `json:"message"`
	UtteranceID string  `json:"utterance_id"`
	Completed   bool    `json:"completed"`
	AudioOn     bool    `json:"audio_enabled"`
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "WebSocket endpoint")
	imagePath := flag.String("image", "", "image pushed as the camera frame")
	audioPath := flag.String("audio", "", "write received narration audio to this file")
	timeout := flag.Duration("timeout", 90*time.Second, "give up after this long")
	flag.Parse()

	if *imagePath == "" {
		log.Fatal("-image is required")
	}
	frame, err := os.ReadFile(*imagePath)
	if err != nil {
		log.Fatalf("Failed to read image: %v", err)
	}

	fmt.Printf("Connecting to: %s\n", *serverURL)
	conn, resp, err := websocket.DefaultDialer.Dial(*serverURL, nil)
	if err != nil {
		if resp != nil {
			log.Fatalf("WebSocket connection failed with status %d: %v", resp.StatusCode, err)
		}
		log.Fatalf("WebSocket connection failed: %v", err)
	}
	defer conn.Close()
	fmt.Println("✓ WebSocket connection successful")

	deadline := time.Now().Add(*timeout)
	var audio []byte
	audioOn := true

	send := func(v map[string]any) {
		if err := conn.WriteJSON(v); err != nil {
			log.Fatalf("Failed to send %v: %v", v["type"], err)
		}
	}

	send(map[string]any{"type": "start_camera"})

	for {
		conn.SetReadDeadline(deadline)
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			log.Fatalf("Failed to read: %v", err)
		}

		if messageType == websocket.BinaryMessage {
			audio = append(audio, data...)
			continue
		}

		var msg message
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Fatalf("Invalid message %s: %v", string(data), err)
		}

		switch msg.Type {
		case "session_state":
			fmt.Printf("• state: %s\n", msg.Status)
			audioOn = msg.AudioOn
			switch msg.Status {
			case "camera_active":
				if err := conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
					log.Fatalf("Failed to push frame: %v", err)
				}
				send(map[string]any{"type": "capture"})
			case "described":
				fmt.Printf("✓ Description: %s\n", msg.Description)
				if msg.Confidence > 0 {
					fmt.Printf("  confidence: %.0f%%\n", msg.Confidence)
				}
				if !audioOn || msg.Confidence == 0 {
					return
				}
			case "failed":
				fmt.Printf("✗ %s\n", msg.Description)
				os.Exit(1)
			}

		case "speaking_start":
			fmt.Printf("• speaking %s\n", msg.UtteranceID)

		case "speaking_end":
			fmt.Printf("✓ Narration finished (completed=%v, %d bytes)\n", msg.Completed, len(audio))
			if *audioPath != "" {
				if err := os.WriteFile(*audioPath, audio, 0o644); err != nil {
					log.Fatalf("Failed to write audio: %v", err)
				}
			}
			return

		case "error":
			fmt.Printf("✗ %s: %s\n", msg.ErrorCode, msg.Message)
			os.Exit(1)
		}
	}
}

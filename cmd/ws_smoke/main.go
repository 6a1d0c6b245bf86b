package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"task_manager/internal/domain"
	"task_manager/internal/logger"
	"task_manager/internal/service"
	"task_manager/internal/ws"

	"github.com/gorilla/websocket"
)

func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := fmt.Sprintf("127.0.0.1:%s", port)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+base+"/ws", nil)
	if err != nil {
		logger.Fatal("dial feed", "error", err)
	}
	defer conn.Close()

	// a timed out read leaves the connection unusable, so one deadline covers
	// the whole wait
	waitFor := func(want string, timeout time.Duration) *domain.TaskEvent {
		conn.SetReadDeadline(time.Now().Add(timeout))
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				logger.Warn("feed read", "error", err)
				return nil
			}
			var msg domain.TaskEvent
			if err := json.Unmarshal(raw, &msg); err == nil && msg.Type == want {
				return &msg
			}
		}
	}

	if waitFor(ws.MsgReady, 2*time.Second) == nil {
		logger.Fatal("feed did not send ready")
	}

	name := fmt.Sprintf("smoke %d", time.Now().Unix())
	req, err := http.NewRequest(http.MethodPost, "http://"+base+"/tasks/", strings.NewReader(fmt.Sprintf(`{"name":%q}`, name)))
	if err != nil {
		logger.Fatal("build request", "error", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		token, err := service.NewTokenManager(secret, time.Minute).Generate("ws_smoke")
		if err != nil {
			logger.Fatal("generate token", "error", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Fatal("create task", "error", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		logger.Fatal("create task", "status", resp.StatusCode)
	}

	msg := waitFor(domain.TaskEventCreated, 3*time.Second)
	if msg == nil || msg.Task == nil || msg.Task.Name != name {
		logger.Fatal("no task.created event for the new task")
	}
	logger.Info("smoke ok", "task_id", msg.Task.ID)
}

package tests

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
)

// merchantServer is a fake merchant notification receiver.
type merchantServer struct {
	mu            sync.Mutex
	notifications []map[string]any
	server        *httptest.Server
}

func newMerchantServer(t *testing.T) *merchantServer {
	t.Helper()
	m := &merchantServer{}
	m.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)

		m.mu.Lock()
		m.notifications = append(m.notifications, body)
		m.mu.Unlock()

		_, _ = w.Write([]byte("OK"))
	}))
	t.Cleanup(m.server.Close)
	return m
}

func (m *merchantServer) notificationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.notifications)
}

func (m *merchantServer) lastNotification() map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.notifications) == 0 {
		return nil
	}
	return m.notifications[len(m.notifications)-1]
}

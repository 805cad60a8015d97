package websocket

import (
	"encoding/json"
	"time"

	"github.com/monizb/vmp/logging"
)

// VulnUpdate represents a real-time vulnerability event pushed to
// connected dashboards.
type VulnUpdate struct {
	Type      string      `json:"type"` // VULN_CREATED, VULN_UPDATED, VULN_DELETED
	VulnID    string      `json:"vulnId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	UserID    string      `json:"userId,omitempty"`
}

// BroadcastVulnUpdate sends an update to all connected clients. Slow
// clients are dropped rather than blocking the broadcaster.
func BroadcastVulnUpdate(update VulnUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		logging.Logger.Errorf("failed to marshal vuln update: %v", err)
		return
	}

	hub.mutex.Lock()
	defer hub.mutex.Unlock()

	for c := range hub.clients {
		select {
		case c.send <- data:
		default:
			close(c.send)
			delete(hub.clients, c)
		}
	}
}

// SendVulnCreated broadcasts a new finding.
func SendVulnCreated(vuln interface{}, userID string) {
	BroadcastVulnUpdate(VulnUpdate{
		Type:      "VULN_CREATED",
		Data:      vuln,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
	})
}

// SendVulnUpdated broadcasts changes to a finding.
func SendVulnUpdated(vulnID string, changes interface{}, userID string) {
	BroadcastVulnUpdate(VulnUpdate{
		Type:      "VULN_UPDATED",
		VulnID:    vulnID,
		Data:      changes,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
	})
}

// SendVulnDeleted broadcasts a removal.
func SendVulnDeleted(vulnID string, userID string) {
	BroadcastVulnUpdate(VulnUpdate{
		Type:      "VULN_DELETED",
		VulnID:    vulnID,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
	})
}

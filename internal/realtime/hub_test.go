package realtime

import (
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func testHub() *Hub {
	return NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// testClient builds a registered client without a real websocket
// connection; deliveries land in its send channel.
func testClient(h *Hub, userID, orgID string) *Client {
	client := &Client{
		hub:    h,
		send:   make(chan []byte, sendBufferSize),
		userID: userID,
		orgID:  orgID,
	}
	h.register(client)
	return client
}

func receivedEvent(t *testing.T, c *Client) *Envelope {
	t.Helper()

	select {
	case data := <-c.send:
		var envelope Envelope
		require.NoError(t, json.Unmarshal(data, &envelope))
		return &envelope
	default:
		t.Fatal("expected a delivery, send buffer is empty")
		return nil
	}
}

func TestSendToUser_DeliversToEveryConnection(t *testing.T) {
	hub := testHub()

	// Same user, two tabs.
	first := testClient(hub, "user-1", "")
	second := testClient(hub, "user-1", "")
	other := testClient(hub, "user-2", "")

	hub.SendToUser("user-1", EventNewNotification, map[string]string{"id": "n-1"})

	for _, c := range []*Client{first, second} {
		envelope := receivedEvent(t, c)
		require.Equal(t, EventNewNotification, envelope.Event)
		require.False(t, envelope.Timestamp.IsZero())
	}

	require.Empty(t, other.send)
}

func TestSendToUser_NoConnections(t *testing.T) {
	hub := testHub()

	// Nobody is listening; must not panic or block.
	hub.SendToUser("ghost", EventNewNotification, nil)
}

func TestSendToOrg_DeliversToMembersOnly(t *testing.T) {
	hub := testHub()

	member := testClient(hub, "user-1", "org-1")
	outsider := testClient(hub, "user-2", "org-2")

	hub.SendToOrg("org-1", EventTaskCreated, map[string]string{"id": "t-1"})

	envelope := receivedEvent(t, member)
	require.Equal(t, EventTaskCreated, envelope.Event)

	require.Empty(t, outsider.send)
}

func TestSendToOrg_EmptyOrgIsNoOp(t *testing.T) {
	hub := testHub()

	// A client with no organization must never be reachable through an
	// empty org id.
	solo := testClient(hub, "user-1", "")

	hub.SendToOrg("", EventTaskCreated, nil)

	require.Empty(t, solo.send)
}

func TestUnregister_StopsDelivery(t *testing.T) {
	hub := testHub()

	client := testClient(hub, "user-1", "org-1")
	hub.unregister(client)

	hub.SendToUser("user-1", EventNewNotification, nil)
	hub.SendToOrg("org-1", EventTaskCreated, nil)

	require.Empty(t, client.send)
}

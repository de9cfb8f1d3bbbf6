package main

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aldelar/ptu-ri-alert/ptu"
	"github.com/aldelar/ptu-ri-alert/ptu/client"
)

func endpoint(t *testing.T) string {
	ep := os.Getenv("TEST_ENDPOINT")
	if ep == "" {
		t.Skip("env variable TEST_ENDPOINT was empty")
	}

	return ep
}

//TestUserStory_1 sends a deployment write to a deployed handler, the handler
//should always acknowledge it regardless of what the capacity check finds
func TestUserStory_1(t *testing.T) {
	c, err := client.NewClient(endpoint(t))
	require.NoError(t, err)

	st, err := c.InvokeEvent(context.Background(), EventFunction, "event", &ptu.Event{
		ID:      "story-1",
		Type:    "Microsoft.Resources.ResourceWriteSuccess",
		Subject: "/subscriptions/00000000-0000-0000-0000-000000000000/resourceGroups/story/providers/Microsoft.CognitiveServices/accounts/story/deployments/story",
		Data:    json.RawMessage(`{"operationName": "Microsoft.CognitiveServices/accounts/deployments/write", "status": "Succeeded"}`),
	})
	require.NoError(t, err)
	assert.Equal(t, ptu.StatusSuccess, st.Status)
	assert.Equal(t, "story-1", st.EventID)
}

package ingest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMessagesFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "messages.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMessages(t *testing.T) {
	path := writeMessagesFile(t, `[
		{
			"id": "msg-1",
			"subject": "Transaction Alert",
			"sender": "alerts@bankmuscat.com",
			"date": "2025-07-14T11:01:00Z",
			"body": "Dear Customer"
		},
		{
			"id": "msg-2",
			"subject": "Transaction Alert",
			"sender": "alerts@bankmuscat.com",
			"date": "Mon, 14 Jul 2025 11:01:00 +0400",
			"body": "Dear Customer"
		},
		{
			"id": "msg-3",
			"subject": "Transaction Alert",
			"sender": "alerts@bankmuscat.com",
			"date": "not a date",
			"body": "Dear Customer"
		},
		{
			"id": "msg-4",
			"subject": "Transaction Alert",
			"sender": "alerts@bankmuscat.com",
			"body": "Dear Customer"
		}
	]`)

	messages, err := LoadMessages(path)
	require.NoError(t, err)
	require.Len(t, messages, 4)

	assert.Equal(t, "msg-1", messages[0].ID)
	assert.Equal(t, time.Date(2025, 7, 14, 11, 1, 0, 0, time.UTC), messages[0].Date)

	want := time.Date(2025, 7, 14, 11, 1, 0, 0, time.FixedZone("", 4*3600))
	assert.True(t, messages[1].Date.Equal(want))

	// Unparseable or absent dates stay zero; body dates take over later.
	assert.True(t, messages[2].Date.IsZero())
	assert.True(t, messages[3].Date.IsZero())
}

func TestLoadMessages_Errors(t *testing.T) {
	_, err := LoadMessages(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	path := writeMessagesFile(t, `{"not": "an array"}`)
	_, err = LoadMessages(path)
	assert.Error(t, err)
}

func TestLoadMessages_Empty(t *testing.T) {
	path := writeMessagesFile(t, `[]`)
	messages, err := LoadMessages(path)
	require.NoError(t, err)
	assert.Empty(t, messages)
}

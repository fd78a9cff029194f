package repositories

import (
	"log/slog"
	"sort"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"collabhub/domain"
)

func newTestBadger(t *testing.T) *badger.DB {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func Test_Store_And_Get_Sorted_Messages(t *testing.T) {
	req := require.New(t)
	db := newTestBadger(t)

	repository := NewMessageRepository(db, slog.Default(), nil)
	project := "alpha"
	at := time.Now().UTC()
	diskMessages := []DiskMessage{
		{ID: uuid.New(), Project: project, Sender: "alice", Body: "first", At: at},
		{ID: uuid.New(), Project: project, Sender: "bob", Body: "second", At: at.Add(1 * time.Minute)},
		{ID: uuid.New(), Project: project, Sender: "clara", Body: "third", At: at.Add(2 * time.Minute)},
	}

	sortedDiskMessages := make([]DiskMessage, len(diskMessages))
	copy(sortedDiskMessages, diskMessages)
	sort.Slice(sortedDiskMessages, func(i, j int) bool {
		return sortedDiskMessages[i].At.After(sortedDiskMessages[j].At)
	})
	for _, dm := range diskMessages {
		req.NoError(repository.StoreMessage(dm))
	}

	// When fetching messages
	fetchedMessages, _, err := repository.GetMessages(domain.ProjectID(project), nil)
	req.NoError(err)

	// Then the messages are sorted newest first
	req.Len(fetchedMessages, len(sortedDiskMessages))
	req.Equal(sortedDiskMessages, fetchedMessages)
}

func Test_Get_Messages_Respects_Limit_And_Cursor(t *testing.T) {
	req := require.New(t)
	db := newTestBadger(t)

	limit := 2
	repository := NewMessageRepository(db, slog.Default(), &limit)
	project := "alpha"
	at := time.Now().UTC()
	for i := 0; i < 5; i++ {
		req.NoError(repository.StoreMessage(DiskMessage{
			ID:      uuid.New(),
			Project: project,
			Sender:  "alice",
			Body:    "message",
			At:      at.Add(time.Duration(i) * time.Minute),
		}))
	}

	// First page holds the two newest messages
	page1, cursor, err := repository.GetMessages(domain.ProjectID(project), nil)
	req.NoError(err)
	req.Len(page1, limit)
	req.NotNil(cursor)

	// Second page resumes just after the cursor
	page2, _, err := repository.GetMessages(domain.ProjectID(project), cursor)
	req.NoError(err)
	req.Len(page2, limit)
	req.True(page1[limit-1].At.After(page2[0].At))
}

func Test_Get_Messages_Scopes_By_Project(t *testing.T) {
	req := require.New(t)
	db := newTestBadger(t)

	repository := NewMessageRepository(db, slog.Default(), nil)
	at := time.Now().UTC()
	req.NoError(repository.StoreMessage(DiskMessage{ID: uuid.New(), Project: "alpha", Sender: "alice", Body: "in alpha", At: at}))
	req.NoError(repository.StoreMessage(DiskMessage{ID: uuid.New(), Project: "beta", Sender: "bob", Body: "in beta", At: at}))

	fetched, _, err := repository.GetMessages("alpha", nil)
	req.NoError(err)
	req.Len(fetched, 1)
	req.Equal("in alpha", fetched[0].Body)
}

func Test_Get_Messages_Empty_Project(t *testing.T) {
	req := require.New(t)
	db := newTestBadger(t)

	repository := NewMessageRepository(db, slog.Default(), nil)

	fetched, _, err := repository.GetMessages("ghost", nil)
	req.NoError(err)
	req.Empty(fetched)
}

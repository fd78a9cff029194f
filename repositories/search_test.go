package repositories

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestSearchRepository(t *testing.T) *SearchRepository {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(t.TempDir()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewSearchRepository(writer, slog.Default())
}

func Test_Index_And_Search_Messages(t *testing.T) {
	req := require.New(t)
	repository := newTestSearchRepository(t)

	at := time.Now().UTC().Truncate(time.Second)
	messages := []DiskMessage{
		{ID: uuid.New(), Project: "alpha", Sender: "alice", Body: "the deployment pipeline is broken", At: at},
		{ID: uuid.New(), Project: "alpha", Sender: "bob", Body: "lunch at noon anyone", At: at},
		{ID: uuid.New(), Project: "beta", Sender: "clara", Body: "deployment went fine here", At: at},
	}
	for _, m := range messages {
		req.NoError(repository.Index(m))
	}

	// Matching is scoped to the requested project
	hits, err := repository.Search(context.Background(), "alpha", "deployment", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(messages[0].ID.String(), hits[0].MessageID)
	req.Equal("alice", hits[0].Sender)
	req.Equal("the deployment pipeline is broken", hits[0].Body)
}

func Test_Search_No_Match(t *testing.T) {
	req := require.New(t)
	repository := newTestSearchRepository(t)

	req.NoError(repository.Index(DiskMessage{
		ID: uuid.New(), Project: "alpha", Sender: "alice",
		Body: "hello there", At: time.Now().UTC(),
	}))

	hits, err := repository.Search(context.Background(), "alpha", "unrelated", 10)
	req.NoError(err)
	req.Empty(hits)
}

func Test_Index_Is_An_Upsert(t *testing.T) {
	req := require.New(t)
	repository := newTestSearchRepository(t)

	message := DiskMessage{
		ID: uuid.New(), Project: "alpha", Sender: "alice",
		Body: "first version", At: time.Now().UTC(),
	}
	req.NoError(repository.Index(message))

	// A retried store must not duplicate the document
	message.Body = "second version"
	req.NoError(repository.Index(message))

	hits, err := repository.Search(context.Background(), "alpha", "version", 10)
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal("second version", hits[0].Body)
}

//go:generate go run go.uber.org/mock/mockgen -source=search.go -destination=../mocks/mock_search_repository.go -package=mocks
package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"

	"collabhub/domain"
)

type ISearchRepository interface {
	Index(message DiskMessage) error
	Search(ctx context.Context, projectID domain.ProjectID, terms string, limit int) ([]SearchHit, error)
}

// SearchRepository maintains a Bluge full-text index over delivered
// messages, scoped per project through a keyword field.
type SearchRepository struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewSearchRepository(writer *bluge.Writer, log *slog.Logger) *SearchRepository {
	return &SearchRepository{writer: writer, log: log}
}

type SearchHit struct {
	MessageID string
	Sender    string
	Body      string
	At        time.Time
}

// Index upserts one message document, keyed by its message id so a retried
// store cannot duplicate hits.
func (s *SearchRepository) Index(message DiskMessage) error {
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewKeywordField("project", message.Project).StoreValue()).
		AddField(bluge.NewKeywordField("sender", message.Sender).StoreValue()).
		AddField(bluge.NewTextField("body", message.Body).StoreValue()).
		AddField(bluge.NewDateTimeField("at", message.At).StoreValue())

	return s.writer.Update(doc.ID(), doc)
}

// Search runs a match query over message bodies restricted to one project,
// best scores first.
func (s *SearchRepository) Search(ctx context.Context, projectID domain.ProjectID, terms string, limit int) ([]SearchHit, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			s.log.Debug("Index reader close failed", "error", err)
		}
	}()

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("body")).
		AddMust(bluge.NewTermQuery(projectID.String()).SetField("project"))

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(limit, query))
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for {
		match, err := iterator.Next()
		if err != nil {
			return nil, err
		}
		if match == nil {
			break
		}

		var hit SearchHit
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				hit.MessageID = string(value)
			case "sender":
				hit.Sender = string(value)
			case "body":
				hit.Body = string(value)
			case "at":
				if at, err := bluge.DecodeDateTime(value); err == nil {
					hit.At = at
				}
			}
			return true
		})
		if err != nil {
			return nil, err
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/user-api/internal/domain/entity"
)

// UserIndexer keeps a password-free copy of users in Elasticsearch.
type UserIndexer struct {
	ES      *elasticsearch.Client
	Index   string
	Timeout time.Duration
	Logger  *logrus.Logger
}

func NewUserIndexer(es *elasticsearch.Client, index string, logger *logrus.Logger) *UserIndexer {
	return &UserIndexer{ES: es, Index: index, Timeout: 3 * time.Second, Logger: logger}
}

type userDocument struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	Email     string `json:"email"`
	IndexedAt string `json:"indexed_at"`
}

func (i *UserIndexer) Put(ctx context.Context, u entity.User) error {
	b, err := json.Marshal(userDocument{
		ID:        int64(u.ID),
		FirstName: u.FirstName,
		Email:     u.Email,
		IndexedAt: time.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: i.Index, DocumentID: u.ID.String(), Body: bytes.NewReader(b), Refresh: "false"}

	c, cancel := context.WithTimeout(ctx, i.Timeout)
	defer cancel()
	res, err := req.Do(c, i.ES)
	if err != nil {
		return fmt.Errorf("index user %d: %w", u.ID, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("index user %d: %s", u.ID, res.Status())
	}
	i.Logger.WithField("user_id", u.ID).Debug("user indexed")
	return nil
}

// Remove deletes the document for id; a missing document is not an error.
func (i *UserIndexer) Remove(ctx context.Context, id entity.UserID) error {
	req := esapi.DeleteRequest{Index: i.Index, DocumentID: id.String()}

	c, cancel := context.WithTimeout(ctx, i.Timeout)
	defer cancel()
	res, err := req.Do(c, i.ES)
	if err != nil {
		return fmt.Errorf("remove user %d: %w", id, err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("remove user %d: %s", id, res.Status())
	}
	i.Logger.WithField("user_id", id).Debug("user removed from index")
	return nil
}

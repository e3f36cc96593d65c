package repositories

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/ps-vitor/sub2lease-seed/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryDocumentRepository keeps collections in process memory and reports
// counts the way a MongoDB server does. It backs dry runs and tests.
type MemoryDocumentRepository struct {
	mu          sync.Mutex
	collections map[string]*memoryCollection
}

type memoryCollection struct {
	docs  []domain.Document
	index map[string]int // id key -> position in docs
}

func NewMemoryDocumentRepository() *MemoryDocumentRepository {
	return &MemoryDocumentRepository{collections: make(map[string]*memoryCollection)}
}

func (r *MemoryDocumentRepository) collection(name string) *memoryCollection {
	c, ok := r.collections[name]
	if !ok {
		c = &memoryCollection{index: make(map[string]int)}
		r.collections[name] = c
	}
	return c
}

// idKey encodes an identifier with its BSON type so "1" and 1 stay distinct.
// Numbers compare by value across int32, int64 and double, as on the server.
func idKey(id interface{}) (string, error) {
	if key, ok := numericKey(id); ok {
		return key, nil
	}
	t, data, err := bson.MarshalValue(id)
	if err != nil {
		return "", fmt.Errorf("encode _id: %w", err)
	}
	return fmt.Sprintf("%02x:%x", byte(t), data), nil
}

func numericKey(id interface{}) (string, bool) {
	switch v := id.(type) {
	case int32:
		return "num:" + strconv.FormatInt(int64(v), 10), true
	case int64:
		return "num:" + strconv.FormatInt(v, 10), true
	case int:
		return "num:" + strconv.FormatInt(int64(v), 10), true
	case float64:
		if v == math.Trunc(v) && math.Abs(v) < math.MaxInt64 {
			return "num:" + strconv.FormatInt(int64(v), 10), true
		}
		return "num:" + strconv.FormatFloat(v, 'g', -1, 64), true
	}
	return "", false
}

func sameContent(a, b domain.Document) bool {
	ab, errA := bson.Marshal(a)
	bb, errB := bson.Marshal(b)
	return errA == nil && errB == nil && bytes.Equal(ab, bb)
}

func (r *MemoryDocumentRepository) UpsertByID(_ context.Context, collection string, docs []domain.Document) (domain.UpsertResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.collection(collection)
	var res domain.UpsertResult
	for i, doc := range docs {
		id, ok := domain.DocumentID(doc)
		if !ok {
			return res, fmt.Errorf("document %d: %w", i, ErrMissingID)
		}
		key, err := idKey(id)
		if err != nil {
			return res, fmt.Errorf("document %d: %w", i, err)
		}

		stored := cloneDocument(doc)
		if pos, found := c.index[key]; found {
			res.Matched++
			if !sameContent(c.docs[pos], stored) {
				res.Modified++
			}
			c.docs[pos] = stored
			continue
		}
		c.index[key] = len(c.docs)
		c.docs = append(c.docs, stored)
		res.Upserted++
	}
	return res, nil
}

// InsertMany assigns a fresh ObjectID to documents without one, as the
// driver does, and stops at the first duplicate identifier.
func (r *MemoryDocumentRepository) InsertMany(_ context.Context, collection string, docs []domain.Document) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c := r.collection(collection)
	var inserted int64
	for i, doc := range docs {
		stored := cloneDocument(doc)
		id, ok := domain.DocumentID(stored)
		if !ok {
			id = primitive.NewObjectID()
			stored = append(domain.Document{{Key: domain.IDKey, Value: id}}, stored...)
		}
		key, err := idKey(id)
		if err != nil {
			return inserted, fmt.Errorf("document %d: %w", i, err)
		}
		if _, dup := c.index[key]; dup {
			return inserted, fmt.Errorf("document %d: %w", i, ErrDuplicateKey)
		}
		c.index[key] = len(c.docs)
		c.docs = append(c.docs, stored)
		inserted++
	}
	return inserted, nil
}

func (r *MemoryDocumentRepository) DeleteAll(_ context.Context, collection string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[collection]
	if !ok {
		return 0, nil
	}
	n := int64(len(c.docs))
	delete(r.collections, collection)
	return n, nil
}

// Find returns a copy of every document stored in collection, in insertion order.
func (r *MemoryDocumentRepository) Find(collection string) []domain.Document {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.collections[collection]
	if !ok {
		return nil
	}
	out := make([]domain.Document, len(c.docs))
	for i, doc := range c.docs {
		out[i] = cloneDocument(doc)
	}
	return out
}

func (r *MemoryDocumentRepository) Count(collection string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if c, ok := r.collections[collection]; ok {
		return len(c.docs)
	}
	return 0
}

func (r *MemoryDocumentRepository) CountAll(_ context.Context, collection string) (int64, error) {
	return int64(r.Count(collection)), nil
}

func cloneDocument(doc domain.Document) domain.Document {
	return append(domain.Document(nil), doc...)
}

// Package redisstore is an alternative to sitesearch.FileStore: the same
// read-only Store interface, backed by a key-value store instead of
// prefix-sharded JSON files on disk. The specification calls this out as
// an equivalent Index Store backend; this package follows the
// hexagonal driven-adapter shape custodia-labs-sercha-core uses for its
// own Redis session store — a thin struct wrapping *redis.Client, a
// compile-time interface assertion, and JSON-encoded values.
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/wizenheimer/sitesearch"
)

var _ sitesearch.Store = (*RedisStore)(nil)

const (
	postingsPrefix = "postings:"
	urlPrefix      = "doc:url:"
	titlePrefix    = "doc:title:"
	headingPrefix  = "doc:heading:"
	idfPrefix      = "idf:"
	rankPrefix     = "rank:"
	totalDocsKey   = "meta:total_docs"
)

// RedisStore implements sitesearch.Store over a Redis (or Redis-compatible)
// key-value backend. Unlike FileStore it has no shard concept: a term's
// posting list lives under a single key regardless of its first letter.
type RedisStore struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisStore wraps an already-configured Redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, ctx: context.Background()}
}

func (s *RedisStore) LoadPostings(term string) (sitesearch.PostingList, int) {
	data, err := s.client.Get(s.ctx, postingsPrefix+term).Bytes()
	if err == redis.Nil {
		return nil, 0
	}
	if err != nil {
		return nil, 0
	}

	var raw map[string][]int
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0
	}

	postings := make(sitesearch.PostingList, len(raw))
	for docStr, positions := range raw {
		id, err := sitesearch.ParseDocID(docStr)
		if err != nil {
			continue
		}
		postings[id] = positions
	}
	return postings, len(postings)
}

func (s *RedisStore) DocURL(id sitesearch.DocID) (string, bool) {
	url, err := s.client.Get(s.ctx, urlPrefix+id.String()).Result()
	if err != nil {
		return "", false
	}
	return url, true
}

func (s *RedisStore) Title(id sitesearch.DocID) string {
	title, _ := s.client.Get(s.ctx, titlePrefix+id.String()).Result()
	return title
}

func (s *RedisStore) Headings(id sitesearch.DocID) string {
	headings, _ := s.client.Get(s.ctx, headingPrefix+id.String()).Result()
	return headings
}

func (s *RedisStore) IDF(term string) float64 {
	v, err := s.client.Get(s.ctx, idfPrefix+term).Float64()
	if err != nil {
		return 0
	}
	return v
}

func (s *RedisStore) TotalDocs() int {
	v, err := s.client.Get(s.ctx, totalDocsKey).Int()
	if err != nil {
		return 0
	}
	return v
}

func (s *RedisStore) StaticRank(id sitesearch.DocID) float64 {
	v, err := s.client.Get(s.ctx, rankPrefix+id.String()).Float64()
	if err != nil {
		return 0
	}
	return v
}

// shardWire mirrors the "positions" wire field the Index Builder writes
// into each prefix-sharded JSON file.
type shardWire struct {
	Positions []int `json:"positions"`
}

// Populate loads a final index directory written by sitesearch.Build and
// pushes every shard file and auxiliary table into Redis, pipelined per
// shard. It is the Redis equivalent of sitesearch.OpenFileStore: both
// consume the exact same on-disk layout, just via different load paths.
func Populate(ctx context.Context, client *redis.Client, dir string) error {
	if err := populateShards(ctx, client, dir); err != nil {
		return err
	}
	total, err := populateDocTable(ctx, client, filepath.Join(dir, "doc_map.json"), urlPrefix)
	if err != nil {
		return err
	}
	if _, err := populateDocTable(ctx, client, filepath.Join(dir, "title_map.json"), titlePrefix); err != nil {
		return err
	}
	if _, err := populateDocTable(ctx, client, filepath.Join(dir, "heading_map.json"), headingPrefix); err != nil {
		return err
	}
	if _, err := populateIDF(ctx, client, filepath.Join(dir, "idf.json")); err != nil {
		return err
	}
	if err := populateRank(ctx, client, filepath.Join(dir, "rank.json")); err != nil {
		return err
	}
	if err := client.Set(ctx, totalDocsKey, total, 0).Err(); err != nil {
		return fmt.Errorf("redisstore: writing total doc count: %w", err)
	}
	return nil
}

func populateShards(ctx context.Context, client *redis.Client, dir string) error {
	letters := "abcdefghijklmnopqrstuvwxyz"
	names := make([]string, 0, len(letters)+1)
	for _, c := range letters {
		names = append(names, "index_"+string(c)+".json")
	}
	names = append(names, "index_other.json")

	pipe := client.Pipeline()
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return fmt.Errorf("redisstore: reading shard %s: %w", name, err)
		}

		var shard map[string]map[string]shardWire
		if err := json.Unmarshal(data, &shard); err != nil {
			return fmt.Errorf("redisstore: parsing shard %s: %w", name, err)
		}

		for term, byDoc := range shard {
			flat := make(map[string][]int, len(byDoc))
			for docStr, w := range byDoc {
				flat[docStr] = w.Positions
			}
			encoded, err := json.Marshal(flat)
			if err != nil {
				return fmt.Errorf("redisstore: encoding postings for %q: %w", term, err)
			}
			pipe.Set(ctx, postingsPrefix+term, encoded, 0)
		}
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisstore: writing postings: %w", err)
	}
	return nil
}

func populateDocTable(ctx context.Context, client *redis.Client, path, keyPrefix string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redisstore: reading %s: %w", filepath.Base(path), err)
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("redisstore: parsing %s: %w", filepath.Base(path), err)
	}

	pipe := client.Pipeline()
	for docStr, v := range raw {
		pipe.Set(ctx, keyPrefix+docStr, v, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redisstore: writing %s: %w", filepath.Base(path), err)
	}
	return len(raw), nil
}

func populateIDF(ctx context.Context, client *redis.Client, path string) (int, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redisstore: reading idf table: %w", err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return 0, fmt.Errorf("redisstore: parsing idf table: %w", err)
	}

	pipe := client.Pipeline()
	for term, v := range raw {
		pipe.Set(ctx, idfPrefix+term, strconv.FormatFloat(v, 'g', -1, 64), 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("redisstore: writing idf table: %w", err)
	}
	return len(raw), nil
}

func populateRank(ctx context.Context, client *redis.Client, path string) error {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redisstore: reading rank table: %w", err)
	}

	var raw map[string]float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("redisstore: parsing rank table: %w", err)
	}

	pipe := client.Pipeline()
	for docStr, v := range raw {
		pipe.Set(ctx, rankPrefix+docStr, strconv.FormatFloat(v, 'g', -1, 64), 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redisstore: writing rank table: %w", err)
	}
	return nil
}

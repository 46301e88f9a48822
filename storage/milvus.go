package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"meetScribe/config"
	"meetScribe/core"
)

// MilvusVectorStore indexes transcript fragments in a Milvus collection.
type MilvusVectorStore struct {
	mc   client.Client
	coll string
	dim  int
	emb  *embedder
}

func newMilvusVectorStore(cfg *config.Config) (*MilvusVectorStore, error) {
	addr := os.Getenv("MILVUS_ADDR")
	if addr == "" {
		addr = "localhost:19530"
	}
	username := os.Getenv("MILVUS_USERNAME")
	password := os.Getenv("MILVUS_PASSWORD")
	apiKey := os.Getenv("MILVUS_API_KEY") // For Zilliz Cloud
	coll := os.Getenv("MILVUS_COLLECTION")
	if coll == "" {
		coll = "meeting_segments"
	}

	mc, err := client.NewClient(context.Background(), client.Config{
		Address: addr, Username: username, Password: password, APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("connect milvus: %w", err)
	}

	s := &MilvusVectorStore{mc: mc, coll: coll, dim: embedDim, emb: newEmbedder(cfg)}
	if err := s.ensureSchemaAndIndex(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MilvusVectorStore) ensureSchemaAndIndex() error {
	ctx := context.Background()
	has, err := s.mc.HasCollection(ctx, s.coll)
	if err != nil {
		return err
	}
	if !has {
		schema := entity.NewSchema()
		schema.WithField(entity.NewField().WithName("id").WithIsAutoID(true).WithIsPrimaryKey(true).WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("meeting_id").WithDataType(entity.FieldTypeVarChar).WithMaxLength(128))
		schema.WithField(entity.NewField().WithName("ts_start").WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("ts_end").WithDataType(entity.FieldTypeInt64))
		schema.WithField(entity.NewField().WithName("text").WithDataType(entity.FieldTypeVarChar).WithMaxLength(4096))
		schema.WithField(entity.NewField().WithName("vector").WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim)))

		if err := s.mc.CreateCollection(ctx, schema, int32(2)); err != nil {
			return fmt.Errorf("create collection: %w", err)
		}
	}
	idx, err := entity.NewIndexHNSW(entity.COSINE, 8, 200)
	if err != nil {
		return fmt.Errorf("new hnsw index: %w", err)
	}
	if err := s.mc.CreateIndex(ctx, s.coll, "vector", idx, false, client.WithIndexName("idx_vector")); err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	if err := s.mc.LoadCollection(ctx, s.coll, false); err != nil {
		return fmt.Errorf("load collection: %w", err)
	}
	return nil
}

func (s *MilvusVectorStore) Upsert(meetingID string, fragments []core.TranscriptFragment) int {
	if len(fragments) == 0 {
		return 0
	}
	meetingIDs := make([]string, 0, len(fragments))
	starts := make([]int64, 0, len(fragments))
	ends := make([]int64, 0, len(fragments))
	texts := make([]string, 0, len(fragments))
	vectors := make([][]float32, 0, len(fragments))

	for _, f := range fragments {
		text := f.PreferredText()
		v, err := s.emb.embed(strings.ToLower(text))
		if err != nil {
			continue
		}
		meetingIDs = append(meetingIDs, meetingID)
		starts = append(starts, f.TimestampStart)
		ends = append(ends, f.TimestampEnd)
		texts = append(texts, text)
		vectors = append(vectors, v)
	}
	if len(vectors) == 0 {
		return 0
	}

	ctx := context.Background()
	_, err := s.mc.Insert(ctx, s.coll, "",
		entity.NewColumnVarChar("meeting_id", meetingIDs),
		entity.NewColumnInt64("ts_start", starts),
		entity.NewColumnInt64("ts_end", ends),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnFloatVector("vector", s.dim, vectors),
	)
	if err != nil {
		return 0
	}
	return len(vectors)
}

func (s *MilvusVectorStore) Search(meetingID string, query string, topK int) []core.SearchHit {
	v, err := s.emb.embed(strings.ToLower(query))
	if err != nil {
		return nil
	}
	if topK <= 0 {
		topK = 5
	}
	ctx := context.Background()
	sp, _ := entity.NewIndexHNSWSearchParam(74)
	filter := fmt.Sprintf("meeting_id == \"%s\"", strings.ReplaceAll(meetingID, "\"", "\\\""))
	res, err := s.mc.Search(ctx, s.coll, []string{}, filter,
		[]string{"ts_start", "ts_end", "text"},
		[]entity.Vector{entity.FloatVector(v)}, "vector", entity.COSINE, topK, sp)
	if err != nil {
		return nil
	}

	var hits []core.SearchHit
	for _, r := range res {
		cols := map[string]entity.Column{}
		for _, c := range r.Fields {
			cols[c.Name()] = c
		}
		for i := 0; i < r.ResultCount; i++ {
			var start, end int64
			var text string
			if c, ok := cols["ts_start"].(*entity.ColumnInt64); ok {
				if data := c.Data(); i < len(data) {
					start = data[i]
				}
			}
			if c, ok := cols["ts_end"].(*entity.ColumnInt64); ok {
				if data := c.Data(); i < len(data) {
					end = data[i]
				}
			}
			if c, ok := cols["text"].(*entity.ColumnVarChar); ok {
				if data := c.Data(); i < len(data) {
					text = data[i]
				}
			}
			hits = append(hits, core.SearchHit{
				MeetingID: meetingID,
				Score:     float64(r.Scores[i]),
				Start:     start,
				End:       end,
				Text:      text,
			})
		}
	}
	return hits
}

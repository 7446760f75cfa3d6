package index

import (
	"context"
	"fmt"
	"strconv"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"github.com/sirupsen/logrus"
)

const (
	fieldChunkID    = "chunk_id"
	fieldDocumentID = "document_id"
	fieldEmbedding  = "embedding"

	ivfNlist  = 128
	ivfNprobe = 10
)

// MilvusIndex stores chunk vectors in a Milvus collection with an IVF_FLAT
// L2 index and filters searches by owning document, so a query never scans
// other documents' vectors.
type MilvusIndex struct {
	client     client.Client
	collection string
	dim        int
	log        *logrus.Logger
}

func NewMilvusIndex(ctx context.Context, cli client.Client, collection string, dim int, log *logrus.Logger) (*MilvusIndex, error) {
	m := &MilvusIndex{
		client:     cli,
		collection: collection,
		dim:        dim,
		log:        log,
	}
	if err := m.ensureCollection(ctx); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *MilvusIndex) ensureCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collection)
	if err != nil {
		return fmt.Errorf("check milvus collection failed: %w", err)
	}
	if !has {
		schema := &entity.Schema{
			CollectionName: m.collection,
			Fields: []*entity.Field{
				{Name: fieldChunkID, DataType: entity.FieldTypeInt64, PrimaryKey: true},
				{Name: fieldDocumentID, DataType: entity.FieldTypeInt64},
				{
					Name:       fieldEmbedding,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{entity.TypeParamDim: strconv.Itoa(m.dim)},
				},
			},
		}
		if err := m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("create milvus collection failed: %w", err)
		}
		idx, err := entity.NewIndexIvfFlat(entity.L2, ivfNlist)
		if err != nil {
			return fmt.Errorf("build milvus index params failed: %w", err)
		}
		if err := m.client.CreateIndex(ctx, m.collection, fieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("create milvus index failed: %w", err)
		}
		m.log.WithField("collection", m.collection).Info("created milvus collection")
	}
	if err := m.client.LoadCollection(ctx, m.collection, false); err != nil {
		return fmt.Errorf("load milvus collection failed: %w", err)
	}
	return nil
}

func (m *MilvusIndex) Add(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	chunkIDs := make([]int64, len(entries))
	docIDs := make([]int64, len(entries))
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		chunkIDs[i] = int64(e.ChunkID)
		docIDs[i] = int64(e.DocumentID)
		vectors[i] = e.Vector
	}

	_, err := m.client.Insert(ctx, m.collection, "",
		entity.NewColumnInt64(fieldChunkID, chunkIDs),
		entity.NewColumnInt64(fieldDocumentID, docIDs),
		entity.NewColumnFloatVector(fieldEmbedding, m.dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("insert vectors into milvus failed: %w", err)
	}
	if err := m.client.Flush(ctx, m.collection, false); err != nil {
		return fmt.Errorf("flush milvus collection failed: %w", err)
	}
	return nil
}

func (m *MilvusIndex) Search(ctx context.Context, documentID uint, vector []float32, limit int) ([]Match, error) {
	sp, err := entity.NewIndexIvfFlatSearchParam(ivfNprobe)
	if err != nil {
		return nil, fmt.Errorf("build milvus search params failed: %w", err)
	}

	expr := fmt.Sprintf("%s == %d", fieldDocumentID, documentID)
	results, err := m.client.Search(
		ctx, m.collection, nil, expr, []string{fieldChunkID},
		[]entity.Vector{entity.FloatVector(vector)},
		fieldEmbedding, entity.L2, limit, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("search milvus failed: %w", err)
	}

	var matches []Match
	for _, res := range results {
		ids, ok := res.IDs.(*entity.ColumnInt64)
		if !ok {
			continue
		}
		data := ids.Data()
		for i := 0; i < res.ResultCount && i < len(data); i++ {
			matches = append(matches, Match{
				ChunkID:  uint(data[i]),
				Distance: res.Scores[i],
			})
		}
	}

	// Milvus orders by distance but leaves equal distances unordered;
	// re-sort for the deterministic chunk-ID tie-break.
	sortMatches(matches)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (m *MilvusIndex) DeleteByDocument(ctx context.Context, documentID uint) error {
	expr := fmt.Sprintf("%s == %d", fieldDocumentID, documentID)
	if err := m.client.Delete(ctx, m.collection, "", expr); err != nil {
		return fmt.Errorf("delete vectors from milvus failed: %w", err)
	}
	return nil
}

package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/leadscout/internal/types"
)

func gtLead(id, company string, rank int) types.GroundTruthLead {
	return types.GroundTruthLead{
		Lead:            types.Lead{ID: id, Name: "N " + id, Title: "CTO", Company: company},
		GroundTruthRank: rank,
	}
}

func TestNew_GroupsByCompanySorted(t *testing.T) {
	ds, err := New([]types.GroundTruthLead{
		gtLead("z1", "Zenith", 1),
		gtLead("a1", "Acme", 1),
		gtLead("a2", "Acme", 2),
	})
	require.NoError(t, err)

	groups := ds.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, "Acme", groups[0].Company)
	assert.Len(t, groups[0].Leads, 2)
	assert.Equal(t, "Zenith", groups[1].Company)
	assert.Equal(t, 3, ds.Size())
}

func TestNew_RankLookup(t *testing.T) {
	ds, err := New([]types.GroundTruthLead{gtLead("a1", "Acme", 3)})
	require.NoError(t, err)

	rank, ok := ds.Rank("a1")
	assert.True(t, ok)
	assert.Equal(t, 3, rank)

	_, ok = ds.Rank("missing")
	assert.False(t, ok)
}

func TestNew_RejectsEmptyDataset(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	_, err := New([]types.GroundTruthLead{
		gtLead("a1", "Acme", 1),
		gtLead("a1", "Acme", 2),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestNew_RejectsBadRank(t *testing.T) {
	_, err := New([]types.GroundTruthLead{gtLead("a1", "Acme", 0)})
	assert.Error(t, err)
}

type stubReader struct {
	leads []types.GroundTruthLead
	err   error
}

func (s *stubReader) ListGroundTruthLeads(_ context.Context) ([]types.GroundTruthLead, error) {
	return s.leads, s.err
}

func TestLoad_PropagatesReaderError(t *testing.T) {
	_, err := Load(context.Background(), &stubReader{err: errors.New("db down")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db down")
}

func TestLoad_Success(t *testing.T) {
	ds, err := Load(context.Background(), &stubReader{leads: []types.GroundTruthLead{gtLead("a1", "Acme", 1)}})
	require.NoError(t, err)
	assert.Equal(t, 1, ds.Size())
}

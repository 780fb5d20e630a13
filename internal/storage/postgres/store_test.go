package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vaultRisk/internal/model"
)

func TestEvaluationArgsMatchPlaceholders(t *testing.T) {
	ratio := "266.66"
	at := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	args := evaluationArgs(model.EvaluationRecord{
		VaultID:     "42",
		Block:       19000000,
		RatioAfter:  &ratio,
		EvaluatedAt: at,
	})

	require.Len(t, args, 14)
	assert.True(t, strings.Contains(upsertEvaluation, "$14"))
	assert.False(t, strings.Contains(upsertEvaluation, "$15"))
	assert.Equal(t, int64(19000000), args[2])
	assert.Equal(t, &ratio, args[10])
	assert.Nil(t, args[9].(*string))
	assert.Equal(t, at, args[13])
}

func TestNewStoreRequiresDSN(t *testing.T) {
	_, err := NewStore(context.Background(), "", nil)
	assert.Error(t, err)
}

package storage

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicURL(t *testing.T) {
	base, err := url.Parse("https://cdn.example.org/interclasses/")
	require.NoError(t, err)

	assert.Equal(t, "https://cdn.example.org/interclasses/exports/a.xlsx", PublicURL(base, "exports/a.xlsx"))
	assert.Equal(t, "https://cdn.example.org/interclasses/exports/a.xlsx", PublicURL(base, "/exports/a.xlsx"))
	assert.Empty(t, PublicURL(base, ""))
	assert.Empty(t, PublicURL(nil, "exports/a.xlsx"))
}

func TestNewR2UploaderRejectsIncompleteConfig(t *testing.T) {
	_, err := NewR2Uploader(context.Background(), R2Config{AccountID: "acc", BucketName: "b"})
	assert.ErrorIs(t, err, ErrIncompleteR2Config)
}

func TestExportKey(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.FixedZone("BRT", -3*3600))
	assert.Equal(t, "exports/classificacao-20260304-080607.xlsx", ExportKey("classificacao", at, "xlsx"))
	assert.Equal(t, "exports/x-20260304-080607.csv", ExportKey("x", at, ".csv"))
}

package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectURL(t *testing.T) {
	base := endpointURL("localhost:9000", false)
	assert.Equal(t, "http://localhost:9000", base)
	assert.Equal(t, "https://s3.local", endpointURL("s3.local", true))

	assert.Equal(t,
		"http://localhost:9000/exports/history-exports/u1/20260301T120000Z.csv",
		objectURL(base, "exports", "history-exports/u1/20260301T120000Z.csv"),
	)
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOfUnwrapsChain(t *testing.T) {
	base := E(KindParse, "extract.spreadsheet", errors.New("zip: not a valid zip file"))
	wrapped := fmt.Errorf("ingest seaside.xlsx: %w", base)

	assert.Equal(t, KindParse, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindParse))
	assert.False(t, Is(wrapped, KindStorage))
	assert.Equal(t, "zip: not a valid zip file", Message(wrapped))
}

func TestUnclassifiedIsInternal(t *testing.T) {
	err := errors.New("boom")

	assert.Equal(t, KindInternal, KindOf(err))
	assert.Equal(t, http.StatusInternalServerError, KindOf(err).HTTPStatus())
}

func TestInputMapsToBadRequest(t *testing.T) {
	err := Input("query.range", "startDate and endDate are required")

	assert.Equal(t, http.StatusBadRequest, KindOf(err).HTTPStatus())
	assert.Equal(t, "input_error", KindOf(err).String())
	assert.Equal(t, "query.range: startDate and endDate are required", err.Error())
}

func TestENilIsNil(t *testing.T) {
	assert.NoError(t, E(KindStorage, "op", nil))
}

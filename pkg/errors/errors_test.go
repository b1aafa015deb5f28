package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("driver: bad connection")
	err := Wrap(CodeDependency, cause, "persist order")

	require.NotNil(t, err)
	assert.Equal(t, CodeDependency, err.Code())
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "persist order")
}

func TestAsUnwrapsThroughChain(t *testing.T) {
	inner := New(CodeStateConflict, "order already cancelled")
	wrapped := fmt.Errorf("cancel order: %w", inner)

	typed := As(wrapped)
	require.NotNil(t, typed)
	assert.Equal(t, CodeStateConflict, typed.Code())
	assert.True(t, HasCode(wrapped, CodeStateConflict))
	assert.False(t, HasCode(wrapped, CodeValidation))
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NO_SUCH_CODE"))
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestPartialFailureMetadata(t *testing.T) {
	meta := MetadataFor(CodePartialFailure)
	assert.Equal(t, http.StatusBadGateway, meta.HTTPStatus)
	assert.True(t, meta.Retryable)
	assert.True(t, meta.DetailsAllowed)
}

func TestTimeoutMetadataIsRetryable(t *testing.T) {
	meta := MetadataFor(CodeTimeout)
	assert.Equal(t, http.StatusGatewayTimeout, meta.HTTPStatus)
	assert.True(t, meta.Retryable)
}

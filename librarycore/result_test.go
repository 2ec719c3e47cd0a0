package librarycore_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quercus-labs/library-lending-core-go/librarycore"
)

func Test_SuccessResult_CarriesPayload(t *testing.T) {
	books := []librarycore.Book{{ID: 1, Title: "Database Systems"}}

	result := librarycore.SuccessResult(books)

	assert.True(t, result.OK)
	assert.Empty(t, result.Message)
	assert.Equal(t, books, result.Payload)
}

func Test_FailureResult_CarriesErrorText(t *testing.T) {
	err := fmt.Errorf("%w: book 42", librarycore.ErrNotFound)

	result := librarycore.FailureResult(err)

	assert.False(t, result.OK)
	assert.Equal(t, err.Error(), result.Message)
	assert.Nil(t, result.Payload)
}

func Test_ResultOf_BranchesOnError(t *testing.T) {
	success := librarycore.ResultOf("payload", nil)
	assert.True(t, success.OK)
	assert.Equal(t, "payload", success.Payload)

	failure := librarycore.ResultOf("payload", librarycore.ErrConflict)
	assert.False(t, failure.OK)
	assert.Nil(t, failure.Payload, "payload must not leak into a failed result")
	assert.Contains(t, failure.Message, "open loan")
}

func Test_Result_ToJSON(t *testing.T) {
	result := librarycore.SuccessResult(librarycore.Book{ID: 7, Title: "T", Stock: 3})

	encoded, err := result.ToJSON()
	require.NoError(t, err)

	assert.Contains(t, string(encoded), `"ok":true`)
	assert.Contains(t, string(encoded), `"book_id":7`)
	assert.NotContains(t, string(encoded), `"message"`, "empty message should be omitted")
}

func Test_Result_ToJSON_Failure(t *testing.T) {
	result := librarycore.FailureResult(librarycore.ErrInvalidStock)

	encoded, err := result.ToJSON()
	require.NoError(t, err)

	assert.Contains(t, string(encoded), `"ok":false`)
	assert.Contains(t, string(encoded), `"message"`)
	assert.NotContains(t, string(encoded), `"payload"`, "nil payload should be omitted")
}

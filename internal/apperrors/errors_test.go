package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("get", "menu item %d not found", 4)))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("put", "bad selection")))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(Store("put", errors.New("pq: deadlock"))))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("plain")))
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("handler: %w", NotFound("resolve", "menu item %d not found", 9))

	assert.True(t, IsNotFound(err))
	assert.False(t, IsValidation(err))
	assert.Equal(t, "menu item 9 not found", PublicMessage(err))
}

func TestPublicMessageHidesStoreDetail(t *testing.T) {
	driverErr := errors.New(`pq: relation "menu_items" does not exist`)
	err := Store("list menu", driverErr)

	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Contains(t, err.Error(), "menu_items")
	assert.ErrorIs(t, err, driverErr)
}

func TestConsistencyWarningKind(t *testing.T) {
	err := ConsistencyWarning("replace item config", errors.New("redis down"))

	assert.Equal(t, KindConsistency, KindOf(err))
	assert.Equal(t, "consistency", KindOf(err).String())
}

package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/inventory"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestSortClause(t *testing.T) {
	cols := map[string]string{"name": "name", "createdAt": "created_at"}

	c, _ := testContext("/?sortBy=name&sortOrder=ASC")
	assert.Equal(t, "name ASC", sortClause(c, cols, "createdAt"))

	c, _ = testContext("/?sortBy=password_hash;--")
	assert.Equal(t, "created_at DESC", sortClause(c, cols, "createdAt"))
}

func TestDayRange(t *testing.T) {
	start, end, err := dayRange("2024-03-01", "2024-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.Local), *start)
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.Local), *end)

	start, end, err = dayRange("", "")
	require.NoError(t, err)
	assert.Nil(t, start)
	assert.Nil(t, end)

	_, _, err = dayRange("03/01/2024", "")
	var br badRequest
	assert.True(t, errors.As(err, &br))
}

func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   int
	}{
		{errors.Wrap(inventory.ErrItemNotFound, "find item"), http.StatusNotFound, util.CodeNotFound},
		{&inventory.InsufficientStockError{Available: 2}, http.StatusBadRequest, util.CodeInsufficient},
		{errItemExists, http.StatusBadRequest, util.CodeAlreadyExists},
		{invalid("bad"), http.StatusBadRequest, util.CodeInvalidParam},
		{errors.New("disk on fire"), http.StatusInternalServerError, util.CodeServerErr},
	}
	for _, tc := range cases {
		c, w := testContext("/")
		respondServiceError(c, tc.err)
		assert.Equal(t, tc.status, w.Code, tc.err.Error())
		assert.Contains(t, w.Body.String(), "\"code\":")
	}

	c, w := testContext("/")
	respondServiceError(c, errors.Wrap(inventory.ErrSaleNotFound, "find sale"))
	assert.JSONEq(t, `{"code":40401,"message":"Sale not found"}`, w.Body.String())

	// internal details never reach the client
	c, w = testContext("/")
	respondServiceError(c, errors.New("constraint users_email_key"))
	assert.NotContains(t, w.Body.String(), "users_email_key")
}

func TestValidEmail(t *testing.T) {
	assert.True(t, validEmail("a@b.co"))
	assert.False(t, validEmail("Name <a@b.co>"))
	assert.False(t, validEmail("nope"))
}

func TestLikePattern(t *testing.T) {
	assert.Equal(t, "%cola%", likePattern("  CoLa "))
	assert.Equal(t, "%50!% off!_x!!%", likePattern("50% OFF_x!"))
}

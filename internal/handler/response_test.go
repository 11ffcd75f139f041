package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/luckpool/registry/internal/repository"
	"github.com/luckpool/registry/internal/service"
)

func newTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	return c, w
}

func TestSuccess(t *testing.T) {
	c, w := newTestContext()

	Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp Response
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "success", resp.Message)
}

func TestSuccessPaged(t *testing.T) {
	c, w := newTestContext()

	SuccessPaged(c, []string{"a", "b"}, 1, 10, 42)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp PagedResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err)
	assert.Equal(t, 1, resp.Meta.Page)
	assert.Equal(t, 10, resp.Meta.PageSize)
	assert.Equal(t, int64(42), resp.Meta.Total)
}

func TestConflict(t *testing.T) {
	c, w := newTestContext()

	Conflict(c, "状态冲突")

	assert.Equal(t, http.StatusConflict, w.Code)
}

// TestRespondServiceError 测试业务错误到 HTTP 状态码的映射
func TestRespondServiceError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"unauthorized", service.ErrUnauthorized, http.StatusForbidden},
		{"only_project_owner", service.ErrOnlyProjectOwner, http.StatusForbidden},
		{"project_not_found", repository.ErrProjectNotFound, http.StatusNotFound},
		{"total_supply_zero", service.ErrTotalSupplyZero, http.StatusBadRequest},
		{"invalid_address", service.ErrInvalidAddress, http.StatusBadRequest},
		{"offset_out_of_bounds", service.ErrOffsetOutOfBounds, http.StatusBadRequest},
		{"zero_merkle_root", service.ErrZeroMerkleRoot, http.StatusBadRequest},
		{"already_started", service.ErrProjectAlreadyStarted, http.StatusConflict},
		{"not_in_progress", service.ErrProjectNotInProgress, http.StatusConflict},
		{"not_finished", service.ErrProjectNotFinished, http.StatusConflict},
		{"root_already_set", service.ErrMerkleRootAlreadySet, http.StatusConflict},
		{"already_drawn", service.ErrLotteryAlreadyDrawn, http.StatusConflict},
		{"invalid_proof", service.ErrInvalidMerkleProof, http.StatusForbidden},
		{"draw_lock", service.ErrDrawLockFailed, http.StatusConflict},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, w := newTestContext()
			respondServiceError(c, tc.err)
			assert.Equal(t, tc.code, w.Code)
		})
	}
}

// TestParseHash 测试哈希解析
func TestParseHash(t *testing.T) {
	h, ok := parseHash("0x1111111111111111111111111111111111111111111111111111111111111111")
	assert.True(t, ok)
	assert.Equal(t, "0x1111111111111111111111111111111111111111111111111111111111111111", h.Hex())

	_, ok = parseHash("0x1111")
	assert.False(t, ok)

	_, ok = parseHash("1111111111111111111111111111111111111111111111111111111111111111")
	assert.False(t, ok)

	_, ok = parseHash("0xzz11111111111111111111111111111111111111111111111111111111111111")
	assert.False(t, ok)
}

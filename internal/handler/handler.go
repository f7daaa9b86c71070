package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/export"
	"github.com/ABEL-1010/Inventory-Management-System/internal/inventory"
	"github.com/ABEL-1010/Inventory-Management-System/internal/stats"
	"github.com/ABEL-1010/Inventory-Management-System/internal/util"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var (
	errUserNotFound     = errors.New("User not found")
	errItemExists       = errors.New("Item already exists")
	errCategoryExists   = errors.New("Category already exists")
	errUserExists       = errors.New("User already exists")
	errSelfDelete       = errors.New("Cannot delete your own account")
	errDateRangeMissing = errors.New("Start date and end date are required")
)

// badRequest marks a validation failure whose message is safe to return.
type badRequest struct{ msg string }

func (e badRequest) Error() string { return e.msg }

func invalid(msg string) error {
	return badRequest{msg: msg}
}

// respondServiceError maps domain errors to the error body. Anything unknown
// is logged and answered with a generic 500.
func respondServiceError(c *gin.Context, err error) {
	var br badRequest
	switch {
	case errors.Is(err, inventory.ErrItemNotFound),
		errors.Is(err, inventory.ErrSaleNotFound),
		errors.Is(err, inventory.ErrCategoryNotFound),
		errors.Is(err, errUserNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, rootMessage(err))
	case errors.Is(err, inventory.ErrInsufficientStock):
		util.Error(c, http.StatusBadRequest, util.CodeInsufficient, err.Error())
	case errors.Is(err, errItemExists),
		errors.Is(err, errCategoryExists),
		errors.Is(err, errUserExists):
		util.Error(c, http.StatusBadRequest, util.CodeAlreadyExists, err.Error())
	case errors.Is(err, inventory.ErrInvalidQuantity),
		errors.Is(err, inventory.ErrNegativeStock),
		errors.Is(err, stats.ErrInvalidGroupBy),
		errors.Is(err, export.ErrUnsupportedFormat),
		errors.Is(err, errSelfDelete),
		errors.Is(err, errDateRangeMissing):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, rootMessage(err))
	case errors.As(err, &br):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, br.msg)
	default:
		log.WithError(err).WithFields(log.Fields{
			"request_id": c.GetString("requestID"),
			"path":       c.Request.URL.Path,
		}).Error("request failed")
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Server error")
	}
}

// rootMessage drops wrapping context so clients see the sentinel text only.
func rootMessage(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// sortClause builds an ORDER BY from ?sortBy/?sortOrder against a whitelist of
// API field -> column. Unknown fields fall back to def, order defaults to desc.
func sortClause(c *gin.Context, columns map[string]string, def string) string {
	col, ok := columns[c.Query("sortBy")]
	if !ok {
		col = columns[def]
	}
	if strings.EqualFold(c.Query("sortOrder"), "asc") {
		return col + " ASC"
	}
	return col + " DESC"
}

// likeEscaper escapes LIKE wildcards with '!', which needs no quoting in
// sqlite, postgres or mysql string literals.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// likePattern is a case-insensitive substring pattern for
// LOWER(col) LIKE ? ESCAPE '!'. Wildcards in s match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// dayRange parses optional YYYY-MM-DD bounds; the end bound covers its whole day
// and is returned as the exclusive start of the following day.
func dayRange(startStr, endStr string) (start, endExclusive *time.Time, err error) {
	if startStr != "" {
		t, perr := util.ParseDate(startStr)
		if perr != nil {
			return nil, nil, invalid("Invalid startDate, expected YYYY-MM-DD")
		}
		start = &t
	}
	if endStr != "" {
		t, perr := util.ParseDate(endStr)
		if perr != nil {
			return nil, nil, invalid("Invalid endDate, expected YYYY-MM-DD")
		}
		next := t.AddDate(0, 0, 1)
		endExclusive = &next
	}
	return start, endExclusive, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

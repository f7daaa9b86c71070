package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/ABEL-1010/Inventory-Management-System/internal/export"

	"github.com/gin-gonic/gin"
)

// sendTable renders t in the requested format and sends it as an attachment
// named <basename>_<yyyymmdd>.<ext>. Rendering happens before any header is
// written so a failure can still produce a JSON error.
func sendTable(c *gin.Context, format, basename string, t export.Table) {
	f, err := export.ParseFormat(format)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := export.Write(&buf, f, t); err != nil {
		respondServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("%s_%s.%s", basename, time.Now().Format("20060102"), f.Ext())
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, f.ContentType(), buf.Bytes())
}

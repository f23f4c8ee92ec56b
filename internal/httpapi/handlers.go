package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BullionBear/lobkeeper/internal/ingest"
	"github.com/BullionBear/lobkeeper/internal/replay"
	"github.com/BullionBear/lobkeeper/internal/store"
)

type handlers struct {
	sup *ingest.Supervisor
	st  *store.Store
}

type symbolsResponse struct {
	Symbols []string `json:"symbols"`
}

// @Summary List ingested symbols
// @Produce json
// @Success 200 {object} symbolsResponse
// @Router /symbols [get]
func (h *handlers) listSymbols(c *gin.Context) {
	c.JSON(http.StatusOK, symbolsResponse{Symbols: h.sup.Symbols()})
}

type blockResponse struct {
	BeginningUpdateID  uint64   `json:"beginning_update_id"`
	EndingUpdateID     uint64   `json:"ending_update_id"`
	Size               int      `json:"size"`
	BeginningTimestamp string   `json:"beginning_timestamp"`
	EndingTimestamp    string   `json:"ending_timestamp"`
	SnapshotIDs        []uint64 `json:"snapshot_ids"`
}

// @Summary List contiguous diff blocks for a symbol
// @Produce json
// @Param symbol path string true "canonical symbol"
// @Success 200 {array} blockResponse
// @Router /blocks/{symbol} [get]
func (h *handlers) listBlocks(c *gin.Context) {
	symbol := c.Param("symbol")
	blocks, err := replay.AllDataBlocks(c.Request.Context(), h.st, symbol, 0)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	out := make([]blockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, blockResponse{
			BeginningUpdateID:  b.BeginningUpdateID,
			EndingUpdateID:     b.EndingUpdateID,
			Size:               b.Size,
			BeginningTimestamp: b.BeginningTimestamp.Format("2006-01-02T15:04:05.000Z"),
			EndingTimestamp:    b.EndingTimestamp.Format("2006-01-02T15:04:05.000Z"),
			SnapshotIDs:        b.BlockSnapshotIDs,
		})
	}
	c.JSON(http.StatusOK, out)
}

package main

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

const maxSnapshotBytes = 64 << 10

// GET /api/v1/progress/export
func ExportProgress(t *Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, err := t.Export()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"key":      progressKey,
			"snapshot": json.RawMessage(raw),
		})
	}
}

// POST /api/v1/progress/restore
// Body is either the bare snapshot or the export envelope {"snapshot": {...}}.
func RestoreProgress(t *Tracker) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxSnapshotBytes))
		if err != nil || len(body) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "snapshot required"})
			return
		}
		var envelope struct {
			Snapshot json.RawMessage `json:"snapshot"`
		}
		if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Snapshot) > 0 {
			body = envelope.Snapshot
		}

		view, err := t.Restore(body)
		if err != nil {
			abortWith(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "restored", "journey": journeyDTO(view)})
	}
}

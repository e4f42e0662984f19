// Package api exposes the generation engine over HTTP: trigger a build,
// fetch its stored document, and watch it progress over a WebSocket.
package api

import (
	"context"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/crossgen/crossword/internal/config"
	"github.com/crossgen/crossword/internal/db"
	"github.com/crossgen/crossword/internal/middleware"
	"github.com/crossgen/crossword/internal/models"
	"github.com/crossgen/crossword/internal/realtime"
	"github.com/crossgen/crossword/pkg/clues"
	"github.com/crossgen/crossword/pkg/generator"
	"github.com/crossgen/crossword/pkg/grid"
	"github.com/crossgen/crossword/pkg/index"
	"github.com/crossgen/crossword/pkg/output"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// Dictionary is the subset of *dictionary.Dictionary the Generator Loop
// needs, accepted here as an interface so handlers can be tested without a
// real dictionary file.
type Dictionary interface {
	Words() []string
	Has(word string) bool
}

// Handlers wires the Generator Loop to HTTP, archiving each build in
// Postgres and streaming its progress through the realtime Hub.
type Handlers struct {
	db      *db.Database
	hub     *realtime.Hub
	dict    Dictionary
	idx     *index.Index
	clueGen *clues.Generator
	cfg     *config.Config
}

// NewHandlers creates a Handlers. clueGen may be nil, in which case hints
// are left blank rather than the build failing.
func NewHandlers(database *db.Database, hub *realtime.Hub, dict Dictionary, idx *index.Index, clueGen *clues.Generator, cfg *config.Config) *Handlers {
	return &Handlers{db: database, hub: hub, dict: dict, idx: idx, clueGen: clueGen, cfg: cfg}
}

// createPuzzleRequest lets a caller override the default grid size, word
// target, and time budget for one build.
type createPuzzleRequest struct {
	GridLen       int `json:"gridLen"`
	NWords        int `json:"nWords"`
	BudgetSeconds int `json:"budgetSeconds"`
}

// CreatePuzzle triggers a new build. The build runs on its own goroutine;
// this handler returns as soon as the "building" record is archived.
func (h *Handlers) CreatePuzzle(c *gin.Context) {
	var req createPuzzleRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength != 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	gridLen := req.GridLen
	if gridLen <= 0 {
		gridLen = h.cfg.GridLen
	}
	nWords := req.NWords
	if nWords <= 0 {
		nWords = h.cfg.NWords
	}
	budget := h.cfg.Budget
	if req.BudgetSeconds > 0 {
		budget = time.Duration(req.BudgetSeconds) * time.Second
	}

	buildID := uuid.New().String()
	puzzle := &models.Puzzle{
		ID:        buildID,
		GridLen:   gridLen,
		Grid:      nil,
		Words:     nil,
		Status:    models.StatusBuilding,
		CreatedAt: time.Now(),
	}

	if err := h.db.CreatePuzzle(puzzle); err != nil {
		log.Printf("api: failed to archive new build %s: %v", buildID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to start build"})
		return
	}

	go h.runBuild(buildID, gridLen, nWords, budget)

	c.JSON(http.StatusAccepted, gin.H{"id": buildID, "status": models.StatusBuilding})
}

// runBuild drives one Generator Loop invocation to completion, archiving
// the result and broadcasting progress as it goes. Runs on its own
// goroutine so CreatePuzzle's handler never blocks on a build.
func (h *Handlers) runBuild(buildID string, gridLen, nWords int, budget time.Duration) {
	ctx := context.Background()
	start := time.Now()

	cfg := generator.Config{
		GridLen: gridLen,
		NWords:  nWords,
		Budget:  budget,
		Index:   h.idx,
		Dict:    h.dict,
		OnProgress: func(p generator.Progress) {
			h.hub.Broadcast(buildID, realtime.Event{
				Type:      realtime.EventPlacement,
				WordCount: p.WordCount,
				Elapsed:   p.Elapsed.Round(time.Millisecond).String(),
				Word:      p.Word,
			})
		},
	}

	g, err := generator.Generate(ctx, cfg)
	middleware.RecordBuildDuration("generate", time.Since(start))
	if err != nil {
		h.failBuild(buildID, err)
		return
	}

	var hints []clues.HintedWord
	words := wordRecords(grid.Words(g))
	if h.clueGen != nil {
		hintStart := time.Now()
		hints, err = h.clueGen.GenerateHints(ctx, words)
		middleware.RecordBuildDuration("hints", time.Since(hintStart))
		if err != nil {
			h.failBuild(buildID, err)
			return
		}
	} else {
		hints = make([]clues.HintedWord, len(words))
		for i, w := range words {
			hints[i] = clues.HintedWord{Word: w.Word, Origin: w.Origin, Orientation: w.Orientation}
		}
	}

	result := output.BuildDocument(g, hints, buildID)
	result.Status = models.StatusReady
	result.CreatedAt = time.Now()

	if err := h.db.UpdatePuzzleResult(result); err != nil {
		log.Printf("api: failed to archive completed build %s: %v", buildID, err)
	}

	h.hub.Broadcast(buildID, realtime.Event{
		Type:      realtime.EventReady,
		WordCount: len(words),
		Elapsed:   time.Since(start).Round(time.Millisecond).String(),
	})
}

func (h *Handlers) failBuild(buildID string, err error) {
	if dbErr := h.db.UpdatePuzzleStatus(buildID, models.StatusFailed, err.Error()); dbErr != nil {
		log.Printf("api: failed to record failure for build %s: %v", buildID, dbErr)
	}
	h.hub.Broadcast(buildID, realtime.Event{Type: realtime.EventFailed, Error: err.Error()})
}

// wordRecords flattens the Word Scanner's output set into a slice for the
// Hint Binder to iterate; the order follows map iteration and is not stable.
func wordRecords(words map[grid.WordRecord]struct{}) []grid.WordRecord {
	result := make([]grid.WordRecord, 0, len(words))
	for w := range words {
		result = append(result, w)
	}
	return result
}

// GetPuzzle fetches a build's stored document by id, whatever its status.
func (h *Handlers) GetPuzzle(c *gin.Context) {
	id := c.Param("id")

	puzzle, err := h.db.GetPuzzleByID(id)
	if err != nil {
		log.Printf("api: failed to fetch build %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch puzzle"})
		return
	}
	if puzzle == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "puzzle not found"})
		return
	}

	c.JSON(http.StatusOK, puzzle)
}

// ListPuzzles returns archived builds, newest first, optionally filtered by
// status and paginated with ?limit=&offset=.
func (h *Handlers) ListPuzzles(c *gin.Context) {
	status := c.Query("status")
	limit := queryInt(c, "limit", 20)
	offset := queryInt(c, "offset", 0)

	puzzles, err := h.db.ListPuzzles(status, limit, offset)
	if err != nil {
		log.Printf("api: failed to list puzzles: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list puzzles"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"puzzles": puzzles})
}

func queryInt(c *gin.Context, key string, def int) int {
	v := c.Query(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return def
	}
	return n
}

// StreamProgress upgrades the connection to a WebSocket streaming buildID's
// progress events. If the build is already finished, GetPuzzle is the
// right endpoint instead — this still works, it'll just immediately
// deliver nothing further.
func (h *Handlers) StreamProgress(c *gin.Context) {
	buildID := c.Param("id")

	puzzle, err := h.db.GetPuzzleByID(buildID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to look up build"})
		return
	}
	if puzzle == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "build not found"})
		return
	}

	if err := realtime.ServeWs(h.hub, c.Writer, c.Request, buildID); err != nil {
		log.Printf("api: websocket upgrade failed for build %s: %v", buildID, err)
	}
}

// Health reports whether the archive and pub/sub backends are reachable.
func (h *Handlers) Health(c *gin.Context) {
	if err := h.db.DB.Ping(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database unreachable"})
		return
	}
	if err := h.db.Redis.Ping(c.Request.Context()).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "redis unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

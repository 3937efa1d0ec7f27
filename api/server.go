// Package api exposes a board over HTTP, so browser or scripted front ends
// can drive the same aggregator, debouncer and reducer as the terminal.
package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"go-fretboard/fretboard"
	"go-fretboard/tone"
)

// @title go-fretboard API
// @version 1.0
// @description Drive a fretboard: pointers, keys, taps and display options
// @host localhost:8080
// @BasePath /api/v1

// Server serves one board.
type Server struct {
	board  *fretboard.Board
	log    *slog.Logger
	engine *gin.Engine
}

// NewServer builds the routes for b. A nil logger uses slog.Default.
func NewServer(b *fretboard.Board, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{board: b, log: log}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLog())
	r.Use(corsMiddleware())

	r.GET("/health", healthCheck)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/board", s.getBoard)
		v1.POST("/pointer", s.postPointer)
		v1.POST("/key", s.postKey)
		v1.GET("/taps", s.getTaps)
		v1.PUT("/taps", s.putTaps)
		v1.DELETE("/taps", s.deleteTaps)
		v1.GET("/options", s.getOptions)
		v1.PUT("/options", s.putOptions)
	}

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	s.engine = r
	return s
}

// Handler returns the router, for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on port until the listener fails.
func (s *Server) Run(port int) error {
	s.log.Info("api listening", "port", port)
	return s.engine.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		s.log.Debug("request", "method", c.Request.Method, "path", c.FullPath(), "status", c.Writer.Status())
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

// healthCheck godoc
// @Summary Health check endpoint
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "go-fretboard",
	})
}

// getBoard godoc
// @Summary Current board
// @Description Layout, visible cells, emphasis and taps
// @Tags board
// @Produce json
// @Param touched query string false "comma-separated indices to highlight"
// @Success 200 {object} BoardResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/board [get]
func (s *Server) getBoard(c *gin.Context) {
	state := s.board.Snapshot()
	if q := c.Query("touched"); q != "" {
		keys, err := parseIndices(q, len(state.View.Flat))
		if err != nil {
			badRequest(c, err)
			return
		}
		state.Render = state.Render.Touch(keys)
	}
	c.JSON(http.StatusOK, NewBoardResponse(state))
}

// parseIndices checks a comma-separated index list against the board size
// and returns it as position keys.
func parseIndices(q string, n int) ([]string, error) {
	var keys []string
	for _, f := range strings.Split(q, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("touched: %q is not an index", f)
		}
		if i < 0 || i >= n {
			return nil, fmt.Errorf("touched: index %d is off the board", i)
		}
		keys = append(keys, strconv.Itoa(i))
	}
	return keys, nil
}

// PointerRequest is one pointer gesture.
type PointerRequest struct {
	ID     string `json:"id" binding:"required"`
	Index  int    `json:"index"`
	Action string `json:"action" binding:"required,oneof=down move up cancel"`
}

// postPointer godoc
// @Summary Pointer gesture
// @Tags input
// @Accept json
// @Param body body PointerRequest true "gesture"
// @Success 204
// @Failure 400 {object} map[string]string
// @Router /api/v1/pointer [post]
func (s *Server) postPointer(c *gin.Context) {
	var req PointerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Action == "down" || req.Action == "move" {
		if n := len(s.board.View().Flat); req.Index < 0 || req.Index >= n {
			badRequest(c, fmt.Errorf("index %d not on the board (0-%d)", req.Index, n-1))
			return
		}
	}
	switch req.Action {
	case "down":
		s.board.PointerDown(req.ID, req.Index)
	case "move":
		s.board.PointerMove(req.ID, req.Index)
	case "up":
		s.board.PointerUp(req.ID)
	case "cancel":
		s.board.PointerCancel()
	}
	c.Status(http.StatusNoContent)
}

// KeyRequest is one physical key transition.
type KeyRequest struct {
	Code   string `json:"code" binding:"required"`
	Action string `json:"action" binding:"required,oneof=down up"`
}

// postKey godoc
// @Summary Key press or release
// @Tags input
// @Accept json
// @Param body body KeyRequest true "key"
// @Success 204
// @Failure 400 {object} map[string]string
// @Router /api/v1/key [post]
func (s *Server) postKey(c *gin.Context) {
	var req KeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	if req.Action == "down" {
		s.board.KeyDown(req.Code)
	} else {
		s.board.KeyUp(req.Code)
	}
	c.Status(http.StatusNoContent)
}

// TapsResponse is the committed selection, named for a piano view spanning
// Levels.
type TapsResponse struct {
	Taps   []tone.Point `json:"taps"`
	Notes  []string     `json:"notes"`
	Levels []int        `json:"levels"`
}

// getTaps godoc
// @Summary Committed selection
// @Tags taps
// @Produce json
// @Success 200 {object} TapsResponse
// @Router /api/v1/taps [get]
func (s *Server) getTaps(c *gin.Context) {
	taps := s.board.Taps()
	if taps == nil {
		taps = []tone.Point{}
	}
	opts := s.board.Options()
	c.JSON(http.StatusOK, TapsResponse{
		Taps:   taps,
		Notes:  opts.PianoNotes(taps),
		Levels: opts.PianoLevels(),
	})
}

// TapsRequest sets the selection by position index.
type TapsRequest struct {
	Indices []int `json:"indices"`
}

// putTaps godoc
// @Summary Replace the committed selection
// @Tags taps
// @Accept json
// @Param body body TapsRequest true "indices"
// @Success 200 {object} TapsResponse
// @Failure 400 {object} map[string]string
// @Router /api/v1/taps [put]
func (s *Server) putTaps(c *gin.Context) {
	var req TapsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	flat := s.board.View().Flat
	points := make([]tone.Point, 0, len(req.Indices))
	for _, i := range req.Indices {
		if i < 0 || i >= len(flat) {
			badRequest(c, fmt.Errorf("index %d not on the board", i))
			return
		}
		points = append(points, flat[i])
	}
	s.board.SetTaps(points)
	s.getTaps(c)
}

// deleteTaps godoc
// @Summary Clear the committed selection
// @Tags taps
// @Success 204
// @Router /api/v1/taps [delete]
func (s *Server) deleteTaps(c *gin.Context) {
	s.board.ClearTaps()
	c.Status(http.StatusNoContent)
}

// getOptions godoc
// @Summary Display options
// @Tags options
// @Produce json
// @Success 200 {object} fretboard.Options
// @Router /api/v1/options [get]
func (s *Server) getOptions(c *gin.Context) {
	c.JSON(http.StatusOK, s.board.Options())
}

// putOptions godoc
// @Summary Replace display options
// @Description Fields left out keep their current value
// @Tags options
// @Accept json
// @Produce json
// @Param body body fretboard.Options true "options"
// @Success 200 {object} fretboard.Options
// @Failure 400 {object} map[string]string
// @Router /api/v1/options [put]
func (s *Server) putOptions(c *gin.Context) {
	opts := s.board.Options()
	if err := c.ShouldBindJSON(&opts); err != nil {
		badRequest(c, err)
		return
	}
	if opts.Range[0] < 0 || opts.Range[1] < opts.Range[0] {
		badRequest(c, fmt.Errorf("invalid range [%d, %d)", opts.Range[0], opts.Range[1]))
		return
	}
	s.board.SetOptions(opts)
	c.JSON(http.StatusOK, opts)
}

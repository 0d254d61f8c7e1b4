package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordsplit/internal/logger"
	"github.com/bastiangx/wordsplit/pkg/config"
	"github.com/bastiangx/wordsplit/pkg/corpus"
	"github.com/bastiangx/wordsplit/pkg/segment"
	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// Server handles the IPC for word segmentation
type Server struct {
	segmenter    *segment.Segmenter
	model        *corpus.Model
	cache        *lru.Cache[string, segment.Result]
	maxInput     int
	cacheSize    int
	requestCount int
	input        io.Reader
	decoder      *msgpack.Decoder
	encoder      *msgpack.Encoder
	logger       *log.Logger
}

// NewServer creates a segmentation server reading requests from r and
// writing responses to w. A cache size < 1 disables the result cache.
func NewServer(seg *segment.Segmenter, model *corpus.Model, cfg config.ServerConfig, r io.Reader, w io.Writer) (*Server, error) {
	s := &Server{
		segmenter: seg,
		model:     model,
		maxInput:  cfg.MaxInput,
		input:     r,
		decoder:   msgpack.NewDecoder(r),
		encoder:   msgpack.NewEncoder(w),
		logger:    logger.New("server"),
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, segment.Result](cfg.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("failed to create result cache: %w", err)
		}
		s.cache = cache
		s.cacheSize = cfg.CacheSize
	}
	return s, nil
}

// Start signals readiness and serves requests until the input ends or ctx
// is done. A clean end of input returns nil. When the input is an
// io.Closer it is closed on cancellation to unblock a pending read.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Debug("Starting Server.")
	s.sendResponse(StatusResponse{Status: "ready"})

	if closer, ok := s.input.(io.Closer); ok {
		stop := context.AfterFunc(ctx, func() {
			closer.Close()
		})
		defer stop()
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		raw, err := s.decoder.DecodeRaw()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			s.logger.Errorf("Reading request stream: %v", err)
			return err
		}
		s.handleRequest(ctx, raw)
	}
}

// handleRequest decodes one framed request and dispatches on its action
func (s *Server) handleRequest(ctx context.Context, raw msgpack.RawMessage) {
	s.requestCount++

	var req Request
	if err := msgpack.Unmarshal(raw, &req); err != nil {
		s.logger.Errorf("Unmarshaling request: %v", err)
		s.sendError("", "Invalid msgpack request", 400)
		return
	}

	switch req.Action {
	case "", ActionSegment:
		s.handleSegment(ctx, req)
	case ActionScore:
		s.handleScore(req)
	case ActionPrefixes:
		s.handlePrefixes(req)
	case ActionInfo:
		s.handleInfo(req)
	case ActionHealth:
		s.sendResponse(StatusResponse{ID: req.ID, Status: "ok"})
	default:
		s.sendError(req.ID, fmt.Sprintf("Unknown action: %s", req.Action), 400)
	}
}

// checkText validates the text field shared by segment and prefixes
func (s *Server) checkText(req Request) bool {
	if req.Text == "" {
		s.sendError(req.ID, "Missing 't' parameter", 400)
		return false
	}
	if n := utf8.RuneCountInString(req.Text); s.maxInput > 0 && n > s.maxInput {
		s.sendError(req.ID, fmt.Sprintf("Text of %d characters exceeds maximum of %d", n, s.maxInput), 413)
		return false
	}
	return true
}

func (s *Server) handleSegment(ctx context.Context, req Request) {
	if !s.checkText(req) {
		return
	}

	start := time.Now()
	text := segment.Clean(req.Text)
	prev := req.Prev
	if prev == "" {
		prev = s.segmenter.Options().StartMarker
	}
	key := prev + "\x00" + text

	if s.cache != nil {
		if result, ok := s.cache.Get(key); ok {
			s.sendSegment(req.ID, result, true, time.Since(start))
			return
		}
	}

	result, err := s.segmenter.Search(ctx, text, prev)
	if err != nil {
		if errors.Is(err, segment.ErrBudgetExceeded) {
			s.logger.Warnf("Request %s: %v", req.ID, err)
			s.sendError(req.ID, err.Error(), 422)
			return
		}
		s.logger.Errorf("Request %s: %v", req.ID, err)
		s.sendError(req.ID, "Internal server error", 500)
		return
	}
	if s.cache != nil {
		s.cache.Add(key, result)
	}
	s.sendSegment(req.ID, result, false, time.Since(start))
}

func (s *Server) sendSegment(id string, result segment.Result, cached bool, elapsed time.Duration) {
	s.sendResponse(SegmentResponse{
		ID:        id,
		Words:     result.Words,
		Score:     result.Score,
		Count:     len(result.Words),
		Cached:    cached,
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleScore(req Request) {
	if req.Word == "" {
		s.sendError(req.ID, "Missing 'w' parameter", 400)
		return
	}
	score := s.segmenter.Scorer().Score(req.Word, req.Prev)
	s.sendResponse(ScoreResponse{
		ID:       req.ID,
		Word:     req.Word,
		Prev:     req.Prev,
		Score:    score,
		LogScore: math.Log10(score),
	})
}

func (s *Server) handlePrefixes(req Request) {
	if !s.checkText(req) {
		return
	}
	limit := req.Limit
	if limit < 1 {
		limit = s.segmenter.Options().Limit
	}

	entries := s.model.Prefixes(segment.Clean(req.Text), limit)
	prefixes := make([]PrefixEntry, len(entries))
	for i, e := range entries {
		prefixes[i] = PrefixEntry{Word: e.Word, Count: e.Count}
	}
	s.sendResponse(PrefixResponse{ID: req.ID, Prefixes: prefixes, Count: len(prefixes)})
}

func (s *Server) handleInfo(req Request) {
	stats := s.model.Stats()
	opts := s.segmenter.Options()
	s.sendResponse(InfoResponse{
		ID:          req.ID,
		Unigrams:    stats.Unigrams,
		Bigrams:     stats.Bigrams,
		MaxWordLen:  stats.MaxWordLen,
		Total:       stats.Total,
		Limit:       opts.Limit,
		StartMarker: opts.StartMarker,
		CacheSize:   s.cacheSize,
		Requests:    s.requestCount,
	})
}

// sendResponse encodes one response onto the output stream
func (s *Server) sendResponse(response any) {
	if err := s.encoder.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
	}
}

// sendError sends an error response
func (s *Server) sendError(id, message string, code int) {
	s.sendResponse(ErrorResponse{ID: id, Error: message, Code: code})
}

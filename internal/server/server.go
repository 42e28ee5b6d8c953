// Package server exposes parsing and card creation over HTTP.
package server

import (
	"bytes"
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/async"
	"github.com/yt2ig/yt2ig/internal/cardcreation"
	"github.com/yt2ig/yt2ig/internal/export"
	"github.com/yt2ig/yt2ig/internal/navigation"
	"github.com/yt2ig/yt2ig/internal/sync_"
	"github.com/yt2ig/yt2ig/internal/youtube"
	_ "github.com/yt2ig/yt2ig/providers"
)

const (
	HeaderGradientTop    = "X-Gradient-Top"
	HeaderGradientBottom = "X-Gradient-Bottom"
	HeaderRequestID      = "X-Request-ID"
)

var ErrAlreadyStarted = errors.New("server already started")

type Server struct {
	fetcher   youtube.Fetcher
	images    cardcreation.Images
	generator cardcreation.Generator
	// exporter and namer are optional; without them cards are only returned inline.
	exporter export.Exporter
	namer    *export.Namer
	engine   *gin.Engine
	started  sync_.Event
	ready    sync_.Event
	addr     net.Addr
	log      *zap.SugaredLogger
}

type Option func(s *Server)

// WithExporter allows clients to ask for cards to be exported instead of returned inline.
func WithExporter(exporter export.Exporter, namer *export.Namer) Option {
	return func(s *Server) {
		s.exporter = exporter
		s.namer = namer
	}
}

func New(fetcher youtube.Fetcher, images cardcreation.Images, generator cardcreation.Generator, opts ...Option) *Server {
	s := &Server{
		fetcher:   fetcher,
		images:    images,
		generator: generator,
		log:       zap.S().Named("server"),
	}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger(s.log))
	engine.GET("/health", s.health)
	api := engine.Group("/api/v1")
	{
		api.POST("/parse", s.parse)
		api.POST("/cards", s.createCard)
	}
	s.engine = engine
	return s
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves on addr until ctx is done, then shuts down gracefully. A Server can only be run once.
func (s *Server) Run(ctx context.Context, addr string) error {
	if !s.started.Set() {
		return ErrAlreadyStarted
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{Handler: s.engine}
	errs := async.Run(func() error { return srv.Serve(listener) })
	s.addr = listener.Addr()
	s.ready.Set()
	s.log.Infow("listening", "addr", s.addr.String())
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
		s.log.Info("shutting down")
		if err := srv.Shutdown(context.WithoutCancel(ctx)); err != nil {
			return err
		}
		if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// Ready is closed once Run is listening.
func (s *Server) Ready() <-chan struct{} {
	return s.ready.Wait()
}

// Addr is the address Run is listening on, or nil before Ready is closed.
func (s *Server) Addr() net.Addr {
	if !s.ready.IsSet() {
		return nil
	}
	return s.addr
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
	// Export the card instead of returning it inline.
	Export bool `json:"export"`
}

type parseResponse struct {
	Target     yt2ig.YouTubeVideo `json:"target"`
	URL        string             `json:"url"`
	DisplayURL string             `json:"display_url"`
}

type errorResponse struct {
	yt2ig.ErrorMessage
	Message  string `json:"message"`
	RawInput string `json:"raw_input"`
}

func newErrorResponse(msg yt2ig.ErrorMessage, rawInput string) errorResponse {
	return errorResponse{ErrorMessage: msg, Message: msg.Text(), RawInput: rawInput}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// parseTarget binds the request and parses its text, writing an error response if either fails.
func (s *Server) parseTarget(c *gin.Context) (req textRequest, target yt2ig.YouTubeVideo, ok bool) {
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, newErrorResponse(yt2ig.NewErrorMessage(err), ""))
		return req, target, false
	}
	parsed, err := yt2ig.Parse(req.Text)
	if err == nil {
		target, ok = parsed.(yt2ig.YouTubeVideo)
		if !ok {
			err = yt2ig.ErrUnknownShareTarget
		}
	}
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, newErrorResponse(yt2ig.NewErrorMessage(err), req.Text))
		return req, target, false
	}
	return req, target, true
}

func (s *Server) parse(c *gin.Context) {
	_, target, ok := s.parseTarget(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, parseResponse{
		Target:     target,
		URL:        target.URL().String(),
		DisplayURL: target.DisplayURL(),
	})
}

func (s *Server) createCard(c *gin.Context) {
	req, target, ok := s.parseTarget(c)
	if !ok {
		return
	}
	if req.Export && s.exporter == nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "export is not configured"})
		return
	}
	ctx := c.Request.Context()

	// Each request is its own run, so it gets its own navigation stack
	stack := navigation.NewStack()
	defer stack.Close()
	result := cardcreation.NewService(s.fetcher, s.images, s.generator, stack).CreateCard(ctx, target)

	switch state := result.(type) {
	case nil:
		// Client went away
		c.Status(499)
	case yt2ig.ErrorState:
		c.JSON(http.StatusBadGateway, newErrorResponse(state.Message, state.RawInput))
	case yt2ig.Share:
		created, ok := state.Loading.(yt2ig.Created)
		if !ok {
			panic("card creation finished without a card")
		}
		if req.Export {
			s.exportCard(c, created)
			return
		}
		var buf bytes.Buffer
		if err := created.Card.EncodePNG(&buf); err != nil {
			_ = c.Error(err)
			c.JSON(http.StatusInternalServerError, newErrorResponse(yt2ig.NewErrorMessage(err), req.Text))
			return
		}
		c.Header(HeaderGradientTop, yt2ig.ToHexRGB(created.Card.Gradient.Primary))
		c.Header(HeaderGradientBottom, yt2ig.ToHexRGB(created.Card.Gradient.Secondary))
		c.Data(http.StatusOK, "image/png", buf.Bytes())
	default:
		panic("unexpected card creation result")
	}
}

func (s *Server) exportCard(c *gin.Context, created yt2ig.Created) {
	name, err := s.namer.Name(created.Target, created.Info)
	if err == nil {
		var res *export.Export
		res, err = s.exporter.Export(c.Request.Context(), name, created.Card)
		if err == nil {
			c.JSON(http.StatusCreated, res)
			return
		}
	}
	_ = c.Error(err)
	c.JSON(http.StatusBadGateway, newErrorResponse(yt2ig.NewErrorMessage(err), created.Target.URL().String()))
}

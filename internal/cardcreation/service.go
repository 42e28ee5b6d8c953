// Package cardcreation drives a share target through fetching metadata, loading the thumbnail and rendering the card,
// publishing each state to the navigation stack.
package cardcreation

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/yt2ig/yt2ig"
	"github.com/yt2ig/yt2ig/async"
	"github.com/yt2ig/yt2ig/internal/compositor"
	"github.com/yt2ig/yt2ig/internal/navigation"
	"github.com/yt2ig/yt2ig/internal/youtube"
)

type Navigation interface {
	NavigateTo(state yt2ig.AppState) navigation.Handle
	ReplaceState(h navigation.Handle, state yt2ig.AppState) bool
}

type Images interface {
	compositor.ImageSource
	EnsureLoaded(ctx context.Context, u *url.URL) error
}

type Generator interface {
	Generate(ctx context.Context, info yt2ig.VideoInfo, images compositor.ImageSource) (*yt2ig.ShareCard, error)
}

// A step moves a run from one LoadingState to the next. Being given the wrong state is a programming error, and panics.
type step func(ctx context.Context, state yt2ig.LoadingState) (yt2ig.LoadingState, error)

type Service struct {
	fetcher   youtube.Fetcher
	images    Images
	generator Generator
	nav       Navigation
	steps     []step
	log       *zap.SugaredLogger
}

func NewService(fetcher youtube.Fetcher, images Images, generator Generator, nav Navigation) *Service {
	s := &Service{
		fetcher:   fetcher,
		images:    images,
		generator: generator,
		nav:       nav,
		log:       zap.S().Named("cardcreation"),
	}
	s.steps = []step{s.getInfo, s.getThumbnail, s.createCard}
	return s
}

// CreateCard pushes a new Share entry for target and runs it to completion, replacing the entry after every step.
// It returns the terminal state, either a Share in the Created stage or an ErrorState. If ctx is done before the run
// finishes, nothing further is published and nil is returned.
//
// Publishing to nav is not interruptible by ctx: if nav's subscribers stop receiving, the run waits for them.
func (s *Service) CreateCard(ctx context.Context, target yt2ig.YouTubeVideo) yt2ig.AppState {
	log := s.log.With("video_id", target.VideoID)
	var state yt2ig.LoadingState = yt2ig.Starting{Target: target}
	handle := s.nav.NavigateTo(yt2ig.Share{Target: target, Loading: state})
	log = log.With("handle", handle)

	for _, step := range s.steps {
		if ctx.Err() != nil {
			log.Debugw("cancelled", "stage", state.Stage())
			return nil
		}
		next, err := step(ctx, state)
		if ctx.Err() != nil {
			log.Debugw("cancelled", "stage", state.Stage())
			return nil
		}
		if err != nil {
			failed := yt2ig.ErrorState{
				Message:  yt2ig.NewErrorMessage(err),
				RawInput: target.URL().String(),
			}
			log.Warnw("card creation failed", "stage", state.Stage(), "code", failed.Message.Code, "error", err)
			s.replace(log, handle, failed)
			return failed
		}
		state = next
		log.Debugw("step complete", "stage", state.Stage())
		s.replace(log, handle, yt2ig.Share{Target: target, Loading: state})
	}
	log.Infow("card created")
	return yt2ig.Share{Target: target, Loading: state}
}

// Start runs CreateCard in a goroutine, delivering the result on the returned channel.
func (s *Service) Start(ctx context.Context, target yt2ig.YouTubeVideo) <-chan yt2ig.AppState {
	return async.Run(func() yt2ig.AppState {
		return s.CreateCard(ctx, target)
	})
}

func (s *Service) replace(log *zap.SugaredLogger, handle navigation.Handle, state yt2ig.AppState) {
	if !s.nav.ReplaceState(handle, state) {
		log.Debugw("entry no longer present, state dropped", "kind", state.Summary().Kind)
	}
}

func (s *Service) getInfo(ctx context.Context, state yt2ig.LoadingState) (yt2ig.LoadingState, error) {
	starting := mustBe[yt2ig.Starting](state)
	info, err := s.fetcher.GetVideoInfo(ctx, starting.Target)
	if err != nil {
		return nil, err
	}
	return yt2ig.LoadedInfo{Target: starting.Target, Info: *info}, nil
}

func (s *Service) getThumbnail(ctx context.Context, state yt2ig.LoadingState) (yt2ig.LoadingState, error) {
	loaded := mustBe[yt2ig.LoadedInfo](state)
	if err := s.images.EnsureLoaded(ctx, loaded.Info.ThumbnailURL); err != nil {
		return nil, err
	}
	return yt2ig.LoadedThumbnail{Target: loaded.Target, Info: loaded.Info}, nil
}

func (s *Service) createCard(ctx context.Context, state yt2ig.LoadingState) (yt2ig.LoadingState, error) {
	loaded := mustBe[yt2ig.LoadedThumbnail](state)
	card, err := s.generator.Generate(ctx, loaded.Info, s.images)
	if err != nil {
		return nil, err
	}
	return yt2ig.Created{Target: loaded.Target, Info: loaded.Info, Card: card}, nil
}

func mustBe[T yt2ig.LoadingState](state yt2ig.LoadingState) T {
	res, ok := state.(T)
	if !ok {
		var expected T
		panic(fmt.Sprintf("expected %T state, got %T", expected, state))
	}
	return res
}

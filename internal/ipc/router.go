package ipc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

var (
	// ErrFileExists is returned by Handler.SelectFile when the chosen name is
	// already in the repository. Its text is shown to the user as is.
	ErrFileExists = errors.New("File already exists in the application.")
	// ErrSelectCancelled is returned by Handler.SelectFile when the user
	// dismissed the file dialog.
	ErrSelectCancelled = errors.New("file selection cancelled")
)

// Handler serves the bridge channels. Implementations decide their own
// threading; the Router calls them from the connection goroutine.
type Handler interface {
	RequestImage(ctx context.Context, id string) (ImageData, error)
	Rescale(ctx context.Context, id string, scale int) error
	ListFiles(ctx context.Context) ([]FileEntry, error)
	LoadConfig(ctx context.Context, id string) (ConfigData, error)
	ToggleActive(ctx context.Context, id string, active bool) error
	SelectFile(ctx context.Context, path string) (FileEntry, error)
	DeleteFile(ctx context.Context, id string) error
	Status(ctx context.Context) (StatusData, error)
}

// Router decodes requests, dispatches them to a Handler and maps results to
// reply channels.
type Router struct {
	handler  Handler
	maxScale int
	logger   *slog.Logger
}

// NewRouter creates a router. maxScale bounds rescale-image.
func NewRouter(handler Handler, maxScale int, logger *slog.Logger) *Router {
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{handler: handler, maxScale: maxScale, logger: logger}
}

// ReplyChannel returns the reply channel for a request channel.
func ReplyChannel(ch Channel) Channel {
	switch ch {
	case ChannelRequestImage:
		return ChannelReceiveImage
	case ChannelRequestFiles:
		return ChannelReceiveFiles
	case ChannelRequestConfig:
		return ChannelReceiveConfig
	case ChannelSelectFile:
		return ChannelNewFileStored
	case ChannelDeleteFile:
		return ChannelFileDeleted
	case ChannelStatus:
		return ChannelReceiveStatus
	case ChannelRescaleImage, ChannelToggleActive:
		return ChannelAck
	default:
		return ChannelError
	}
}

// Dispatch handles one request and always returns a response.
func (r *Router) Dispatch(ctx context.Context, req *Request) *Response {
	reply := ReplyChannel(req.Channel)
	if req.Channel == ChannelSelectFile {
		reply = ChannelStoreFileError
	}

	msg, err := Decode(req, r.maxScale)
	if err != nil {
		r.logger.Debug("rejected request", "channel", req.Channel, "error", err)
		return NewErrorResponse(reply, err.Error())
	}

	resp, err := r.dispatch(ctx, msg)
	if err != nil {
		r.logger.Warn("request failed", "channel", req.Channel, "error", err)
		return NewErrorResponse(reply, err.Error())
	}
	return resp
}

func (r *Router) dispatch(ctx context.Context, msg Message) (*Response, error) {
	switch m := msg.(type) {
	case RequestImage:
		id := m.ID
		if id == "" {
			view, ok := ViewFrom(ctx)
			if !ok {
				return nil, fmt.Errorf("%w: id is required outside a display view", ErrInvalidPayload)
			}
			id = view
		}
		data, err := r.handler.RequestImage(ctx, id)
		if err != nil {
			return nil, err
		}
		return NewOKResponse(ChannelReceiveImage, data)

	case RescaleImage:
		if err := r.handler.Rescale(ctx, m.ID, m.Scale); err != nil {
			return nil, err
		}
		return NewOKResponse(ChannelAck, nil)

	case RequestFiles:
		files, err := r.handler.ListFiles(ctx)
		if err != nil {
			return nil, err
		}
		if files == nil {
			files = []FileEntry{}
		}
		return NewOKResponse(ChannelReceiveFiles, files)

	case RequestConfig:
		cfg, err := r.handler.LoadConfig(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		return NewOKResponse(ChannelReceiveConfig, cfg)

	case ToggleActive:
		if err := r.handler.ToggleActive(ctx, m.ID, m.Active); err != nil {
			return nil, err
		}
		return NewOKResponse(ChannelAck, nil)

	case SelectFile:
		entry, err := r.handler.SelectFile(ctx, m.Path)
		switch {
		case errors.Is(err, ErrSelectCancelled):
			return NewOKResponse(ChannelSelectCancelled, nil)
		case errors.Is(err, ErrFileExists):
			resp, mErr := NewOKResponse(ChannelStoreFileError, ErrFileExists.Error())
			if mErr != nil {
				return nil, mErr
			}
			resp.Status = StatusError
			resp.Error = ErrFileExists.Error()
			return resp, nil
		case err != nil:
			return nil, err
		}
		return NewOKResponse(ChannelNewFileStored, entry)

	case DeleteFile:
		if err := r.handler.DeleteFile(ctx, m.ID); err != nil {
			return nil, err
		}
		return NewOKResponse(ChannelFileDeleted, m.ID)

	case Status:
		status, err := r.handler.Status(ctx)
		if err != nil {
			return nil, err
		}
		return NewOKResponse(ChannelReceiveStatus, status)

	default:
		return nil, fmt.Errorf("unhandled channel: %s", msg.Channel())
	}
}

type viewKey struct{}

// WithView marks ctx as originating from the display view for id.
func WithView(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, viewKey{}, id)
}

// ViewFrom returns the display view id carried by ctx.
func ViewFrom(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(viewKey{}).(string)
	return id, ok && id != ""
}

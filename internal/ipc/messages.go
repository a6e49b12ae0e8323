package ipc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/1broseidon/animg/internal/identity"
	"github.com/1broseidon/animg/internal/sticker"
)

// ErrInvalidPayload is returned when a request payload fails validation.
var ErrInvalidPayload = errors.New("invalid payload")

// Message is a decoded, validated request. The concrete type identifies the
// channel.
type Message interface {
	Channel() Channel
}

type RequestImage struct{ ID string }
type RescaleImage struct {
	ID    string
	Scale int
}
type RequestFiles struct{}
type RequestConfig struct{ ID string }
type ToggleActive struct {
	ID     string
	Active bool
}
type SelectFile struct{ Path string }
type DeleteFile struct{ ID string }
type Status struct{}

func (RequestImage) Channel() Channel  { return ChannelRequestImage }
func (RescaleImage) Channel() Channel  { return ChannelRescaleImage }
func (RequestFiles) Channel() Channel  { return ChannelRequestFiles }
func (RequestConfig) Channel() Channel { return ChannelRequestConfig }
func (ToggleActive) Channel() Channel  { return ChannelToggleActive }
func (SelectFile) Channel() Channel    { return ChannelSelectFile }
func (DeleteFile) Channel() Channel    { return ChannelDeleteFile }
func (Status) Channel() Channel        { return ChannelStatus }

// Decode turns a raw request into its typed message. maxScale bounds
// rescale-image; values <= 0 use sticker.MaxScale.
func Decode(req *Request, maxScale int) (Message, error) {
	switch req.Channel {
	case ChannelRequestImage:
		var p IDPayload
		if err := unmarshalPayload(req, &p); err != nil {
			return nil, err
		}
		if p.ID != "" {
			if err := validateID(p.ID); err != nil {
				return nil, err
			}
		}
		return RequestImage{ID: p.ID}, nil

	case ChannelRescaleImage:
		var p RescalePayload
		if err := unmarshalPayload(req, &p); err != nil {
			return nil, err
		}
		if err := validateID(p.ID); err != nil {
			return nil, err
		}
		if err := sticker.ValidateScale(p.Scale, maxScale); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		return RescaleImage{ID: p.ID, Scale: p.Scale}, nil

	case ChannelRequestFiles:
		return RequestFiles{}, nil

	case ChannelRequestConfig:
		var p IDPayload
		if err := unmarshalPayload(req, &p); err != nil {
			return nil, err
		}
		if err := validateID(p.ID); err != nil {
			return nil, err
		}
		return RequestConfig{ID: p.ID}, nil

	case ChannelToggleActive:
		var p TogglePayload
		if err := unmarshalPayload(req, &p); err != nil {
			return nil, err
		}
		if err := validateID(p.ID); err != nil {
			return nil, err
		}
		if p.Active == nil {
			return nil, fmt.Errorf("%w: active is required", ErrInvalidPayload)
		}
		return ToggleActive{ID: p.ID, Active: *p.Active}, nil

	case ChannelSelectFile:
		var p SelectPayload
		if err := unmarshalPayload(req, &p); err != nil {
			return nil, err
		}
		return SelectFile{Path: p.Path}, nil

	case ChannelDeleteFile:
		var p IDPayload
		if err := unmarshalPayload(req, &p); err != nil {
			return nil, err
		}
		if err := validateID(p.ID); err != nil {
			return nil, err
		}
		return DeleteFile{ID: p.ID}, nil

	case ChannelStatus:
		return Status{}, nil

	default:
		return nil, fmt.Errorf("unknown channel: %s", req.Channel)
	}
}

// unmarshalPayload accepts an absent payload as the zero value.
func unmarshalPayload(req *Request, v interface{}) error {
	raw := bytes.TrimSpace(req.Payload)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidPayload, req.Channel, err)
	}
	return nil
}

func validateID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidPayload)
	}
	if !identity.Valid(id) {
		return fmt.Errorf("%w: malformed id %q", ErrInvalidPayload, id)
	}
	return nil
}

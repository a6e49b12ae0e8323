package ipc

import (
	"encoding/json"
	"fmt"

	"github.com/1broseidon/animg/internal/sticker"
)

// Channel names a request or reply on the bridge.
type Channel string

// Request channels.
const (
	ChannelRequestImage  Channel = "request-image"
	ChannelRescaleImage  Channel = "rescale-image"
	ChannelRequestFiles  Channel = "request-files"
	ChannelRequestConfig Channel = "request-config"
	ChannelToggleActive  Channel = "toggle-active"
	ChannelSelectFile    Channel = "select-file"
	ChannelDeleteFile    Channel = "delete-file"
	ChannelStatus        Channel = "status"
)

// Reply channels.
const (
	ChannelReceiveImage    Channel = "receive-image"
	ChannelReceiveFiles    Channel = "receive-files"
	ChannelReceiveConfig   Channel = "receive-config"
	ChannelNewFileStored   Channel = "new-file-stored"
	ChannelStoreFileError  Channel = "store-file-error"
	ChannelSelectCancelled Channel = "select-cancelled"
	ChannelFileDeleted     Channel = "file-deleted"
	ChannelReceiveStatus   Channel = "receive-status"
	ChannelAck             Channel = "ack"
	ChannelError           Channel = "error"
)

const (
	StatusOK    = "OK"
	StatusError = "ERROR"
)

// Request is one message from a view to the daemon.
type Request struct {
	Channel Channel         `json:"channel"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Response is the daemon's reply to a Request.
type Response struct {
	Status  string          `json:"status"` // "OK" or "ERROR"
	Channel Channel         `json:"channel,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// IDPayload carries a sticker id.
type IDPayload struct {
	ID string `json:"id,omitempty"`
}

// RescalePayload is the payload of rescale-image.
type RescalePayload struct {
	ID    string `json:"id"`
	Scale int    `json:"scale"`
}

// TogglePayload is the payload of toggle-active.
type TogglePayload struct {
	ID     string `json:"id"`
	Active *bool  `json:"active"`
}

// SelectPayload is the payload of select-file. An empty path opens the native
// file dialog.
type SelectPayload struct {
	Path string `json:"path,omitempty"`
}

// ImageData is the reply data of request-image.
type ImageData struct {
	Type     string `json:"type"`
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// FileEntry is one element of the receive-files reply.
type FileEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ConfigData is a stored config merged with its id.
type ConfigData struct {
	ID string `json:"id"`
	sticker.Config
}

// StatusData is the reply data of status.
type StatusData struct {
	FilesDir      string `json:"files_dir"`
	StoreDriver   string `json:"store_driver"`
	StorePath     string `json:"store_path"`
	FileCount     int    `json:"file_count"`
	ConfigCount   int    `json:"config_count"`
	OpenWindows   int    `json:"open_windows"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	DaemonRunning bool   `json:"daemon_running"`
}

// NewOKResponse creates a successful response with optional data
func NewOKResponse(channel Channel, data interface{}) (*Response, error) {
	var dataBytes json.RawMessage
	if data != nil {
		bytes, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal response data: %w", err)
		}
		dataBytes = bytes
	}

	return &Response{
		Status:  StatusOK,
		Channel: channel,
		Data:    dataBytes,
	}, nil
}

// NewErrorResponse creates an error response with a message
func NewErrorResponse(channel Channel, errMsg string) *Response {
	return &Response{
		Status:  StatusError,
		Channel: channel,
		Error:   errMsg,
	}
}

// ParseRequest parses a request from JSON bytes
func ParseRequest(data []byte) (*Request, error) {
	var req Request
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

// NewRequest builds a request with a marshalled payload.
func NewRequest(channel Channel, payload interface{}) (*Request, error) {
	req := &Request{Channel: channel}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s payload: %w", channel, err)
		}
		req.Payload = raw
	}
	return req, nil
}

// Marshal converts a response to JSON bytes
func (r *Response) Marshal() ([]byte, error) {
	return json.Marshal(r)
}

// DecodeData unmarshals the response data into v.
func (r *Response) DecodeData(v interface{}) error {
	if len(r.Data) == 0 {
		return fmt.Errorf("%s reply has no data", r.Channel)
	}
	if err := json.Unmarshal(r.Data, v); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", r.Channel, err)
	}
	return nil
}

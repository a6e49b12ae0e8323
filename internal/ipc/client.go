package ipc

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/1broseidon/animg/internal/runtimepath"
)

// ResponseError is a reply with status ERROR.
type ResponseError struct {
	Channel Channel
	Message string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("daemon error: %s", e.Message)
}

// Client handles IPC communication with the daemon
type Client struct {
	socketPath    string
	timeout       time.Duration
	selectTimeout time.Duration
}

// NewClient creates a new IPC client
func NewClient() *Client {
	socketPath, err := runtimepath.SocketPath()
	if err != nil {
		// Keep constructor non-failing; sendRequest surfaces connection errors.
		socketPath = ""
	}
	return NewClientAt(socketPath)
}

// NewClientAt creates a client for an explicit socket path.
func NewClientAt(socketPath string) *Client {
	return &Client{
		socketPath:    socketPath,
		timeout:       5 * time.Second,
		selectTimeout: 10 * time.Minute,
	}
}

// Send sends a request and waits for the raw response. An ERROR reply is
// returned together with a *ResponseError.
func (c *Client) Send(req *Request) (*Response, error) {
	timeout := c.timeout
	if req.Channel == ChannelSelectFile {
		// The daemon may be waiting on a native file dialog.
		timeout = c.selectTimeout
	}

	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon: %w (is the daemon running?)", err)
	}
	defer conn.Close()

	conn.SetDeadline(time.Now().Add(timeout))

	reqData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	reqData = append(reqData, '\n')
	if _, err := conn.Write(reqData); err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}

	reader := bufio.NewReader(conn)
	respData, err := reader.ReadBytes('\n')
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var resp Response
	if err := json.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if resp.Status == StatusError {
		return &resp, &ResponseError{Channel: resp.Channel, Message: resp.Error}
	}
	return &resp, nil
}

func (c *Client) call(channel Channel, payload interface{}) (*Response, error) {
	req, err := NewRequest(channel, payload)
	if err != nil {
		return nil, err
	}
	return c.Send(req)
}

// ListFiles sends request-files.
func (c *Client) ListFiles() ([]FileEntry, error) {
	resp, err := c.call(ChannelRequestFiles, nil)
	if err != nil {
		return nil, err
	}
	var files []FileEntry
	if err := resp.DecodeData(&files); err != nil {
		return nil, err
	}
	return files, nil
}

// LoadConfig sends request-config.
func (c *Client) LoadConfig(id string) (*ConfigData, error) {
	resp, err := c.call(ChannelRequestConfig, IDPayload{ID: id})
	if err != nil {
		return nil, err
	}
	var cfg ConfigData
	if err := resp.DecodeData(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// RequestImage sends request-image.
func (c *Client) RequestImage(id string) (*ImageData, error) {
	resp, err := c.call(ChannelRequestImage, IDPayload{ID: id})
	if err != nil {
		return nil, err
	}
	var img ImageData
	if err := resp.DecodeData(&img); err != nil {
		return nil, err
	}
	return &img, nil
}

// Rescale sends rescale-image.
func (c *Client) Rescale(id string, scale int) error {
	_, err := c.call(ChannelRescaleImage, RescalePayload{ID: id, Scale: scale})
	return err
}

// ToggleActive sends toggle-active.
func (c *Client) ToggleActive(id string, active bool) error {
	_, err := c.call(ChannelToggleActive, TogglePayload{ID: id, Active: &active})
	return err
}

// SelectFile sends select-file. An empty path asks the daemon to open its
// file dialog. It returns ErrSelectCancelled or ErrFileExists for those
// outcomes.
func (c *Client) SelectFile(path string) (*FileEntry, error) {
	resp, err := c.call(ChannelSelectFile, SelectPayload{Path: path})
	if err != nil {
		var rerr *ResponseError
		if errors.As(err, &rerr) && rerr.Channel == ChannelStoreFileError && rerr.Message == ErrFileExists.Error() {
			return nil, ErrFileExists
		}
		return nil, err
	}
	if resp.Channel == ChannelSelectCancelled {
		return nil, ErrSelectCancelled
	}
	var entry FileEntry
	if err := resp.DecodeData(&entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// DeleteFile sends delete-file.
func (c *Client) DeleteFile(id string) error {
	_, err := c.call(ChannelDeleteFile, IDPayload{ID: id})
	return err
}

// GetStatus retrieves daemon status
func (c *Client) GetStatus() (*StatusData, error) {
	resp, err := c.call(ChannelStatus, nil)
	if err != nil {
		return nil, err
	}
	var status StatusData
	if err := resp.DecodeData(&status); err != nil {
		return nil, err
	}
	return &status, nil
}

// Ping checks if the daemon is responding
func (c *Client) Ping() error {
	_, err := c.GetStatus()
	return err
}

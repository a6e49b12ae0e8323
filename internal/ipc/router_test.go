package ipc

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type fakeHandler struct {
	mu        sync.Mutex
	imageID   string
	rescaled  map[string]int
	toggled   map[string]bool
	deleted   []string
	selectErr error
	files     []FileEntry
	configErr error
}

func newFakeHandler() *fakeHandler {
	return &fakeHandler{rescaled: map[string]int{}, toggled: map[string]bool{}}
}

func (f *fakeHandler) RequestImage(ctx context.Context, id string) (ImageData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.imageID = id
	return ImageData{Type: "base64", Data: "data:image/png;base64,AAAA", MimeType: "image/png"}, nil
}

func (f *fakeHandler) Rescale(ctx context.Context, id string, scale int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rescaled[id] = scale
	return nil
}

func (f *fakeHandler) ListFiles(ctx context.Context) ([]FileEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files, nil
}

func (f *fakeHandler) LoadConfig(ctx context.Context, id string) (ConfigData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.configErr != nil {
		return ConfigData{}, f.configErr
	}
	var cfg ConfigData
	cfg.ID = id
	cfg.Name = "cat.png"
	return cfg, nil
}

func (f *fakeHandler) ToggleActive(ctx context.Context, id string, active bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.toggled[id] = active
	return nil
}

func (f *fakeHandler) SelectFile(ctx context.Context, path string) (FileEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selectErr != nil {
		return FileEntry{}, f.selectErr
	}
	return FileEntry{ID: testID, Name: "cat.png"}, nil
}

func (f *fakeHandler) DeleteFile(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeHandler) Status(ctx context.Context) (StatusData, error) {
	return StatusData{DaemonRunning: true}, nil
}

func (f *fakeHandler) setSelectErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selectErr = err
}

func dispatch(t *testing.T, r *Router, ctx context.Context, channel Channel, payload interface{}) *Response {
	t.Helper()
	req, err := NewRequest(channel, payload)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	return r.Dispatch(ctx, req)
}

func TestRouter_ReplyChannels(t *testing.T) {
	h := newFakeHandler()
	r := NewRouter(h, 1000, nil)
	ctx := context.Background()

	tests := []struct {
		channel Channel
		payload interface{}
		want    Channel
	}{
		{ChannelRequestImage, IDPayload{ID: testID}, ChannelReceiveImage},
		{ChannelRescaleImage, RescalePayload{ID: testID, Scale: 50}, ChannelAck},
		{ChannelRequestFiles, nil, ChannelReceiveFiles},
		{ChannelRequestConfig, IDPayload{ID: testID}, ChannelReceiveConfig},
		{ChannelSelectFile, SelectPayload{Path: "/tmp/cat.png"}, ChannelNewFileStored},
		{ChannelDeleteFile, IDPayload{ID: testID}, ChannelFileDeleted},
		{ChannelStatus, nil, ChannelReceiveStatus},
	}
	for _, tt := range tests {
		resp := dispatch(t, r, ctx, tt.channel, tt.payload)
		if resp.Status != StatusOK {
			t.Fatalf("%s: status = %s (%s)", tt.channel, resp.Status, resp.Error)
		}
		if resp.Channel != tt.want {
			t.Fatalf("%s: reply channel = %s, want %s", tt.channel, resp.Channel, tt.want)
		}
	}

	if h.rescaled[testID] != 50 {
		t.Fatalf("rescale not forwarded: %v", h.rescaled)
	}
	if len(h.deleted) != 1 || h.deleted[0] != testID {
		t.Fatalf("delete not forwarded: %v", h.deleted)
	}
}

func TestRouter_EmptyFileListIsArray(t *testing.T) {
	r := NewRouter(newFakeHandler(), 1000, nil)
	resp := dispatch(t, r, context.Background(), ChannelRequestFiles, nil)
	if string(resp.Data) != "[]" {
		t.Fatalf("data = %s, want []", resp.Data)
	}
}

func TestRouter_DeleteRepliesWithID(t *testing.T) {
	r := NewRouter(newFakeHandler(), 1000, nil)
	resp := dispatch(t, r, context.Background(), ChannelDeleteFile, IDPayload{ID: testID})
	var id string
	if err := json.Unmarshal(resp.Data, &id); err != nil || id != testID {
		t.Fatalf("file-deleted data = %s (%v)", resp.Data, err)
	}
}

func TestRouter_RequestImageUsesViewContext(t *testing.T) {
	h := newFakeHandler()
	r := NewRouter(h, 1000, nil)

	resp := dispatch(t, r, context.Background(), ChannelRequestImage, nil)
	if resp.Status != StatusError {
		t.Fatal("request-image without id outside a view should fail")
	}

	resp = dispatch(t, r, WithView(context.Background(), testID), ChannelRequestImage, nil)
	if resp.Status != StatusOK {
		t.Fatalf("status = %s (%s)", resp.Status, resp.Error)
	}
	if h.imageID != testID {
		t.Fatalf("handler got id %q, want view id", h.imageID)
	}
}

func TestRouter_SelectFileOutcomes(t *testing.T) {
	h := newFakeHandler()
	r := NewRouter(h, 1000, nil)
	ctx := context.Background()

	h.selectErr = ErrFileExists
	resp := dispatch(t, r, ctx, ChannelSelectFile, nil)
	if resp.Status != StatusError || resp.Channel != ChannelStoreFileError {
		t.Fatalf("duplicate: got %s/%s", resp.Status, resp.Channel)
	}
	var msg string
	if err := json.Unmarshal(resp.Data, &msg); err != nil || msg != "File already exists in the application." {
		t.Fatalf("duplicate message = %q (%v)", msg, err)
	}

	h.selectErr = ErrSelectCancelled
	resp = dispatch(t, r, ctx, ChannelSelectFile, nil)
	if resp.Status != StatusOK || resp.Channel != ChannelSelectCancelled {
		t.Fatalf("cancelled: got %s/%s", resp.Status, resp.Channel)
	}

	h.selectErr = errors.New("disk full")
	resp = dispatch(t, r, ctx, ChannelSelectFile, nil)
	if resp.Status != StatusError || resp.Channel != ChannelStoreFileError {
		t.Fatalf("failure: got %s/%s", resp.Status, resp.Channel)
	}
}

func TestRouter_HandlerErrorBecomesErrorReply(t *testing.T) {
	h := newFakeHandler()
	h.configErr = errors.New("not found")
	r := NewRouter(h, 1000, nil)

	resp := dispatch(t, r, context.Background(), ChannelRequestConfig, IDPayload{ID: testID})
	if resp.Status != StatusError || resp.Channel != ChannelReceiveConfig || resp.Error != "not found" {
		t.Fatalf("got %+v", resp)
	}
}

func TestRouter_InvalidPayloadNeverReachesHandler(t *testing.T) {
	h := newFakeHandler()
	r := NewRouter(h, 100, nil)

	resp := dispatch(t, r, context.Background(), ChannelRescaleImage, RescalePayload{ID: testID, Scale: 150})
	if resp.Status != StatusError {
		t.Fatal("scale above max should be rejected")
	}
	if len(h.rescaled) != 0 {
		t.Fatalf("handler called with invalid payload: %v", h.rescaled)
	}
}

package ipc

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

var testID = strings.Repeat("ab", 32)

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		channel Channel
		payload string
		want    Message
		wantErr bool
	}{
		{"request-image with id", ChannelRequestImage, `{"id":"` + testID + `"}`, RequestImage{ID: testID}, false},
		{"request-image without id", ChannelRequestImage, ``, RequestImage{}, false},
		{"request-image bad id", ChannelRequestImage, `{"id":"xyz"}`, nil, true},
		{"rescale", ChannelRescaleImage, `{"id":"` + testID + `","scale":50}`, RescaleImage{ID: testID, Scale: 50}, false},
		{"rescale zero", ChannelRescaleImage, `{"id":"` + testID + `","scale":0}`, nil, true},
		{"rescale too large", ChannelRescaleImage, `{"id":"` + testID + `","scale":5000}`, nil, true},
		{"rescale missing id", ChannelRescaleImage, `{"scale":50}`, nil, true},
		{"request-files", ChannelRequestFiles, ``, RequestFiles{}, false},
		{"request-config", ChannelRequestConfig, `{"id":"` + testID + `"}`, RequestConfig{ID: testID}, false},
		{"request-config missing id", ChannelRequestConfig, `null`, nil, true},
		{"toggle on", ChannelToggleActive, `{"id":"` + testID + `","active":true}`, ToggleActive{ID: testID, Active: true}, false},
		{"toggle off", ChannelToggleActive, `{"id":"` + testID + `","active":false}`, ToggleActive{ID: testID, Active: false}, false},
		{"toggle missing active", ChannelToggleActive, `{"id":"` + testID + `"}`, nil, true},
		{"select-file dialog", ChannelSelectFile, ``, SelectFile{}, false},
		{"select-file path", ChannelSelectFile, `{"path":"/tmp/cat.png"}`, SelectFile{Path: "/tmp/cat.png"}, false},
		{"delete-file", ChannelDeleteFile, `{"id":"` + testID + `"}`, DeleteFile{ID: testID}, false},
		{"delete-file uppercase id", ChannelDeleteFile, `{"id":"` + strings.ToUpper(testID) + `"}`, nil, true},
		{"status", ChannelStatus, ``, Status{}, false},
		{"malformed json", ChannelRequestConfig, `{"id":`, nil, true},
		{"unknown channel", Channel("reload"), ``, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &Request{Channel: tt.channel}
			if tt.payload != "" {
				req.Payload = json.RawMessage(tt.payload)
			}
			got, err := Decode(req, 1000)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode() = %#v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("Decode() = %#v, want %#v", got, tt.want)
			}
			if got.Channel() != tt.channel {
				t.Fatalf("Channel() = %s, want %s", got.Channel(), tt.channel)
			}
		})
	}
}

func TestDecode_InvalidPayloadSentinel(t *testing.T) {
	_, err := Decode(&Request{Channel: ChannelDeleteFile, Payload: json.RawMessage(`{"id":"nope"}`)}, 0)
	if !errors.Is(err, ErrInvalidPayload) {
		t.Fatalf("error = %v, want ErrInvalidPayload", err)
	}
}

func TestDecode_MaxScale(t *testing.T) {
	req := &Request{Channel: ChannelRescaleImage, Payload: json.RawMessage(`{"id":"` + testID + `","scale":300}`)}
	if _, err := Decode(req, 200); err == nil {
		t.Fatal("expected scale above configured max to be rejected")
	}
	if _, err := Decode(req, 0); err != nil {
		t.Fatalf("default max should accept 300: %v", err)
	}
}

func TestConfigDataMarshalsFlat(t *testing.T) {
	var cfg ConfigData
	cfg.ID = testID
	cfg.Name = "cat.png"
	cfg.Active = true
	cfg.Scale = 100

	data, err := json.Marshal(cfg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "name", "active", "scale"} {
		if _, ok := m[key]; !ok {
			t.Fatalf("missing key %q in %s", key, data)
		}
	}
	if _, ok := m["x"]; ok {
		t.Fatalf("unset position should be omitted: %s", data)
	}
}

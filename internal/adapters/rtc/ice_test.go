package rtc

import (
	"encoding/json"
	"testing"

	"github.com/dkeye/Huddle/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestICEServers(t *testing.T) {
	tests := []struct {
		name    string
		in      []config.ICEServer
		want    int
		wantErr bool
	}{
		{name: "empty falls back to default", in: nil, want: 1},
		{name: "stun", in: []config.ICEServer{{URLs: []string{"stun:stun.example.com:3478"}}}, want: 1},
		{
			name: "turn with credentials",
			in: []config.ICEServer{
				{URLs: []string{"stun:stun.example.com"}},
				{URLs: []string{"turn:turn.example.com:3478?transport=udp"}, Username: "u", Credential: "p"},
			},
			want: 2,
		},
		{name: "turn without credentials", in: []config.ICEServer{{URLs: []string{"turn:turn.example.com"}}}, wantErr: true},
		{name: "bad scheme", in: []config.ICEServer{{URLs: []string{"http://example.com"}}}, wantErr: true},
		{name: "no urls", in: []config.ICEServer{{}}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ICEServers(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestClientConfig_JSON(t *testing.T) {
	servers, err := ICEServers([]config.ICEServer{{URLs: []string{"stun:stun.example.com"}}})
	require.NoError(t, err)

	raw, err := json.Marshal(ClientConfig{ICEServers: servers})
	require.NoError(t, err)

	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	require.NoError(t, json.Unmarshal(raw, &body))
	require.Len(t, body.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.example.com"}, body.ICEServers[0].URLs)
}

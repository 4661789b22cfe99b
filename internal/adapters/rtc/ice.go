// Package rtc builds the ICE configuration handed to browsers for their
// peer-to-peer calls. The hub only relays signaling; media never touches it.
package rtc

import (
	"fmt"

	"github.com/dkeye/Huddle/internal/config"
	"github.com/pion/stun/v3"
	"github.com/pion/webrtc/v4"
)

// ClientConfig is the body of GET /api/rtc/config. Its shape matches what
// RTCPeerConnection expects.
type ClientConfig struct {
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{
		{URLs: []string{"stun:stun.l.google.com:19302"}},
	}
}

// ICEServers converts and validates configured servers. Every URL must parse
// as a stun/stuns/turn/turns URI, and turn servers need credentials.
func ICEServers(in []config.ICEServer) ([]webrtc.ICEServer, error) {
	if len(in) == 0 {
		return DefaultICEServers(), nil
	}
	out := make([]webrtc.ICEServer, 0, len(in))
	for i, s := range in {
		if len(s.URLs) == 0 {
			return nil, fmt.Errorf("rtc: ice server %d has no urls", i)
		}
		for _, raw := range s.URLs {
			uri, err := stun.ParseURI(raw)
			if err != nil {
				return nil, fmt.Errorf("rtc: ice server %d: %q: %w", i, raw, err)
			}
			if (uri.Scheme == stun.SchemeTypeTURN || uri.Scheme == stun.SchemeTypeTURNS) && (s.Username == "" || s.Credential == "") {
				return nil, fmt.Errorf("rtc: ice server %d: %q needs username and credential", i, raw)
			}
		}
		srv := webrtc.ICEServer{URLs: s.URLs, Username: s.Username}
		if s.Credential != "" {
			srv.Credential = s.Credential
			srv.CredentialType = webrtc.ICECredentialTypePassword
		}
		out = append(out, srv)
	}
	return out, nil
}

package app

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/form3tech-oss/jwt-go"
)

// Voice token actions.
const (
	VoiceActionLogin = "login"
	VoiceActionJoin  = "join"
)

var ErrVoiceNotConfigured = errors.New("voice service is not configured")

// VoiceService signs access tokens for the per-match voice channel.
type VoiceService struct {
	secret string
	issuer string
	domain string
	ttl    time.Duration
	now    func() time.Time
}

// NewVoiceService constructs a VoiceService. A non-positive ttl defaults to 90 seconds.
func NewVoiceService(secret, issuer, domain string, ttl time.Duration) *VoiceService {
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &VoiceService{secret: secret, issuer: issuer, domain: domain, ttl: ttl, now: time.Now}
}

// Token signs a login token for the player, or a join token for the match's channel.
func (s *VoiceService) Token(playerID, action, matchID string) (string, error) {
	if s == nil || s.secret == "" || s.issuer == "" || s.domain == "" {
		return "", ErrVoiceNotConfigured
	}
	if playerID == "" {
		return "", fmt.Errorf("player id is required")
	}

	from := s.userURI(playerID)
	var to string
	switch action {
	case VoiceActionLogin:
		to = from
	case VoiceActionJoin:
		if matchID == "" {
			return "", fmt.Errorf("match id is required for join tokens")
		}
		to = s.channelURI(ChannelName(matchID))
	default:
		return "", fmt.Errorf("unsupported voice action: %s", action)
	}

	now := s.now()
	claims := jwt.MapClaims{
		"iss": s.issuer,
		"sub": playerID,
		"exp": now.Add(s.ttl).Unix(),
		"vxa": action,
		"vxi": fmt.Sprintf("%d-%d", now.UnixNano(), rand.Int63()),
		"f":   from,
		"t":   to,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.secret))
}

// ChannelName derives the voice channel for a match. The runtime node suffix
// of the match id is dropped so every node maps to the same channel.
func ChannelName(matchID string) string {
	if i := strings.IndexByte(matchID, '.'); i >= 0 {
		matchID = matchID[:i]
	}
	return "ttt-" + matchID
}

func (s *VoiceService) userURI(playerID string) string {
	return "sip:." + s.issuer + "." + playerID + ".@" + s.domain
}

func (s *VoiceService) channelURI(channel string) string {
	return "sip:confctl-g-" + channel + "@" + s.domain
}

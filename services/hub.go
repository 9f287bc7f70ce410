package services

import (
	"bytes"
	"context"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// HubClient performs the startup handshake with the external trust hub:
// it requests a service certificate over HTTP, then opens an
// authenticated websocket session that yields the RSA public key used
// to verify inbound rating tokens.
type HubClient struct {
	certificateURL string
	websocketURL   string
	httpClient     *http.Client
}

// IssuedCertificate is the credential bundle the hub returns for a
// certificate request.
type IssuedCertificate struct {
	Certificate string `json:"certificate"`
	PrivateKey  string `json:"privateKey"`
	CAPublicKey string `json:"caPublicKey"`
	RoomID      string `json:"roomId"`
}

type hubMessage struct {
	Type         string `json:"type"`
	Nonce        string `json:"nonce,omitempty"`
	Certificate  string `json:"certificate,omitempty"`
	RoomID       string `json:"roomId,omitempty"`
	ClientPubKey string `json:"clientPubKey,omitempty"`
	Error        string `json:"error,omitempty"`
}

func NewHubClient(certificateURL, websocketURL string) *HubClient {
	return &HubClient{
		certificateURL: certificateURL,
		websocketURL:   websocketURL,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

// RequestCertificate asks the hub to issue a certificate for this service.
func (h *HubClient) RequestCertificate(ctx context.Context) (*IssuedCertificate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.certificateURL, bytes.NewReader([]byte("{}")))
	if err != nil {
		return nil, fmt.Errorf("failed to build certificate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("certificate request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("hub returned status %d for certificate request", resp.StatusCode)
	}

	var issued IssuedCertificate
	if err := json.NewDecoder(resp.Body).Decode(&issued); err != nil {
		return nil, fmt.Errorf("failed to decode issued certificate: %w", err)
	}
	if issued.Certificate == "" {
		return nil, fmt.Errorf("hub issued an empty certificate")
	}
	return &issued, nil
}

// FetchVerificationKey runs the authenticated websocket session against
// the hub and returns the peer verification key it announces.
func (h *HubClient) FetchVerificationKey(ctx context.Context, issued *IssuedCertificate) (*rsa.PublicKey, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, h.websocketURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial hub: %w", err)
	}
	defer conn.Close()

	auth := hubMessage{
		Type:        "authenticate",
		Nonce:       uuid.NewString(),
		Certificate: issued.Certificate,
		RoomID:      issued.RoomID,
	}
	if err := conn.WriteJSON(auth); err != nil {
		return nil, fmt.Errorf("failed to send authenticate message: %w", err)
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetReadDeadline(deadline)
	}
	for {
		var msg hubMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return nil, fmt.Errorf("hub session closed before key exchange: %w", err)
		}
		switch msg.Type {
		case "clientKey":
			key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(msg.ClientPubKey))
			if err != nil {
				return nil, fmt.Errorf("hub sent an unparseable key: %w", err)
			}
			return key, nil
		case "error":
			return nil, fmt.Errorf("hub rejected handshake: %s", msg.Error)
		default:
			// hub status chatter, keep reading
		}
	}
}

// Bootstrap runs the full handshake and installs the resulting key into
// the verifier. Submissions stay rejected until this completes.
func (h *HubClient) Bootstrap(ctx context.Context, verifier *Verifier) error {
	issued, err := h.RequestCertificate(ctx)
	if err != nil {
		return err
	}
	key, err := h.FetchVerificationKey(ctx, issued)
	if err != nil {
		return err
	}
	verifier.InstallKey(key)
	log.Println("Hub handshake complete, verification key installed")
	return nil
}

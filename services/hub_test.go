package services

import (
	"context"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func publicKeyPEM(t *testing.T, key *rsa.PublicKey) string {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		t.Fatalf("Failed to marshal public key: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der}))
}

func newCertificateServer(t *testing.T, issued IssuedCertificate) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		json.NewEncoder(w).Encode(issued)
	}))
}

func newHubServer(t *testing.T, keyPEM string, reject bool) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		var msg hubMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Errorf("Failed to read authenticate message: %v", err)
			return
		}
		if msg.Type != "authenticate" || msg.Certificate == "" || msg.Nonce == "" {
			conn.WriteJSON(hubMessage{Type: "error", Error: "malformed authenticate message"})
			return
		}
		if reject {
			conn.WriteJSON(hubMessage{Type: "error", Error: "certificate not trusted"})
			return
		}
		// status chatter the client is expected to skip over
		conn.WriteJSON(hubMessage{Type: "status"})
		conn.WriteJSON(hubMessage{Type: "clientKey", ClientPubKey: keyPEM})
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestBootstrapInstallsVerificationKey(t *testing.T) {
	key := generateKey(t)
	issued := IssuedCertificate{
		Certificate: "cert-pem",
		PrivateKey:  "key-pem",
		CAPublicKey: "ca-pem",
		RoomID:      "room-1",
	}

	certServer := newCertificateServer(t, issued)
	defer certServer.Close()
	hubServer := newHubServer(t, publicKeyPEM(t, &key.PublicKey), false)
	defer hubServer.Close()

	client := NewHubClient(certServer.URL, wsURL(hubServer))
	verifier := NewVerifier()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Bootstrap(ctx, verifier); err != nil {
		t.Fatalf("Bootstrap failed: %v", err)
	}
	if !verifier.Ready() {
		t.Fatal("Verifier not ready after bootstrap")
	}

	// a token signed with the matching private key now verifies
	token := signedToken(t, key, &RatingClaims{ClientID: "alice", TargetClientID: "bob", RoomID: "room-1", Emoji: "🌕"})
	claims, err := verifier.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed after bootstrap: %v", err)
	}
	if claims.ClientID != "alice" {
		t.Errorf("Unexpected claims after bootstrap: %+v", claims)
	}
}

func TestBootstrapFailsWhenHubRejects(t *testing.T) {
	key := generateKey(t)
	certServer := newCertificateServer(t, IssuedCertificate{Certificate: "cert-pem", RoomID: "room-1"})
	defer certServer.Close()
	hubServer := newHubServer(t, publicKeyPEM(t, &key.PublicKey), true)
	defer hubServer.Close()

	client := NewHubClient(certServer.URL, wsURL(hubServer))
	verifier := NewVerifier()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Bootstrap(ctx, verifier); err == nil {
		t.Fatal("Expected bootstrap to fail when the hub rejects the certificate")
	}
	if verifier.Ready() {
		t.Error("Verifier must stay closed after a rejected handshake")
	}
}

func TestRequestCertificateRejectsEmptyBundle(t *testing.T) {
	certServer := newCertificateServer(t, IssuedCertificate{})
	defer certServer.Close()

	client := NewHubClient(certServer.URL, "ws://unused")
	if _, err := client.RequestCertificate(context.Background()); err == nil {
		t.Fatal("Expected error for an empty certificate bundle")
	}
}

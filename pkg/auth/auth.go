package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"fleetd/pkg/models"
)

// TokenTypeNodeAgent is the fixed type tag embedded in every node token. It
// distinguishes node credentials from any other token class this service
// might issue in the future.
const TokenTypeNodeAgent = "node_agent"

// DefaultTokenTTL is the token lifetime used when no TTL is configured.
const DefaultTokenTTL = 24 * time.Hour

// JWTManager issues and verifies signed node identity tokens. It keeps no
// state beyond the signing key: every token is self-contained and can be
// verified by any holder of the key. Rotating the key invalidates all
// previously issued tokens.
type JWTManager struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTManager creates a token manager with the given signing key and TTL.
// A non-positive ttl falls back to DefaultTokenTTL.
func NewJWTManager(secretKey string, ttl time.Duration) *JWTManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &JWTManager{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}

// IssueNodeToken produces a signed, time-limited token bound to one node.
func (j *JWTManager) IssueNodeToken(nodeID, nodeName string) (string, error) {
	if j.secretKey == "" {
		return "", fmt.Errorf("JWT secret key is empty")
	}

	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"node_id":   nodeID,
		"node_name": nodeName,
		"iat":       now.Unix(),
		"exp":       now.Add(j.tokenTTL).Unix(),
		"typ":       TokenTypeNodeAgent,
	})

	return token.SignedString([]byte(j.secretKey))
}

// VerifyNodeToken checks the signature, expiry, and type tag of a node token
// and returns the bound claims. Any failure maps to models.ErrInvalidToken;
// callers never see the underlying jwt error class.
func (j *JWTManager) VerifyNodeToken(tokenString string) (*models.NodeClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(j.secretKey), nil
	})

	if err != nil || !token.Valid {
		return nil, models.ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, models.ErrInvalidToken
	}

	typ, ok := claims["typ"].(string)
	if !ok || typ != TokenTypeNodeAgent {
		return nil, models.ErrInvalidToken
	}

	nodeID, ok := claims["node_id"].(string)
	if !ok || nodeID == "" {
		return nil, models.ErrInvalidToken
	}

	nodeName, ok := claims["node_name"].(string)
	if !ok {
		return nil, models.ErrInvalidToken
	}

	issuedAt, err := claims.GetIssuedAt()
	if err != nil || issuedAt == nil {
		return nil, models.ErrInvalidToken
	}

	expiresAt, err := claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		return nil, models.ErrInvalidToken
	}

	return &models.NodeClaims{
		NodeID:    nodeID,
		NodeName:  nodeName,
		IssuedAt:  issuedAt.Time,
		ExpiresAt: expiresAt.Time,
	}, nil
}

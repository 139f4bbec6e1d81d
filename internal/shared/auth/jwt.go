package auth

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenAccess    TokenType = "access"
	TokenRefresh   TokenType = "refresh"
	TokenAnalytics TokenType = "analytics"

	AnalyticsAudience = "analytics"
	issuer            = "fintrack"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
	ErrWrongTokenType = errors.New("wrong token type")
)

// Claims is the payload carried by every token this package issues.
type Claims struct {
	UserID int64     `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	Type   TokenType `json:"typ"`
	jwt.RegisteredClaims
}

type TTLConfig struct {
	Access    time.Duration
	Refresh   time.Duration
	Analytics time.Duration
}

// TokenPair is the set of tokens handed out on login and refresh.
type TokenPair struct {
	AccessToken    string
	RefreshToken   string
	AnalyticsToken string
	ExpiresIn      int64 // seconds until the access token expires
}

type JWT struct {
	secret []byte
	ttl    TTLConfig
	now    func() time.Time
}

func NewJWT(secret string, ttl TTLConfig) *JWT {
	if ttl.Access <= 0 {
		ttl.Access = 24 * time.Hour
	}
	if ttl.Refresh <= 0 {
		ttl.Refresh = 7 * 24 * time.Hour
	}
	if ttl.Analytics <= 0 {
		ttl.Analytics = 24 * time.Hour
	}
	return &JWT{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (j *JWT) AccessTTL() time.Duration {
	return j.ttl.Access
}

// IssuePair signs an access, refresh and analytics token for the user.
func (j *JWT) IssuePair(userID int64, email string) (*TokenPair, error) {
	access, err := j.Generate(userID, email, TokenAccess)
	if err != nil {
		return nil, err
	}
	refresh, err := j.Generate(userID, email, TokenRefresh)
	if err != nil {
		return nil, err
	}
	analytics, err := j.Generate(userID, email, TokenAnalytics)
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:    access,
		RefreshToken:   refresh,
		AnalyticsToken: analytics,
		ExpiresIn:      int64(j.ttl.Access.Seconds()),
	}, nil
}

func (j *JWT) Generate(userID int64, email string, typ TokenType) (string, error) {
	now := j.now()

	var ttl time.Duration
	var audience jwt.ClaimStrings
	switch typ {
	case TokenAccess:
		ttl = j.ttl.Access
	case TokenRefresh:
		ttl = j.ttl.Refresh
	case TokenAnalytics:
		ttl = j.ttl.Analytics
		audience = jwt.ClaimStrings{AnalyticsAudience}
	default:
		return "", fmt.Errorf("unknown token type %q", typ)
	}

	claims := Claims{
		UserID: userID,
		Email:  email,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    issuer,
			Subject:   strconv.FormatInt(userID, 10),
			Audience:  audience,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Validate parses the token, checks signature and expiry, and ensures it was
// issued as the expected type.
func (j *JWT) Validate(tokenString string, expected TokenType) (*Claims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(j.now),
	}
	if expected == TokenAnalytics {
		opts = append(opts, jwt.WithAudience(AnalyticsAudience))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if claims.Type != expected {
		return nil, ErrWrongTokenType
	}

	return claims, nil
}

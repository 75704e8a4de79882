package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pageza/recipesnap/backend/internal/logging"
	"github.com/pageza/recipesnap/backend/internal/types"
)

// ErrInvalidToken is returned for malformed, expired or forged session tokens
var ErrInvalidToken = errors.New("invalid session token")

const tokenIssuer = "recipesnap"

const finalSaveTimeout = 5 * time.Second

// SessionService owns the per-user state behind the upload page
type SessionService struct {
	store     SessionStore
	suggester Suggester
	jwtSecret []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewSessionService creates a new SessionService instance. An empty secret
// gets a random one, which invalidates tokens on restart.
func NewSessionService(store SessionStore, suggester Suggester, jwtSecret string, ttl time.Duration) *SessionService {
	secret := []byte(jwtSecret)
	if len(secret) == 0 {
		slog.Warn("JWT_SECRET not set, using an ephemeral session signing key")
		secret = make([]byte, 32)
		_, _ = rand.Read(secret)
	}

	return &SessionService{
		store:     store,
		suggester: suggester,
		jwtSecret: secret,
		ttl:       ttl,
		now:       time.Now,
	}
}

// Create starts a new session and returns its state and bearer token
func (s *SessionService) Create(ctx context.Context) (*types.SessionState, string, error) {
	now := s.now().UTC()
	state := &types.SessionState{
		ID:        uuid.New().String(),
		Recipes:   []types.Recipe{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Save(ctx, state, s.ttl); err != nil {
		return nil, "", err
	}

	token, err := s.generateToken(state.ID, now)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return state, token, nil
}

// Get returns the current session state
func (s *SessionService) Get(ctx context.Context, id string) (*types.SessionState, error) {
	return s.store.Load(ctx, id)
}

// SetPhoto replaces the selected photo. Previous suggestions stay until the next submit.
func (s *SessionService) SetPhoto(ctx context.Context, id string, photo *types.Photo) (*types.SessionState, error) {
	return s.update(ctx, id, func(state *types.SessionState) {
		state.Photo = DataURI(photo)
		state.Notice = nil
	})
}

// SetPreferences replaces all four preference flags
func (s *SessionService) SetPreferences(ctx context.Context, id string, prefs types.Preferences) (*types.SessionState, error) {
	return s.update(ctx, id, func(state *types.SessionState) {
		state.Preferences = prefs
	})
}

// TogglePreference flips a single preference flag
func (s *SessionService) TogglePreference(ctx context.Context, id string, flag types.DietaryFlag) (*types.SessionState, error) {
	return s.update(ctx, id, func(state *types.SessionState) {
		state.Preferences = state.Preferences.Toggle(flag)
	})
}

// Reset clears photo, preferences, recipes and notice but keeps the session
func (s *SessionService) Reset(ctx context.Context, id string) (*types.SessionState, error) {
	return s.update(ctx, id, func(state *types.SessionState) {
		state.Photo = ""
		state.Preferences = types.Preferences{}
		state.Recipes = []types.Recipe{}
		state.Loading = false
		state.Notice = nil
	})
}

// Submit asks for suggestions for the selected photo. The returned state is
// always the saved one; the error tells the caller which notice was set.
func (s *SessionService) Submit(ctx context.Context, id string) (*types.SessionState, error) {
	state, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}

	if state.Photo == "" {
		notice := types.NoticeNoPhoto
		state.Notice = &notice
		return state, s.finish(ctx, state, ErrNoPhoto)
	}

	photo, err := ParseDataURI(state.Photo)
	if err != nil {
		notice := types.NoticeNoPhoto
		state.Notice = &notice
		return state, s.finish(ctx, state, fmt.Errorf("%w: %w", ErrNoPhoto, err))
	}

	state.Loading = true
	state.Notice = nil
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}

	result, suggestErr := s.suggester.Suggest(ctx, SuggestInput{
		SessionID:   state.ID,
		Photo:       photo,
		Preferences: state.Preferences,
	})
	state.Loading = false

	switch {
	case suggestErr == nil:
		state.Recipes = result.Recipes
	case errors.Is(suggestErr, ErrNoRecipes):
		notice := types.NoticeNoRecipes
		state.Recipes = []types.Recipe{}
		state.Notice = &notice
	default:
		logging.FromContext(ctx).Warn("suggestion request failed", "session_id", id, "error", suggestErr)
		notice := types.NoticeSuggestionFailed
		state.Recipes = []types.Recipe{}
		state.Notice = &notice
	}

	return state, s.finish(ctx, state, suggestErr)
}

// ValidateToken checks a bearer token and returns the session id it was issued for
func (s *SessionService) ValidateToken(tokenString string) (string, error) {
	claims := &types.SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	if !token.Valid || claims.SessionID == "" {
		return "", ErrInvalidToken
	}
	return claims.SessionID, nil
}

func (s *SessionService) generateToken(sessionID string, now time.Time) (string, error) {
	claims := types.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		SessionID: sessionID,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

func (s *SessionService) update(ctx context.Context, id string, mutate func(*types.SessionState)) (*types.SessionState, error) {
	state, err := s.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	mutate(state)
	if err := s.save(ctx, state); err != nil {
		return nil, err
	}
	return state, nil
}

func (s *SessionService) save(ctx context.Context, state *types.SessionState) error {
	state.UpdatedAt = s.now().UTC()
	return s.store.Save(ctx, state, s.ttl)
}

// finish saves the final state and passes through the outcome of the request.
// The save outlives a cancelled request so the session never stays loading.
func (s *SessionService) finish(ctx context.Context, state *types.SessionState, outcome error) error {
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalSaveTimeout)
	defer cancel()
	if err := s.save(saveCtx, state); err != nil {
		return err
	}
	return outcome
}

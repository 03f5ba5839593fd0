package services

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/wenlng/go-captcha/v2/rotate"
	xdraw "golang.org/x/image/draw"
)

// CaptchaService guards the sign-up, sign-in and password reset forms with a
// rotate challenge: the client rotates the thumb image until it lines up with
// the master image and submits the angle together with the challenge id.
type CaptchaService interface {
	GenerateRotate(ctx context.Context) (*RotateChallenge, error)
	// VerifyRotate consumes the challenge whether or not the angle matches
	VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool
}

type RotateChallenge struct {
	ID                string `json:"id"`
	MasterImageBase64 string `json:"master_image"`
	ThumbImageBase64  string `json:"thumb_image"`
	ExpiresIn         int    `json:"expires_in"`
}

type captchaServiceImpl struct {
	rotator rotate.Captcha
	store   challengeStore
	ttl     time.Duration
	padding int // tolerance in degrees
}

// NewCaptchaServiceRotate constructs a CaptchaService using rotate mode.
// Challenges are kept in redis when rc is non-nil, in memory otherwise.
func NewCaptchaServiceRotate(ttl time.Duration, padding int, imgSizePx int, rc *redis.Client, redisPrefix string) (CaptchaService, error) {
	if imgSizePx <= 0 {
		imgSizePx = 220
	}
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}

	builder := rotate.NewBuilder(
		rotate.WithImageSquareSize(imgSizePx),
	)
	builder.SetResources(
		rotate.WithImages(generateRotateBackgrounds(3, imgSizePx)),
	)

	var store challengeStore
	if rc != nil {
		store = &redisChallengeStore{rc: rc, prefix: redisPrefix + ":captcha:"}
	} else {
		store = newMemoryChallengeStore()
	}

	return &captchaServiceImpl{
		rotator: builder.Make(),
		store:   store,
		ttl:     ttl,
		padding: padding,
	}, nil
}

func (s *captchaServiceImpl) GenerateRotate(ctx context.Context) (*RotateChallenge, error) {
	captData, err := s.rotator.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate captcha: %w", err)
	}

	block := captData.GetData()
	if block == nil {
		return nil, errors.New("captcha generator returned no block data")
	}

	masterB64, err := captData.GetMasterImage().ToBase64()
	if err != nil {
		return nil, err
	}
	thumbB64, err := captData.GetThumbImage().ToBase64()
	if err != nil {
		return nil, err
	}

	challengeID := uuid.New().String()
	if err := s.store.Put(ctx, challengeID, block.Angle, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store captcha challenge: %w", err)
	}

	return &RotateChallenge{
		ID:                challengeID,
		MasterImageBase64: masterB64,
		ThumbImageBase64:  thumbB64,
		ExpiresIn:         int(s.ttl.Seconds()),
	}, nil
}

func (s *captchaServiceImpl) VerifyRotate(ctx context.Context, challengeID string, userAngle float64) bool {
	target, ok := s.store.Take(ctx, challengeID)
	if !ok {
		return false
	}
	return rotate.Validate(int(math.Round(userAngle)), target, s.padding)
}

// challengeStore keeps target angles until they are taken or expire
type challengeStore interface {
	Put(ctx context.Context, id string, angle int, ttl time.Duration) error
	Take(ctx context.Context, id string) (int, bool)
}

type redisChallengeStore struct {
	rc     *redis.Client
	prefix string
}

func (s *redisChallengeStore) Put(ctx context.Context, id string, angle int, ttl time.Duration) error {
	return s.rc.Set(ctx, s.prefix+id, angle, ttl).Err()
}

func (s *redisChallengeStore) Take(ctx context.Context, id string) (int, bool) {
	val, err := s.rc.GetDel(ctx, s.prefix+id).Result()
	if err != nil {
		return 0, false
	}
	angle, err := strconv.Atoi(val)
	if err != nil {
		return 0, false
	}
	return angle, true
}

type memoryEntry struct {
	angle     int
	expiresAt time.Time
}

type memoryChallengeStore struct {
	mu sync.Mutex
	m  map[string]memoryEntry
}

func newMemoryChallengeStore() *memoryChallengeStore {
	return &memoryChallengeStore{m: make(map[string]memoryEntry)}
}

func (s *memoryChallengeStore) Put(_ context.Context, id string, angle int, ttl time.Duration) error {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	// sweep on write so abandoned challenges do not accumulate
	for k, v := range s.m {
		if now.After(v.expiresAt) {
			delete(s.m, k)
		}
	}
	s.m[id] = memoryEntry{angle: angle, expiresAt: now.Add(ttl)}
	return nil
}

func (s *memoryChallengeStore) Take(_ context.Context, id string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.m[id]
	if !ok {
		return 0, false
	}
	delete(s.m, id)
	if time.Now().After(e.expiresAt) {
		return 0, false
	}
	return e.angle, true
}

// generateRotateBackgrounds paints small random tiles and scales them up,
// which gives the soft blotches the rotate puzzle needs to be solvable
func generateRotateBackgrounds(n int, size int) []image.Image {
	if n <= 0 {
		n = 1
	}
	imgs := make([]image.Image, 0, n)
	for i := 0; i < n; i++ {
		imgs = append(imgs, newBlotchImage(size))
	}
	return imgs
}

func newBlotchImage(size int) image.Image {
	const tile = 8
	src := image.NewRGBA(image.Rect(0, 0, tile, tile))
	hue := rand.Intn(3)
	for y := 0; y < tile; y++ {
		for x := 0; x < tile; x++ {
			v := uint8(80 + rand.Intn(160))
			c := color.RGBA{R: v / 2, G: v / 2, B: v / 2, A: 255}
			switch hue {
			case 0:
				c.R = v
			case 1:
				c.G = v
			default:
				c.B = v
			}
			src.Set(x, y, c)
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

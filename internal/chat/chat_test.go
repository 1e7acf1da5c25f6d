package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "studybuddy/internal/common/errors"
	"studybuddy/internal/common/logger"
	"studybuddy/internal/gateway"
	"studybuddy/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/google/go-cmp/cmp"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeting = "Hi! I'm StudyBuddy."

type echoReplier struct {
	mu       sync.Mutex
	seen     [][]models.ChatTurn
	contexts []string
	degraded bool
}

func (e *echoReplier) ChatReply(ctx context.Context, transcript []models.ChatTurn, profileContext string) gateway.Reply {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seen = append(e.seen, append([]models.ChatTurn(nil), transcript...))
	e.contexts = append(e.contexts, profileContext)
	last := transcript[len(transcript)-1]
	return gateway.Reply{Text: "re: " + last.Content, Degraded: e.degraded}
}

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, time.Hour), mr
}

func stores(t *testing.T) map[string]TranscriptStore {
	rs, _ := newRedisStore(t)
	return map[string]TranscriptStore{
		"memory": NewMemoryStore(time.Hour),
		"redis":  rs,
	}
}

func TestService_SendAppendsExactlyTwoTurns(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			replier := &echoReplier{}
			svc := NewService(st, replier, greeting, logger.NewTestLogger(t))
			ctx := context.Background()

			tr, err := svc.Send(ctx, "s1", "  Which cities are cheap?  ", "")
			require.NoError(t, err)

			want := []models.ChatTurn{
				{Role: models.RoleAssistant, Content: greeting},
				{Role: models.RoleUser, Content: "Which cities are cheap?"},
				{Role: models.RoleAssistant, Content: "re: Which cities are cheap?"},
			}
			if diff := cmp.Diff(want, tr.Turns); diff != "" {
				t.Fatalf("turns mismatch (-want +got):\n%s", diff)
			}

			tr, err = svc.Send(ctx, "s1", "And visas?", "")
			require.NoError(t, err)
			assert.Len(t, tr.Turns, 5)

			// the replier sees the full history including the new user turn
			require.Len(t, replier.seen, 2)
			assert.Len(t, replier.seen[1], 4)

			stored, err := svc.Transcript(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, tr.Turns, stored.Turns)
		})
	}
}

func TestService_SendRejectsBlank(t *testing.T) {
	replier := &echoReplier{}
	svc := NewService(NewMemoryStore(0), replier, greeting, logger.NewNoOpLogger())

	_, err := svc.Send(context.Background(), "s1", " \n\t", "")
	assert.Equal(t, apperrors.ErrCodeChatMessageEmpty, apperrors.AsStandard(err).Code)
	assert.Empty(t, replier.seen)

	tr, err := svc.Transcript(context.Background(), "s1")
	require.NoError(t, err)
	assert.Len(t, tr.Turns, 1)
}

func TestService_ResetRestoresSeed(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			svc := NewService(st, &echoReplier{}, greeting, logger.NewNoOpLogger())
			ctx := context.Background()

			_, err := svc.Send(ctx, "s1", "hello", "")
			require.NoError(t, err)

			tr, err := svc.Reset(ctx, "s1")
			require.NoError(t, err)
			assert.Equal(t, []models.ChatTurn{{Role: models.RoleAssistant, Content: greeting}}, tr.Turns)

			tr, err = svc.Transcript(ctx, "s1")
			require.NoError(t, err)
			assert.Len(t, tr.Turns, 1)
		})
	}
}

func TestService_SessionsAreIsolated(t *testing.T) {
	svc := NewService(NewMemoryStore(0), &echoReplier{}, "", logger.NewNoOpLogger())
	ctx := context.Background()

	_, err := svc.Send(ctx, "a", "one", "")
	require.NoError(t, err)

	b, err := svc.Transcript(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, b.Turns)
}

func TestService_PassesProfileContextAndDegradedReply(t *testing.T) {
	replier := &echoReplier{degraded: true}
	svc := NewService(NewMemoryStore(0), replier, greeting, logger.NewNoOpLogger())

	_, err := svc.Send(context.Background(), "s1", "hi", "Program: Masters")
	require.NoError(t, err)
	assert.Equal(t, []string{"Program: Masters"}, replier.contexts)
}

func TestService_FallbackReplyFromGateway(t *testing.T) {
	gw := gateway.New(failingGenerator{}, gateway.Options{Timeout: time.Second}, logger.NewNoOpLogger())
	svc := NewService(NewMemoryStore(0), gw, greeting, logger.NewNoOpLogger())

	tr, err := svc.Send(context.Background(), "s1", "hi", "")
	require.NoError(t, err)
	assert.Equal(t, gateway.FallbackChatReply, tr.Turns[len(tr.Turns)-1].Content)
}

type failingGenerator struct{}

func (failingGenerator) Name() string { return "failing" }

func (failingGenerator) Generate(ctx context.Context, req gateway.Request) (string, error) {
	return "", errors.New("quota exceeded")
}

func TestRedisStore_ExpiresAfterTTL(t *testing.T) {
	st, mr := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, st.Save(ctx, models.Transcript{SessionID: "s1", Turns: []models.ChatTurn{{Role: models.RoleUser, Content: "x"}}}))
	assert.Equal(t, time.Hour, mr.TTL(key("s1")))

	mr.FastForward(2 * time.Hour)
	_, err := st.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRedisStore_ConnectionErrors(t *testing.T) {
	client, mock := redismock.NewClientMock()
	st := NewRedisStore(client, time.Minute)
	ctx := context.Background()

	mock.ExpectGet(key("s1")).SetErr(errors.New("connection refused"))
	_, err := st.Load(ctx, "s1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectGet(key("s2")).RedisNil()
	_, err = st.Load(ctx, "s2")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	mock.ExpectDel(key("s1")).SetErr(errors.New("readonly replica"))
	assert.Error(t, st.Delete(ctx, "s1"))

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestService_StoreFailureSurfacesInternal(t *testing.T) {
	client, mock := redismock.NewClientMock()
	svc := NewService(NewRedisStore(client, time.Minute), &echoReplier{}, greeting, logger.NewNoOpLogger())

	mock.ExpectGet(key("s1")).SetErr(errors.New("connection refused"))
	_, err := svc.Send(context.Background(), "s1", "hi", "")
	assert.Equal(t, apperrors.ErrCodeInternal, apperrors.AsStandard(err).Code)
}

func TestMemoryStore_ExpiryAndIsolation(t *testing.T) {
	st := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st.now = func() time.Time { return now }
	ctx := context.Background()

	orig := models.Transcript{SessionID: "s1", Turns: []models.ChatTurn{{Role: models.RoleUser, Content: "x"}}}
	require.NoError(t, st.Save(ctx, orig))

	got, err := st.Load(ctx, "s1")
	require.NoError(t, err)
	got.Turns[0].Content = "mutated"

	again, err := st.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "x", again.Turns[0].Content)

	now = now.Add(2 * time.Minute)
	_, err = st.Load(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStore_ConcurrentSends(t *testing.T) {
	svc := NewService(NewMemoryStore(0), &echoReplier{}, "", logger.NewNoOpLogger())
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = svc.Send(context.Background(), string(rune('a'+i)), "hi", "")
		}(i)
	}
	wg.Wait()

	tr, err := svc.Transcript(context.Background(), "a")
	require.NoError(t, err)
	assert.Len(t, tr.Turns, 2)
}

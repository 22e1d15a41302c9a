package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/layer-3/auctioneer/adapters/signer"
	"github.com/layer-3/auctioneer/adapters/store"
	"github.com/layer-3/auctioneer/adapters/tokenizer"
	"github.com/layer-3/auctioneer/core"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordedEvent struct {
	kind   string
	item   core.AuctionItem
	result core.AuctionResult
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) record(e recordedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return nil
}

func (p *recordingPublisher) PublishAuctionCreated(_ context.Context, item core.AuctionItem) error {
	return p.record(recordedEvent{kind: "created", item: item})
}

func (p *recordingPublisher) PublishBidAccepted(_ context.Context, item core.AuctionItem) error {
	return p.record(recordedEvent{kind: "bid", item: item})
}

func (p *recordingPublisher) PublishAuctionClosed(_ context.Context, item core.AuctionItem, result core.AuctionResult) error {
	return p.record(recordedEvent{kind: "closed", item: item, result: result})
}

func (p *recordingPublisher) kinds() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	kinds := make([]string, 0, len(p.events))
	for _, e := range p.events {
		kinds = append(kinds, e.kind)
	}
	return kinds
}

type harness struct {
	clock    *fakeClock
	server   *signer.EthSigner
	events   *recordingPublisher
	registry *Registry
	tokens   *TokenManager
	auth     *Authenticator
	ledger   *Ledger
	svc      *AuctionService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	key, err := signer.GenerateKey()
	require.NoError(t, err)

	h := &harness{
		clock:  newFakeClock(),
		server: signer.NewEthSigner(key),
		events: &recordingPublisher{},
	}
	opts := []Option{WithClock(h.clock.Now)}

	h.registry = NewRegistry(store.NewMemoryIdentityStore(), opts...)
	h.tokens = NewTokenManager(store.NewMemoryTokenStore(), tokenizer.NewOpaqueTokenizer(), DefaultTokenTTL, opts...)
	h.auth = NewAuthenticator(h.registry, h.server, signer.NewEthVerifier(), h.tokens, opts...)
	h.ledger = NewLedger(store.NewMemoryAuctionStore(), h.registry, h.events, opts...)
	h.svc = NewAuctionService(h.registry, h.auth, h.tokens, h.ledger)

	return h
}

type testClient struct {
	id    uint64
	email string
	key   *signer.EthSigner
}

func (h *harness) register(t *testing.T, email string) *testClient {
	t.Helper()

	key, err := signer.GenerateKey()
	require.NoError(t, err)
	c := &testClient{email: email, key: signer.NewEthSigner(key)}

	c.id, err = h.svc.Register(context.Background(), email, c.key.PublicKey())
	require.NoError(t, err)
	return c
}

// login runs a full challenge-response round trip and returns a fresh token value
func (h *harness) login(t *testing.T, c *testClient) string {
	t.Helper()
	ctx := context.Background()

	const clientNonce = "client-nonce"
	challenge, err := h.svc.Challenge(ctx, c.id, clientNonce)
	require.NoError(t, err)
	require.NoError(t, signer.VerifyServerResponse(h.server.PublicKey(), clientNonce, challenge.SignedResponse))

	sig, err := c.key.Sign([]byte(challenge.ServerNonce))
	require.NoError(t, err)

	token, err := h.svc.Authenticate(ctx, c.id, sig)
	require.NoError(t, err)
	return token.Value
}

// createItem opens an auction for owner directly on the ledger
func (h *harness) createItem(t *testing.T, owner *testClient, reserve uint64) uint64 {
	t.Helper()
	id, err := h.ledger.Create(context.Background(), owner.id, core.ItemSpec{
		Name:         "item",
		Description:  "test item",
		ReservePrice: reserve,
	})
	require.NoError(t, err)
	return id
}

package test

import (
	"bytes"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	adminHandler "patrolfund/internal/admin/handler"
	"patrolfund/internal/chain"
	"patrolfund/internal/chain/ledger"
	"patrolfund/internal/chain/sequencer"
	escrowHandler "patrolfund/internal/escrow/handler"
	escrowService "patrolfund/internal/escrow/service"
	escrowStore "patrolfund/internal/escrow/store"
	"patrolfund/internal/events/publisher"
	eventsmemory "patrolfund/internal/events/store/memory"
	"patrolfund/internal/identity"
	poolHandler "patrolfund/internal/pool/handler"
	poolService "patrolfund/internal/pool/service"
	poolStore "patrolfund/internal/pool/store"
	proposalHandler "patrolfund/internal/proposal/handler"
	proposalService "patrolfund/internal/proposal/service"
	proposalStore "patrolfund/internal/proposal/store"
	httptransport "patrolfund/internal/transport/http"
	verificationHandler "patrolfund/internal/verification/handler"
	verificationService "patrolfund/internal/verification/service"
	verificationStore "patrolfund/internal/verification/store"
	votingHandler "patrolfund/internal/voting/handler"
	votingService "patrolfund/internal/voting/service"
	votingStore "patrolfund/internal/voting/store"
	id "patrolfund/pkg/domain"
	"patrolfund/pkg/testutil"
)

const signingKey = "scaffold-test-signing-key"

// newRouter wires the full HTTP surface against in-memory stores, mirroring
// the production composition in cmd/server.
func newRouter(t *testing.T) http.Handler {
	t.Helper()

	log := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	clock := chain.NewHeightClock(0)
	seq := sequencer.New()
	tokens := ledger.New()
	pub := publisher.NewPublisher(eventsmemory.NewInMemoryStore())

	pools, err := poolService.New(poolStore.New(100, 10), tokens, clock, seq)
	require.NoError(t, err)

	tallies := votingStore.New()
	proposals, err := proposalService.New(proposalStore.New(), clock, seq,
		proposalService.WithVoteChecker(tallies))
	require.NoError(t, err)

	votes, err := votingService.New(tallies, proposals, tokens, clock, seq, 144)
	require.NoError(t, err)

	verifications, err := verificationService.New(verificationStore.New(), proposals, clock, seq, 3, 5)
	require.NoError(t, err)

	escrows, err := escrowService.New(escrowStore.New(), verifications, proposals, tokens, clock, seq)
	require.NoError(t, err)

	return httptransport.NewRouter(httptransport.RouterDeps{
		Logger:        log,
		Validator:     identity.NewJWTService(signingKey),
		Pools:         poolHandler.New(pools, log),
		Proposals:     proposalHandler.New(proposals, log),
		Votes:         votingHandler.New(votes, log),
		Escrows:       escrowHandler.New(escrows, log),
		Verifications: verificationHandler.New(verifications, log),
		Admin:         adminHandler.New(pools, clock, pub, tokens, log),
	})
}

func bearer(t *testing.T, req *http.Request, caller string) *http.Request {
	t.Helper()
	principal, err := id.ParsePrincipal(caller)
	require.NoError(t, err)
	token, err := identity.NewJWTService(signingKey).IssueToken(principal, time.Hour)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func TestRouterScaffold(t *testing.T) {
	testutil.Given(t, "the assembled HTTP router", func(t *testing.T) {
		router := newRouter(t)

		testutil.When(t, "probing the open endpoints", func(t *testing.T) {
			testutil.Then(t, "healthz responds without a token", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/healthz"))
				testutil.AssertStatusOK(t, rr)
				testutil.AssertJSONContains(t, rr, "status", "ok")
			})

			testutil.Then(t, "metrics responds without a token", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/metrics"))
				testutil.AssertStatusOK(t, rr)
			})
		})

		testutil.When(t, "calling a domain route without a token", func(t *testing.T) {
			testutil.Then(t, "the request is rejected", func(t *testing.T) {
				rr := testutil.DoRequest(router, testutil.NewRequest(t, http.MethodGet, "/pools/count"))
				testutil.AssertStatus(t, rr, http.StatusUnauthorized)
			})
		})

		testutil.When(t, "bootstrapping with a bearer token", func(t *testing.T) {
			const operator = "wallet-operator-0000000001"

			testutil.Then(t, "the authority can be set", func(t *testing.T) {
				req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/authority", map[string]any{
					"recipient": "wallet-authority-0000000001",
				})
				rr := testutil.DoRequest(router, bearer(t, req, operator))
				testutil.AssertStatusOK(t, rr)
			})

			testutil.Then(t, "the faucet funds the operator", func(t *testing.T) {
				req := testutil.NewJSONRequest(t, http.MethodPost, "/admin/faucet", map[string]any{
					"asset":     "native",
					"recipient": operator,
					"amount":    10_000,
				})
				rr := testutil.DoRequest(router, bearer(t, req, operator))
				testutil.AssertStatusOK(t, rr)
			})

			testutil.Then(t, "a pool can be created end to end", func(t *testing.T) {
				req := testutil.NewJSONRequest(t, http.MethodPost, "/pools", map[string]any{
					"name":         "harbor-watch",
					"min_donation": 10,
					"max_donation": 1000,
					"type":         "community",
					"fee_rate":     5,
					"grace_period": 14,
					"location":     "Harbor District",
					"currency":     "STX",
					"asset":        "stx-token",
				})
				rr := testutil.DoRequest(router, bearer(t, req, operator))
				testutil.AssertStatus(t, rr, http.StatusCreated)
				testutil.AssertJSONContains(t, rr, "pool_id", float64(0))
			})
		})
	})
}

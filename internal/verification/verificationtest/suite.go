package verificationtest

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/moodgarden/verify-api/internal/domain"
	"github.com/moodgarden/verify-api/internal/verification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory builds a fresh, empty store configured with opts.
type Factory func(t *testing.T, opts verification.Options) verification.Store

// RunStoreSuite checks the issue / validate / sweep contract against the store built by newStore.
func RunStoreSuite(t *testing.T, newStore Factory) {
	ctx := context.Background()
	const r = "ada@example.com"

	setup := func(t *testing.T, codes ...string) (verification.Store, *Clock) {
		clock := NewClock(Epoch)
		opts := verification.Options{Now: clock.Now}
		if len(codes) > 0 {
			opts.NewCode = Sequence(codes...)
		}
		return newStore(t, opts), clock
	}

	t.Run("NotFoundBeforeIssue", func(t *testing.T) {
		s, _ := setup(t)
		out, err := s.Validate(ctx, r, "123456")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNotFound, out)
	})

	t.Run("IssueThenValidateSucceeds", func(t *testing.T) {
		s, _ := setup(t)
		code, err := s.Issue(ctx, r)
		require.NoError(t, err)
		out, err := s.Validate(ctx, r, code)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, out)
	})

	t.Run("SuccessConsumesRecord", func(t *testing.T) {
		s, _ := setup(t)
		code, err := s.Issue(ctx, r)
		require.NoError(t, err)
		out, err := s.Validate(ctx, r, code)
		require.NoError(t, err)
		require.Equal(t, domain.OutcomeSuccess, out)

		out, err = s.Validate(ctx, r, code)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNotFound, out)
	})

	t.Run("MismatchDoesNotConsume", func(t *testing.T) {
		s, _ := setup(t, "482913")
		code, err := s.Issue(ctx, r)
		require.NoError(t, err)
		require.Equal(t, "482913", code)

		out, err := s.Validate(ctx, r, "000000")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeMismatch, out)

		out, err = s.Validate(ctx, r, code)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, out)
	})

	t.Run("ComparisonIsExact", func(t *testing.T) {
		s, _ := setup(t, "482913")
		_, err := s.Issue(ctx, r)
		require.NoError(t, err)
		for _, supplied := range []string{" 482913", "482913 ", "0482913", "48291", ""} {
			out, err := s.Validate(ctx, r, supplied)
			require.NoError(t, err)
			assert.Equal(t, domain.OutcomeMismatch, out, "supplied %q", supplied)
		}
	})

	t.Run("ReissueInvalidatesOldCode", func(t *testing.T) {
		s, _ := setup(t, "111111", "222222")
		c1, err := s.Issue(ctx, r)
		require.NoError(t, err)
		c2, err := s.Issue(ctx, r)
		require.NoError(t, err)
		require.NotEqual(t, c1, c2)

		out, err := s.Validate(ctx, r, c1)
		require.NoError(t, err)
		assert.Contains(t, []domain.Outcome{domain.OutcomeNotFound, domain.OutcomeMismatch}, out)

		out, err = s.Validate(ctx, r, c2)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, out)
	})

	t.Run("RecipientsAreIndependent", func(t *testing.T) {
		s, _ := setup(t, "111111", "222222")
		c1, err := s.Issue(ctx, "a@example.com")
		require.NoError(t, err)
		c2, err := s.Issue(ctx, "b@example.com")
		require.NoError(t, err)

		out, err := s.Validate(ctx, "a@example.com", c2)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeMismatch, out)

		out, err = s.Validate(ctx, "b@example.com", c2)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, out)
		out, err = s.Validate(ctx, "a@example.com", c1)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, out)
	})

	t.Run("ExpiredThenNotFound", func(t *testing.T) {
		s, clock := setup(t)
		code, err := s.Issue(ctx, r)
		require.NoError(t, err)

		clock.Advance(verification.DefaultTTL + time.Second)
		out, err := s.Validate(ctx, r, code)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeExpired, out)

		out, err = s.Validate(ctx, r, code)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNotFound, out)
	})

	t.Run("ExpiredTakesPriorityOverMismatch", func(t *testing.T) {
		s, clock := setup(t, "482913")
		_, err := s.Issue(ctx, r)
		require.NoError(t, err)

		clock.Advance(verification.DefaultTTL + time.Minute)
		out, err := s.Validate(ctx, r, "000000")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeExpired, out)
	})

	t.Run("LiveJustBeforeTTL", func(t *testing.T) {
		s, clock := setup(t)
		code, err := s.Issue(ctx, r)
		require.NoError(t, err)

		clock.Advance(verification.DefaultTTL - time.Second)
		out, err := s.Validate(ctx, r, code)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, out)
	})

	t.Run("ReissueRestartsTTL", func(t *testing.T) {
		s, clock := setup(t)
		_, err := s.Issue(ctx, r)
		require.NoError(t, err)

		clock.Advance(20 * time.Minute)
		code, err := s.Issue(ctx, r)
		require.NoError(t, err)

		clock.Advance(20 * time.Minute)
		out, err := s.Validate(ctx, r, code)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, out)
	})

	t.Run("SweepRemovesOnlyExpired", func(t *testing.T) {
		s, clock := setup(t)
		_, err := s.Issue(ctx, "old1@example.com")
		require.NoError(t, err)
		_, err = s.Issue(ctx, "old2@example.com")
		require.NoError(t, err)

		clock.Advance(20 * time.Minute)
		fresh, err := s.Issue(ctx, "fresh@example.com")
		require.NoError(t, err)

		clock.Advance(11 * time.Minute)
		n, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		n, err = s.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, n)

		out, err := s.Validate(ctx, "old1@example.com", "123456")
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNotFound, out)

		out, err = s.Validate(ctx, "fresh@example.com", fresh)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, out)
	})

	t.Run("SweepEmpty", func(t *testing.T) {
		s, _ := setup(t)
		n, err := s.Sweep(ctx)
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("GeneratedCodesAreSixDigits", func(t *testing.T) {
		s, _ := setup(t)
		for i := 0; i < 200; i++ {
			code, err := s.Issue(ctx, r)
			require.NoError(t, err)
			require.True(t, verification.ValidCode(code), "code %q", code)
			n, err := strconv.Atoi(code)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, n, 100000)
			assert.LessOrEqual(t, n, 999999)
		}
	})

	t.Run("ConcurrentValidateSucceedsOnce", func(t *testing.T) {
		s, _ := setup(t)
		code, err := s.Issue(ctx, r)
		require.NoError(t, err)

		const workers = 16
		results := make(chan domain.Outcome, workers)
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				out, err := s.Validate(ctx, r, code)
				assert.NoError(t, err)
				results <- out
			}()
		}
		wg.Wait()
		close(results)

		success := 0
		for out := range results {
			if out == domain.OutcomeSuccess {
				success++
			} else {
				assert.Equal(t, domain.OutcomeNotFound, out)
			}
		}
		assert.Equal(t, 1, success)
	})

	t.Run("ConcurrentIssueAndValidate", func(t *testing.T) {
		clock := NewClock(Epoch)
		s := newStore(t, verification.Options{Now: clock.Now, NewCode: Counter(100000)})

		const issues = 20
		var (
			mu        sync.Mutex
			successes = map[string]int{}
			wg        sync.WaitGroup
			done      = make(chan struct{})
		)

		for w := 0; w < 4; w++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for {
					select {
					case <-done:
						return
					default:
					}
					for i := 0; i < issues; i++ {
						code := strconv.Itoa(100000 + i)
						out, err := s.Validate(ctx, r, code)
						if !assert.NoError(t, err) {
							return
						}
						if out == domain.OutcomeSuccess {
							mu.Lock()
							successes[code]++
							mu.Unlock()
						}
					}
				}
			}()
		}

		for i := 0; i < issues; i++ {
			_, err := s.Issue(ctx, r)
			require.NoError(t, err)
		}
		close(done)
		wg.Wait()

		for code, n := range successes {
			assert.Equal(t, 1, n, "code %s redeemed %d times", code, n)
		}

		// Whatever the interleaving, exactly one record can remain and it is the latest code.
		last, err := s.Issue(ctx, r)
		require.NoError(t, err)
		out, err := s.Validate(ctx, r, last)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeSuccess, out)
		out, err = s.Validate(ctx, r, last)
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeNotFound, out)
	})
}

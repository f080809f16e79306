package lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/deckduel/internal/model"
)

type LocalSuite struct {
	suite.Suite
	lock *Local
	ctx  context.Context
}

func TestLocalSuite(t *testing.T) {
	suite.Run(t, new(LocalSuite))
}

func (s *LocalSuite) SetupTest() {
	s.lock = NewLocal()
	s.ctx = context.Background()
}

func (s *LocalSuite) TestAcquireAndRelease() {
	release, err := s.lock.Acquire(s.ctx, "a")
	s.Require().NoError(err)
	s.Equal(1, s.lock.size())

	release()
	s.Equal(0, s.lock.size())

	// Releasing twice is harmless
	release()
	s.Equal(0, s.lock.size())
}

func (s *LocalSuite) TestDistinctKeysDoNotBlock() {
	releaseA, err := s.lock.Acquire(s.ctx, "a")
	s.Require().NoError(err)
	defer releaseA()

	releaseB, err := s.lock.Acquire(s.ctx, "b")
	s.Require().NoError(err)
	releaseB()
}

func (s *LocalSuite) TestTimeoutIsUnavailable() {
	release, err := s.lock.Acquire(s.ctx, "a")
	s.Require().NoError(err)
	defer release()

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()

	_, err = s.lock.Acquire(ctx, "a")
	s.ErrorIs(err, model.ErrUnavailable)
}

func (s *LocalSuite) TestMutualExclusion() {
	const workers = 20
	counter := 0
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := s.lock.Acquire(s.ctx, "shared")
			if err != nil {
				return
			}
			v := counter
			time.Sleep(time.Millisecond)
			counter = v + 1
			release()
		}()
	}
	wg.Wait()
	s.Equal(workers, counter)
	s.Equal(0, s.lock.size())
}

func (s *LocalSuite) TestAcquireAllOppositeOrdersDoNotDeadlock() {
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			keys := []string{"x", "y"}
			if i%2 == 1 {
				keys = []string{"y", "x"}
			}
			ctx, cancel := context.WithTimeout(s.ctx, 5*time.Second)
			defer cancel()
			release, err := AcquireAll(ctx, s.lock, keys...)
			if !s.NoError(err) {
				return
			}
			release()
		}(i)
	}
	wg.Wait()
	s.Equal(0, s.lock.size())
}

func (s *LocalSuite) TestAcquireAllDeduplicates() {
	release, err := AcquireAll(s.ctx, s.lock, "a", "a", "b")
	s.Require().NoError(err)
	s.Equal(2, s.lock.size())
	release()
	s.Equal(0, s.lock.size())
}

func (s *LocalSuite) TestAcquireAllReleasesOnFailure() {
	holdB, err := s.lock.Acquire(s.ctx, "b")
	s.Require().NoError(err)
	defer holdB()

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()
	_, err = AcquireAll(ctx, s.lock, "b", "a")
	s.ErrorIs(err, model.ErrUnavailable)

	// "a" was taken first and must have been given back
	releaseA, err := s.lock.Acquire(s.ctx, "a")
	s.Require().NoError(err)
	releaseA()
}

func (s *LocalSuite) TestUserKey() {
	s.Equal("user:u-1", UserKey("u-1"))
}

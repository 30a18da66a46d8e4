package interceptors

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// Mock filter for testing
type mockFilter struct {
	mock.Mock
}

func (m *mockFilter) ShouldProcess(event string, args []any) (bool, error) {
	ret := m.Called(event, args)
	return ret.Bool(0), ret.Error(1)
}

// Mock interceptor for testing
type mockInterceptor struct {
	mock.Mock
}

func (m *mockInterceptor) Intercept(event string, args []any, next Next) {
	m.Called(event, args, next)
	next(nil, args...)
}

func (m *mockInterceptor) Name() string {
	return m.Called().String(0)
}

func TestFilteringInterceptor(t *testing.T) {
	t.Run("Allows event when filter returns true", func(t *testing.T) {
		filter := new(mockFilter)
		filter.On("ShouldProcess", "test", []any{"v"}).Return(true, nil)
		rec := &nextRecorder{}

		NewFilteringInterceptor(filter, SkipWithError).Intercept("test", []any{"v"}, rec.next())

		assert.True(t, rec.called)
		assert.NoError(t, rec.err)
		assert.Equal(t, []any{"v"}, rec.args)
		filter.AssertExpectations(t)
	})

	t.Run("Skips silently when filter returns false", func(t *testing.T) {
		filter := new(mockFilter)
		filter.On("ShouldProcess", "test", mock.Anything).Return(false, nil)
		rec := &nextRecorder{}

		NewFilteringInterceptor(filter, SkipSilently).Intercept("test", nil, rec.next())

		assert.False(t, rec.called)
	})

	t.Run("Aborts with ErrFiltered when configured", func(t *testing.T) {
		filter := new(mockFilter)
		filter.On("ShouldProcess", "test", mock.Anything).Return(false, nil)
		rec := &nextRecorder{}

		NewFilteringInterceptor(filter, SkipWithError).Intercept("test", nil, rec.next())

		assert.ErrorIs(t, rec.err, ErrFiltered)
		assert.Contains(t, rec.err.Error(), "test")
	})

	t.Run("Logs the drop when configured", func(t *testing.T) {
		var buf bytes.Buffer
		filter := new(mockFilter)
		filter.On("ShouldProcess", "test", mock.Anything).Return(false, nil)
		rec := &nextRecorder{}

		NewFilteringInterceptor(filter, SkipWithLog).
			WithLogger(slog.New(slog.NewTextHandler(&buf, nil))).
			Intercept("test", nil, rec.next())

		assert.False(t, rec.called)
		assert.Contains(t, buf.String(), "event dropped by filter")
	})

	t.Run("Filter errors abort the chain", func(t *testing.T) {
		cause := errors.New("filter broke")
		filter := new(mockFilter)
		filter.On("ShouldProcess", "test", mock.Anything).Return(false, cause)
		rec := &nextRecorder{}

		NewFilteringInterceptor(filter, SkipSilently).Intercept("test", nil, rec.next())

		assert.ErrorIs(t, rec.err, cause)
	})

	t.Run("Silently dropped event never reaches subscribers", func(t *testing.T) {
		e := New()
		called := false
		e.On("test", func(args ...any) { called = true })

		_ = e.Intercept("test", NewFilteringInterceptor(NewArgCountFilter(1, -1), SkipSilently))

		assert.False(t, e.Emit("test"))
		assert.False(t, called)

		assert.True(t, e.Emit("test", "payload"))
		assert.True(t, called)
	})
}

func TestFilters(t *testing.T) {
	accept := FilterFunc(func(event string, args []any) (bool, error) { return true, nil })
	reject := FilterFunc(func(event string, args []any) (bool, error) { return false, nil })
	broken := FilterFunc(func(event string, args []any) (bool, error) { return false, errors.New("broken") })

	t.Run("CompositeFilter requires all filters", func(t *testing.T) {
		ok, err := NewCompositeFilter(accept, accept).ShouldProcess("e", nil)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = NewCompositeFilter(accept, reject).ShouldProcess("e", nil)
		assert.NoError(t, err)
		assert.False(t, ok)

		_, err = NewCompositeFilter(broken, accept).ShouldProcess("e", nil)
		assert.Error(t, err)
	})

	t.Run("OrFilter requires any filter", func(t *testing.T) {
		ok, err := NewOrFilter(reject, accept).ShouldProcess("e", nil)
		assert.NoError(t, err)
		assert.True(t, ok)

		ok, err = NewOrFilter(reject, reject).ShouldProcess("e", nil)
		assert.NoError(t, err)
		assert.False(t, ok)

		_, err = NewOrFilter(broken).ShouldProcess("e", nil)
		assert.Error(t, err)
	})

	t.Run("ArgCountFilter bounds the payload length", func(t *testing.T) {
		tests := []struct {
			name     string
			min, max int
			args     []any
			expected bool
		}{
			{"below min", 1, 2, nil, false},
			{"within bounds", 1, 2, []any{1, 2}, true},
			{"above max", 1, 2, []any{1, 2, 3}, false},
			{"unbounded max", 0, -1, []any{1, 2, 3, 4}, true},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				ok, err := NewArgCountFilter(tt.min, tt.max).ShouldProcess("e", tt.args)
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, ok)
			})
		}
	})
}

func TestConditionalInterceptor(t *testing.T) {
	t.Run("runs the interceptor when the condition holds", func(t *testing.T) {
		inner := new(mockInterceptor)
		inner.On("Intercept", "test", []any{"v"}, mock.Anything).Once()
		condition := FilterFunc(func(event string, args []any) (bool, error) { return true, nil })
		rec := &nextRecorder{}

		NewConditionalInterceptor(condition, inner).Intercept("test", []any{"v"}, rec.next())

		inner.AssertExpectations(t)
		assert.Equal(t, []any{"v"}, rec.args)
	})

	t.Run("skips the interceptor otherwise", func(t *testing.T) {
		inner := new(mockInterceptor)
		condition := FilterFunc(func(event string, args []any) (bool, error) { return false, nil })
		rec := &nextRecorder{}

		NewConditionalInterceptor(condition, inner).Intercept("test", []any{"v"}, rec.next())

		inner.AssertNotCalled(t, "Intercept", mock.Anything, mock.Anything, mock.Anything)
		assert.True(t, rec.called)
		assert.Equal(t, []any{"v"}, rec.args)
	})

	t.Run("condition errors abort", func(t *testing.T) {
		inner := new(mockInterceptor)
		condition := FilterFunc(func(event string, args []any) (bool, error) { return false, errors.New("nope") })
		rec := &nextRecorder{}

		NewConditionalInterceptor(condition, inner).Intercept("test", nil, rec.next())

		assert.EqualError(t, rec.err, "nope")
	})

	t.Run("Name wraps the inner name", func(t *testing.T) {
		inner := new(mockInterceptor)
		inner.On("Name").Return("Inner")

		assert.Equal(t, "ConditionalInterceptor[Inner]", NewConditionalInterceptor(nil, inner).Name())
	})
}

package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/repository/repotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type PublisherMock struct{ mock.Mock }

func (m *PublisherMock) Publish(ctx context.Context, key []byte, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func TestGateway_DefaultPermission(t *testing.T) {
	g := NewGateway(repotest.NewDocStore(), new(PublisherMock), zaptest.NewLogger(t))
	assert.Equal(t, model.PermissionDefault, g.Permission(context.Background(), 1))
}

func TestGateway_RequestPermissionValidates(t *testing.T) {
	g := NewGateway(repotest.NewDocStore(), new(PublisherMock), zaptest.NewLogger(t))

	_, err := g.RequestPermission(context.Background(), 1, "maybe")
	assert.ErrorIs(t, err, ErrInvalidPermission)

	p, err := g.RequestPermission(context.Background(), 1, model.PermissionGranted)
	require.NoError(t, err)
	assert.Equal(t, model.PermissionGranted, p)
	assert.Equal(t, model.PermissionGranted, g.Permission(context.Background(), 1))
}

func TestGateway_NotifyGrantedPublishesAndToasts(t *testing.T) {
	pub := new(PublisherMock)
	g := NewGateway(repotest.NewDocStore(), pub, zaptest.NewLogger(t))
	ctx := context.Background()
	_, err := g.RequestPermission(ctx, 2, model.PermissionGranted)
	require.NoError(t, err)

	pub.On("Publish", mock.Anything, []byte("2"), mock.MatchedBy(func(v []byte) bool {
		var m Message
		return json.Unmarshal(v, &m) == nil && m.Title == "Sale" && m.UserID == 2
	})).Return(nil).Once()

	g.Notify(ctx, 2, "Sale", "20% off")

	pub.AssertExpectations(t)
	toasts := g.Toasts(2)
	require.Len(t, toasts, 1)
	assert.Equal(t, "Sale", toasts[0].Message)
}

func TestGateway_NotifyWithoutPermissionOnlyToasts(t *testing.T) {
	pub := new(PublisherMock)
	g := NewGateway(repotest.NewDocStore(), pub, zaptest.NewLogger(t))

	g.Notify(context.Background(), 3, "Hello", "")

	pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
	assert.Len(t, g.Toasts(3), 1)
}

func TestGateway_PublishErrorIsSwallowed(t *testing.T) {
	pub := new(PublisherMock)
	docs := repotest.NewDocStore()
	g := NewGateway(docs, pub, zaptest.NewLogger(t))
	ctx := context.Background()
	_, _ = g.RequestPermission(ctx, 4, model.PermissionGranted)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))

	g.Notify(ctx, 4, "Hi", "")
	assert.Len(t, g.Toasts(4), 1)

	//許可の読み込みに失敗したら default 扱い
	docs.Fail(errors.New("remote down"))
	assert.Equal(t, model.PermissionDefault, g.Permission(ctx, 4))
}

func TestGateway_ToastsAreBounded(t *testing.T) {
	g := NewGateway(repotest.NewDocStore(), new(PublisherMock), zaptest.NewLogger(t))
	for i := 0; i < maxToasts+5; i++ {
		g.Toast(1, model.ToastInfo, fmt.Sprintf("m%d", i))
	}

	toasts := g.Toasts(1)
	require.Len(t, toasts, maxToasts)
	assert.Equal(t, "m5", toasts[0].Message)

	g.ClearToasts(1)
	assert.Empty(t, g.Toasts(1))
}

package application

import (
	"context"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/require"

	"demo/ordersvc/internal/item/application/mocks"
	"demo/ordersvc/internal/item/domain"
)

func TestService_CreateItem_AssignsID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockItemRepository(ctrl)
	svc := NewService(repo)

	it := domain.Item{Name: "Cola", Price: 2.5}
	repo.EXPECT().Create(gomock.Any(), it).Return(int64(6), nil)

	created, err := svc.CreateItem(context.Background(), it)
	require.NoError(t, err)
	require.Equal(t, int64(6), created.ID)
	require.Equal(t, "Cola", created.Name)
}

func TestService_GetItem_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockItemRepository(ctrl)
	svc := NewService(repo)

	repo.EXPECT().Get(gomock.Any(), int64(9)).Return(domain.Item{}, domain.ErrItemNotFound)

	_, err := svc.GetItem(context.Background(), 9)
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestService_UpdateItem(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockItemRepository(ctrl)
	svc := NewService(repo)

	it := domain.Item{Name: "Cola", Price: 3.0}
	repo.EXPECT().Update(gomock.Any(), int64(6), it).Return(nil)

	updated, err := svc.UpdateItem(context.Background(), 6, it)
	require.NoError(t, err)
	require.Equal(t, int64(6), updated.ID)
	require.Equal(t, 3.0, updated.Price)
}

func TestService_DeleteItem_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockItemRepository(ctrl)
	svc := NewService(repo)

	repo.EXPECT().Delete(gomock.Any(), int64(9)).Return(domain.ErrItemNotFound)

	require.ErrorIs(t, svc.DeleteItem(context.Background(), 9), domain.ErrItemNotFound)
}

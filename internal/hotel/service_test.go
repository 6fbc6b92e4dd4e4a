package hotel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockRepo struct{ mock.Mock }

func (m *MockRepo) GetHotelByID(ctx context.Context, id int) (*Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Hotel), args.Error(1)
}

func (m *MockRepo) CountFreeRooms(ctx context.Context, hotelID int, roomType RoomType, checkIn, checkOut time.Time) (int, error) {
	args := m.Called(ctx, hotelID, roomType, checkIn, checkOut)
	return args.Int(0), args.Error(1)
}

func (m *MockRepo) CountRooms(ctx context.Context, hotelID int) (int, error) {
	args := m.Called(ctx, hotelID)
	return args.Int(0), args.Error(1)
}

func (m *MockRepo) CountBookedRooms(ctx context.Context, hotelID int, checkIn, checkOut time.Time) (int, error) {
	args := m.Called(ctx, hotelID, checkIn, checkOut)
	return args.Int(0), args.Error(1)
}

func TestParseRoomType(t *testing.T) {
	rt, err := ParseRoomType("DOUBLE")
	assert.NoError(t, err)
	assert.Equal(t, RoomTypeDouble, rt)

	rt, err = ParseRoomType("  Suite ")
	assert.NoError(t, err)
	assert.Equal(t, RoomTypeSuite, rt)

	_, err = ParseRoomType("penthouse")
	assert.Error(t, err)
}

func TestFreeCountDelegatesToRepo(t *testing.T) {
	repo := new(MockRepo)
	svc := NewService(repo)

	checkIn := date("2025-06-01")
	checkOut := date("2025-06-03")

	repo.On("CountFreeRooms", mock.Anything, 1, RoomTypeDouble, checkIn, checkOut).Return(3, nil)

	count, err := svc.FreeCount(context.Background(), 1, RoomTypeDouble, checkIn, checkOut)
	assert.NoError(t, err)
	assert.Equal(t, 3, count)
	repo.AssertExpectations(t)
}

func TestOccupancyRate(t *testing.T) {
	checkIn := date("2025-06-01")
	checkOut := date("2025-06-03")

	t.Run("normal rate", func(t *testing.T) {
		repo := new(MockRepo)
		svc := NewService(repo)

		repo.On("CountRooms", mock.Anything, 1).Return(10, nil)
		repo.On("CountBookedRooms", mock.Anything, 1, checkIn, checkOut).Return(4, nil)

		rate, err := svc.OccupancyRate(context.Background(), 1, checkIn, checkOut)
		assert.NoError(t, err)
		assert.InDelta(t, 0.4, rate, 1e-9)
	})

	t.Run("capped at 1.0", func(t *testing.T) {
		repo := new(MockRepo)
		svc := NewService(repo)

		repo.On("CountRooms", mock.Anything, 1).Return(3, nil)
		repo.On("CountBookedRooms", mock.Anything, 1, checkIn, checkOut).Return(5, nil)

		rate, err := svc.OccupancyRate(context.Background(), 1, checkIn, checkOut)
		assert.NoError(t, err)
		assert.Equal(t, 1.0, rate)
	})

	t.Run("no rooms means zero", func(t *testing.T) {
		repo := new(MockRepo)
		svc := NewService(repo)

		repo.On("CountRooms", mock.Anything, 7).Return(0, nil)

		rate, err := svc.OccupancyRate(context.Background(), 7, checkIn, checkOut)
		assert.NoError(t, err)
		assert.Equal(t, 0.0, rate)
		repo.AssertNotCalled(t, "CountBookedRooms", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("repo error propagates", func(t *testing.T) {
		repo := new(MockRepo)
		svc := NewService(repo)

		repo.On("CountRooms", mock.Anything, 1).Return(0, errors.New("db down"))

		_, err := svc.OccupancyRate(context.Background(), 1, checkIn, checkOut)
		assert.Error(t, err)
	})
}

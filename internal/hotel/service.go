package hotel

import (
	"context"
	"time"
)

// Service computes true availability from persisted room and booking data.
// It never reads the ephemeral lock store; locked quantities are layered on
// top by the availability package.
type Service interface {
	GetHotelByID(ctx context.Context, id int) (*Hotel, error)
	FreeCount(ctx context.Context, hotelID int, roomType RoomType, checkIn, checkOut time.Time) (int, error)
	OccupancyRate(ctx context.Context, hotelID int, checkIn, checkOut time.Time) (float64, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (s *service) GetHotelByID(ctx context.Context, id int) (*Hotel, error) {
	return s.repo.GetHotelByID(ctx, id)
}

func (s *service) FreeCount(ctx context.Context, hotelID int, roomType RoomType, checkIn, checkOut time.Time) (int, error) {
	return s.repo.CountFreeRooms(ctx, hotelID, roomType, checkIn, checkOut)
}

// OccupancyRate returns the fraction of the hotel's rooms booked over the
// range, capped at 1.0. Forwarded to the pricing service with quote requests.
func (s *service) OccupancyRate(ctx context.Context, hotelID int, checkIn, checkOut time.Time) (float64, error) {
	total, err := s.repo.CountRooms(ctx, hotelID)
	if err != nil {
		return 0, err
	}
	if total == 0 {
		return 0, nil
	}

	booked, err := s.repo.CountBookedRooms(ctx, hotelID, checkIn, checkOut)
	if err != nil {
		return 0, err
	}

	rate := float64(booked) / float64(total)
	if rate > 1.0 {
		rate = 1.0
	}
	return rate, nil
}
